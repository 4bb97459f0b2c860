package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/byte4ever/gitreq/remote"
)

// ErrCancelled is returned when the user leaves the
// prompt without answering.
var ErrCancelled = errors.New("prompt cancelled")

var (
	messageStyle = lipgloss.NewStyle().Bold(true)
	hintStyle    = lipgloss.NewStyle().Faint(true)
)

// Terminal asks questions on a terminal.
type Terminal struct {
	In  *os.File
	Out io.Writer
}

// NewTerminal returns a Terminal reading stdin and
// drawing on stderr so stdout stays clean for output.
func NewTerminal() *Terminal {
	return &Terminal{
		In:  os.Stdin,
		Out: os.Stderr,
	}
}

// Ask shows message and returns what the user typed.
// The answer is masked while typing.
func (t *Terminal) Ask(
	ctx context.Context,
	message string,
) (string, error) {
	const errCtx = "prompting"

	if !isTerminal(t.In) {
		return "", fmt.Errorf(
			"%s: stdin is not a terminal: %w",
			errCtx, remote.ErrCredentialMissing,
		)
	}

	p := tea.NewProgram(
		newModel(message),
		tea.WithContext(ctx),
		tea.WithInput(t.In),
		tea.WithOutput(t.Out),
	)

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	m, ok := final.(model)
	if !ok || m.cancelled {
		return "", fmt.Errorf("%s: %w", errCtx, ErrCancelled)
	}

	return m.input.Value(), nil
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}

	fd := f.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// model is the single-field masked input.
type model struct {
	message   string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newModel(message string) model {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 512
	ti.Prompt = "> "
	ti.Focus()

	return model{
		message: strings.TrimSpace(message),
		input:   ti,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			m.input.Blur()

			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			m.input.Blur()

			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.done || m.cancelled {
		return ""
	}

	return messageStyle.Render(m.message) + "\n" +
		m.input.View() + "\n" +
		hintStyle.Render("enter to save, esc to cancel") + "\n"
}
