package prompt_test

import (
	"context"
	"io"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/gitreq/credential"
	"github.com/byte4ever/gitreq/prompt"
	"github.com/byte4ever/gitreq/remote"
)

var _ credential.Prompter = (*prompt.Terminal)(nil)

func typeText(
	t *testing.T,
	m tea.Model,
	text string,
) tea.Model {
	t.Helper()

	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{
			Type:  tea.KeyRunes,
			Runes: []rune{r},
		})
	}

	return m
}

func TestModel_enter_returns_typed_value(t *testing.T) {
	t.Parallel()

	m := prompt.NewModelForTest("gitlab.com API token:")
	m = typeText(t, m, "glpat-secret")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	value, done, cancelled := prompt.AnswerForTest(m)
	assert.Equal(t, "glpat-secret", value)
	assert.True(t, done)
	assert.False(t, cancelled)
	assert.Empty(t, m.View())
}

func TestModel_view_masks_input(t *testing.T) {
	t.Parallel()

	m := prompt.NewModelForTest("gitlab.com API token:")
	m = typeText(t, m, "hunter2")

	view := m.View()

	assert.Contains(t, view, "gitlab.com API token:")
	assert.NotContains(t, view, "hunter2")
	assert.Contains(t, view, "*******")
}

func TestModel_escape_cancels(t *testing.T) {
	t.Parallel()

	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := prompt.NewModelForTest("token:")
		m = typeText(t, m, "abc")

		m, cmd := m.Update(tea.KeyMsg{Type: key})

		require.NotNil(t, cmd)

		_, done, cancelled := prompt.AnswerForTest(m)
		assert.False(t, done)
		assert.True(t, cancelled)
	}
}

func TestTerminal_Ask_without_terminal(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})

	term := &prompt.Terminal{In: r, Out: io.Discard}

	_, err = term.Ask(context.Background(), "token:")

	assert.ErrorIs(t, err, remote.ErrCredentialMissing)
}

func TestTerminal_Ask_nil_input(t *testing.T) {
	t.Parallel()

	_, err := (&prompt.Terminal{Out: io.Discard}).Ask(
		context.Background(), "token:",
	)

	assert.ErrorIs(t, err, remote.ErrCredentialMissing)
}
