package gitreq

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/gitreq/config"
	"github.com/byte4ever/gitreq/remote"
)

// Output selects how List prints requests.
type Output string

const (
	// OutputText prints one templated line per
	// request.
	OutputText Output = "text"
	// OutputJSON prints a JSON array.
	OutputJSON Output = "json"
	// OutputYAML prints a YAML sequence.
	OutputYAML Output = "yaml"
)

// ParseOutput validates an --output value.
func ParseOutput(s string) (Output, error) {
	switch o := Output(strings.ToLower(s)); o {
	case OutputText, OutputJSON, OutputYAML:
		return o, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf(
			"unknown output %q: must be text, json or yaml", s,
		)
	}
}

var (
	idStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))
	branchStyle = lipgloss.NewStyle().Faint(true)
)

// ListOptions controls List.
type ListOptions struct {
	Output Output
	// Format is the text line template. Empty selects
	// config.DefaultFormat.
	Format string
	// Color styles text output.
	Color bool
}

// List writes the open requests of rm to w.
func List(
	ctx context.Context,
	rm remote.Remote,
	w io.Writer,
	opts ListOptions,
) error {
	const errCtx = "listing requests"

	mrs, err := rm.ListRequests(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := Render(w, mrs, opts); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Render writes mrs to w in the selected output.
func Render(
	w io.Writer,
	mrs []remote.MergeRequest,
	opts ListOptions,
) error {
	if mrs == nil {
		mrs = []remote.MergeRequest{}
	}

	switch opts.Output {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(mrs); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}

		return nil

	case OutputYAML:
		buf, err := yaml.Marshal(mrs)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("writing yaml: %w", err)
		}

		return nil

	default:
		return renderText(w, mrs, opts)
	}
}

func renderText(
	w io.Writer,
	mrs []remote.MergeRequest,
	opts ListOptions,
) error {
	format := opts.Format
	if format == "" {
		format = config.DefaultFormat
	}

	tpl, err := fasttemplate.NewTemplate(format, "{", "}")
	if err != nil {
		return fmt.Errorf("parsing format %q: %w", format, err)
	}

	for _, mr := range mrs {
		line := tpl.ExecuteFuncString(
			func(out io.Writer, tag string) (int, error) {
				return io.WriteString(
					out, field(mr, tag, opts.Color),
				)
			},
		)

		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}

	return nil
}

// field returns the value of a format tag. Unknown tags
// are kept verbatim.
func field(mr remote.MergeRequest, tag string, color bool) string {
	switch tag {
	case "id":
		id := strconv.FormatInt(mr.ID, 10)
		if color {
			return idStyle.Render(id)
		}

		return id
	case "title":
		return mr.Title
	case "branch":
		if color {
			return branchStyle.Render(mr.SourceBranch)
		}

		return mr.SourceBranch
	case "description":
		if mr.Description == nil {
			return ""
		}

		return firstLine(*mr.Description)
	default:
		return "{" + tag + "}"
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")

	return strings.TrimRight(line, "\r")
}
