package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/komsit37/fw/pkg/fw/columns"
)

// MarkdownRenderer writes the overview, a fund table and, with Details, every
// fund's tooltip as markdown. With Color the document is styled for the
// terminal by glamour; otherwise the raw markdown is written.
type MarkdownRenderer struct{}

func NewMarkdownRenderer() *MarkdownRenderer { return &MarkdownRenderer{} }

func (r *MarkdownRenderer) Render(w io.Writer, f Frame, opts RenderOptions) error {
	doc, err := Markdown(f, opts)
	if err != nil {
		return err
	}
	if opts.Color {
		if doc, err = Style(doc, opts.Width); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, doc)
	return err
}

// Markdown builds the markdown document for f.
func Markdown(f Frame, opts RenderOptions) (string, error) {
	var b strings.Builder
	h, ok := f.Header()
	if !ok {
		fmt.Fprintf(&b, "%s\n", f.Status.Text)
		return b.String(), nil
	}

	cols, err := columns.Compute(opts.Columns)
	if err != nil {
		return "", err
	}

	b.WriteString(h.Tooltip)
	b.WriteString("\n")

	hdr := make([]string, len(cols))
	sep := make([]string, len(cols))
	for i, c := range cols {
		d := columns.Registry[c]
		hdr[i] = d.Header
		sep[i] = "---"
		if d.Numeric {
			sep[i] = "---:"
		}
	}
	fmt.Fprintf(&b, "| %s |\n", strings.Join(hdr, " | "))
	fmt.Fprintf(&b, "| %s |\n", strings.Join(sep, " | "))
	for _, fn := range f.Funds() {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = escapeCell(columns.RenderValue(c, columns.Row{View: fn.View, Metrics: fn.Metrics}).Text)
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}
	b.WriteString("\n")

	if opts.Details {
		for _, fn := range f.Funds() {
			b.WriteString(fn.Tooltip)
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "**%s**\n", f.Status.Text)
	return b.String(), nil
}

// Style renders markdown for a dark terminal, wrapped at width when known.
func Style(md string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("dark")}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return tr.Render(md)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
