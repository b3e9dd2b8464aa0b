package render

import (
	"fmt"
	"io"
)

// Renderer renders a frame to an output writer.
type Renderer interface {
	Render(w io.Writer, f Frame, opts RenderOptions) error
}

type RenderOptions struct {
	Columns     []string
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
	// Details expands each fund into its detail lines.
	Details bool
	// Width is the terminal width used for wrapping, 0 if unknown.
	Width int
}

// New returns the renderer for format: table, json, md or codes.
func New(format string) (Renderer, error) {
	switch format {
	case "", "table":
		return NewTableRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	case "md", "markdown":
		return NewMarkdownRenderer(), nil
	case "codes":
		return NewCodesRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json, md or codes)", format)
	}
}
