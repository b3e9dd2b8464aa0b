package render

import (
	"fmt"
	"io"
	"strings"
)

// codesRenderer prints all fund codes in a single comma-separated line.
type codesRenderer struct{}

func NewCodesRenderer() Renderer {
	return codesRenderer{}
}

func (codesRenderer) Render(w io.Writer, f Frame, _ RenderOptions) error {
	codes := make([]string, 0, len(f.Nodes))
	for _, fn := range f.Funds() {
		code := strings.TrimSpace(fn.Code)
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	_, err := fmt.Fprintln(w, strings.Join(codes, ","))
	return err
}
