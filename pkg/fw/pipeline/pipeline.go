package pipeline

import (
	"context"
	"io"

	"github.com/komsit37/fw/pkg/fw/columns"
	"github.com/komsit37/fw/pkg/fw/filter"
	"github.com/komsit37/fw/pkg/fw/render"
)

// Source produces the frame to render.
type Source interface {
	Load(ctx context.Context) (render.Frame, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (render.Frame, error)

func (f SourceFunc) Load(ctx context.Context) (render.Frame, error) { return f(ctx) }

type Runner struct {
	Source   Source
	Renderer render.Renderer
	Writer   io.Writer
}

type ExecuteOptions struct {
	// Sets are expanded first, then Columns are appended.
	Sets        []string
	Columns     []string
	Filter      filter.Filter
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
	Details     bool
	Width       int
}

func (r *Runner) Execute(ctx context.Context, opts ExecuteOptions) error {
	cols, err := Columns(opts.Sets, opts.Columns)
	if err != nil {
		return err
	}

	f, err := r.Source.Load(ctx)
	if err != nil {
		return err
	}
	if opts.Filter != nil {
		f = Filter(f, opts.Filter)
	}

	return r.Renderer.Render(r.Writer, f, render.RenderOptions{
		Columns:     cols,
		Color:       opts.Color,
		PrettyJSON:  opts.PrettyJSON,
		MaxColWidth: opts.MaxColWidth,
		Details:     opts.Details,
		Width:       opts.Width,
	})
}

// Columns resolves set names and explicit keys into one validated column
// list. Nil means the renderer default.
func Columns(sets, explicit []string) ([]string, error) {
	var cols []string
	if len(sets) > 0 {
		expanded, err := columns.ExpandSets(sets)
		if err != nil {
			return nil, err
		}
		cols = append(cols, expanded...)
	}
	cols = append(cols, explicit...)
	if len(cols) == 0 {
		return nil, nil
	}
	return columns.Compute(cols)
}

// Filter keeps the funds matching filt. The status line still covers the
// whole watchlist; the header is dropped when no fund is left.
func Filter(f render.Frame, filt filter.Filter) render.Frame {
	out := f
	out.Nodes = make([]render.Node, 0, len(f.Nodes))
	var header render.Node
	for _, n := range f.Nodes {
		switch v := n.(type) {
		case render.SortHeaderNode:
			header = v
		case render.FundNode:
			if filt.Match(v.Code, v.Name) {
				out.Nodes = append(out.Nodes, v)
			}
		default:
			out.Nodes = append(out.Nodes, n)
		}
	}
	if len(out.Nodes) == 0 {
		out.Nodes = nil
		return out
	}
	if header != nil {
		out.Nodes = append([]render.Node{header}, out.Nodes...)
	}
	return out
}
