package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/fw/pkg/fw/columns"
)

// TableRenderer draws the fund list as a borderless colored table with the
// sort header above and the status line below.
type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, f Frame, opts RenderOptions) error {
	funds := f.Funds()
	if len(funds) == 0 {
		_, err := fmt.Fprintln(w, statusText(f.Status, opts.Color))
		return err
	}

	cols, err := columns.Compute(opts.Columns)
	if err != nil {
		return err
	}

	if h, ok := f.Header(); ok {
		title := h.Label + "  " + h.Description
		if opts.Color {
			title = text.Bold.Sprint(h.Label) + "  " + text.Faint.Sprint(h.Description)
		}
		fmt.Fprintln(w, title)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false

	hdr := make(table.Row, len(cols))
	for i, c := range cols {
		hdr[i] = columns.Registry[c].Header
	}
	tw.AppendHeader(hdr)

	// Column configs: wrap text to MaxColWidth (default 40), no truncation
	maxWidth := opts.MaxColWidth
	if maxWidth <= 0 {
		maxWidth = 40
	}
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
		if columns.Registry[c].Numeric {
			cfg.Align = text.AlignRight
			cfg.AlignHeader = text.AlignRight
		}
		cfgs = append(cfgs, cfg)
	}
	tw.SetColumnConfigs(cfgs)

	for _, fn := range funds {
		row := make(table.Row, len(cols))
		cr := columns.Row{View: fn.View, Metrics: fn.Metrics}
		for i, c := range cols {
			cell := columns.RenderValue(c, cr)
			row[i] = colorize(cell.Text, cell.Sign, opts.Color)
		}
		tw.AppendRow(row)

		if opts.Details {
			for _, d := range fn.Details {
				detail := make(table.Row, len(cols))
				for i := range detail {
					detail[i] = ""
				}
				detail[0] = "  " + d.String()
				tw.AppendRow(detail)
			}
		}
	}
	tw.Render()

	_, err = fmt.Fprintln(w, statusText(f.Status, opts.Color))
	return err
}

// colorize paints rising values red and falling values green.
func colorize(s string, sign int, color bool) string {
	if !color || s == "" {
		return s
	}
	switch sign {
	case 1:
		return text.Colors{text.FgRed}.Sprint(s)
	case -1:
		return text.Colors{text.FgGreen}.Sprint(s)
	default:
		return s
	}
}

func statusText(s StatusLine, color bool) string {
	return colorize(strings.TrimSpace(s.Text), s.Sign, color)
}
