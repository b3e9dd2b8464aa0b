package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/komsit37/fw/pkg/fw/format"
)

func searchCmd(e *env, rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search funds by code, name or pinyin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := e.agg.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch rf.format {
			case "json":
				return writeJSON(out, results, rf.pretty)
			case "codes":
				codes := make([]string, len(results))
				for i, r := range results {
					codes[i] = r.Code
				}
				_, err := fmt.Fprintln(out, strings.Join(codes, ","))
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "no funds found")
				return nil
			}
			tw := newTable(out, !rf.noColor && detectTerminalWidth() > 0)
			tw.AppendHeader(table.Row{"CODE", "NAME"})
			for _, r := range results {
				tw.AppendRow(table.Row{r.Code, r.Name})
			}
			tw.Render()
			return nil
		},
	}
}

func historyCmd(e *env, rf *rootFlags) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "history <code>",
		Short: "Show recently published NAVs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := e.agg.History(cmd.Context(), strings.TrimSpace(args[0]), count)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rf.format == "json" {
				return writeJSON(out, recs, rf.pretty)
			}
			color := !rf.noColor && detectTerminalWidth() > 0
			tw := newTable(out, color)
			tw.AppendHeader(table.Row{"DATE", "NAV", "CHG%"})
			tw.SetColumnConfigs([]table.ColumnConfig{
				{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
				{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
			})
			for _, r := range recs {
				nav := r.NetValue
				chg := format.Percent(r.ChangePercent)
				if color {
					switch format.Sign(r.ChangePercent) {
					case 1:
						chg = text.Colors{text.FgRed}.Sprint(chg)
					case -1:
						chg = text.Colors{text.FgGreen}.Sprint(chg)
					}
				}
				tw.AppendRow(table.Row{r.Date, format.NAV(&nav), chg})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of records")
	return cmd
}

func newTable(w io.Writer, color bool) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	return tw
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
	} else {
		data, err = sonic.ConfigStd.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
