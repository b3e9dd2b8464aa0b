package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/komsit37/fw/pkg/fw/config"
	"github.com/komsit37/fw/pkg/fw/ledger"
	"github.com/komsit37/fw/pkg/fw/pipeline"
	"github.com/komsit37/fw/pkg/fw/render"
	"github.com/komsit37/fw/pkg/fw/sortview"
	"github.com/komsit37/fw/pkg/fw/types"
)

func listCmd(e *env, rf *rootFlags) *cobra.Command {
	var noFetch bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Fetch current estimates and show the watchlist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := render.New(rf.format)
			if err != nil {
				return err
			}
			opts, err := e.executeOptions(rf)
			if err != nil {
				return err
			}
			a := e.valuations(cmd.Context())
			var src pipeline.Source = a
			if noFetch {
				src = pipeline.SourceFunc(func(context.Context) (render.Frame, error) { return a.Frame(), nil })
			}
			runner := &pipeline.Runner{
				Source:   src,
				Renderer: r,
				Writer:   cmd.OutOrStdout(),
			}
			return runner.Execute(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&noFetch, "no-fetch", false, "show positions only, without fetching estimates")
	return cmd
}

func showCmd(e *env, rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show one fund in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.TrimSpace(args[0])
			f, err := e.valuations(cmd.Context()).Load(cmd.Context())
			if err != nil {
				return err
			}
			var md string
			if code == "all" {
				h, ok := f.Header()
				if !ok {
					md = f.Status.Tooltip
				} else {
					md = h.Tooltip
				}
			} else {
				for _, fn := range f.Funds() {
					if fn.Code == code {
						md = fn.Tooltip
					}
				}
				if md == "" {
					return fmt.Errorf("%s: %w", code, ledger.ErrNotFound)
				}
			}

			opts, err := e.executeOptions(rf)
			if err != nil {
				return err
			}
			if opts.Color {
				if md, err = render.Style(md, opts.Width); err != nil {
					return err
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}
}

func watchCmd(e *env, rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the watchlist on screen, refreshing during trading hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r, err := render.New(rf.format)
			if err != nil {
				return err
			}
			opts, err := e.executeOptions(rf)
			if err != nil {
				return err
			}
			cols, err := pipeline.Columns(opts.Sets, opts.Columns)
			if err != nil {
				return err
			}
			ropts := render.RenderOptions{
				Columns:     cols,
				Color:       opts.Color,
				PrettyJSON:  opts.PrettyJSON,
				MaxColWidth: opts.MaxColWidth,
				Details:     opts.Details,
				Width:       opts.Width,
			}

			out := cmd.OutOrStdout()
			draw := func(f render.Frame) {
				if opts.Color {
					fmt.Fprint(out, "\x1b[H\x1b[2J")
				}
				if err := r.Render(out, pipeline.Filter(f, opts.Filter), ropts); err != nil {
					e.log.Error().Err(err).Msg("render")
				}
			}

			a := e.valuations(ctx)
			a.Subscribe(draw)
			a.Refresh(ctx)

			if err := a.Schedule(e.cfg.Refresh.Interval); err != nil {
				return err
			}
			e.loader.Watch(func(c *config.Config) {
				if err := a.Reconfigure(c.Refresh.Interval, c.Refresh.TradingHoursOnly); err != nil {
					e.log.Warn().Err(err).Msg("apply config change")
					return
				}
				e.log.Info().Dur("interval", c.Refresh.Interval).Msg("config reloaded")
			}, func(err error) {
				e.log.Warn().Err(err).Msg("config change ignored")
			})

			<-ctx.Done()
			return nil
		},
	}
}

func sortCmd(e *env) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "sort [field]",
		Short: "Show or change the sort: toggling a field cycles descending, ascending, default",
		Long: "Fields: " + strings.Join(sortview.FieldNames(), ", ") + ".\n" +
			"With --dir the direction is set instead of toggled.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, describeSort(e.sort.State()))
				return nil
			}
			f, err := sortview.ParseField(args[0])
			if err != nil {
				return err
			}

			var next sortview.State
			switch {
			case f == sortview.Default:
				next = sortview.DefaultState
				err = e.sort.Set(next)
			case dir != "":
				d := sortview.Direction(strings.ToLower(dir))
				if d != sortview.Asc && d != sortview.Desc {
					return fmt.Errorf("direction %q: want asc or desc", dir)
				}
				next = sortview.State{Field: f, Dir: d}
				err = e.sort.Set(next)
			default:
				next, err = e.sort.Toggle(f)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, describeSort(next))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "set direction: asc or desc")
	return cmd
}

func describeSort(s sortview.State) string {
	if s.IsDefault() {
		return "sort: default order"
	}
	return fmt.Sprintf("sort: %s %s", s.Field.Label(), s.Arrow())
}

func marketCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show whether the exchange is open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := e.valuations(cmd.Context())
			st := a.Market()
			out := cmd.OutOrStdout()
			state := "open"
			switch {
			case st.Closed && st.Reason != "":
				state = "closed (" + st.Reason + ")"
			case st.Closed:
				state = "closed"
			case !st.Trading:
				state = "open, outside trading hours"
			}
			fmt.Fprintf(out, "%s CST  %s\n", st.Date, state)
			fmt.Fprintln(out, describeCalendar(a.Holidays()))
			return nil
		},
	}
}

func describeCalendar(cal types.HolidayCalendar) string {
	if len(cal) == 0 {
		return "holidays: none loaded, only weekends are closed"
	}
	return "holidays: " + strings.Join(slices.Sorted(maps.Keys(cal)), ", ")
}
