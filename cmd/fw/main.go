package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/komsit37/fw/pkg/fw/aggregate"
	"github.com/komsit37/fw/pkg/fw/app"
	"github.com/komsit37/fw/pkg/fw/config"
	"github.com/komsit37/fw/pkg/fw/filter"
	"github.com/komsit37/fw/pkg/fw/ledger"
	"github.com/komsit37/fw/pkg/fw/logging"
	"github.com/komsit37/fw/pkg/fw/pipeline"
	"github.com/komsit37/fw/pkg/fw/session"
	"github.com/komsit37/fw/pkg/fw/sortview"
	"github.com/komsit37/fw/pkg/fw/store"
	"github.com/komsit37/fw/pkg/fw/upstream"
)

type rootFlags struct {
	configPath string
	logLevel   string
	format     string
	columns    []string
	sets       []string
	filter     string
	details    bool
	pretty     bool
	noColor    bool
}

// env holds everything a command needs. The app, and with it the holiday
// calendar refresh, is only built by commands that show valuations.
type env struct {
	cfg    *config.Config
	loader *config.Loader
	log    zerolog.Logger

	store  store.Store
	client *upstream.Client
	agg    *aggregate.Aggregator
	sort   *sortview.View
	ledger *ledger.Ledger
	app    *app.App
}

func (e *env) open(rf *rootFlags) error {
	cfg, loader, err := config.Load(rf.configPath)
	if err != nil {
		return err
	}
	if rf.logLevel != "" {
		cfg.Log.Level = rf.logLevel
	}
	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	logging.SetGlobal(log)
	if f := loader.File(); f != "" {
		log.Debug().Str("file", f).Msg("config loaded")
	}

	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return err
	}
	client := upstream.New(cfg.UpstreamClient(), log)
	query := upstream.NewCachedClient(client, cfg.Upstream.CacheTTL, cfg.Upstream.CacheSize)
	sv := sortview.New(st, log)

	e.cfg, e.loader, e.log = cfg, loader, log
	e.store, e.client = st, client
	e.agg = aggregate.New(client, query, log)
	e.sort = sv
	e.ledger = ledger.New(st, log, ledger.WithReorderGuard(sv.IsDefault))
	return nil
}

func (e *env) valuations(ctx context.Context) *app.App {
	if e.app != nil {
		return e.app
	}
	gate := session.Load(ctx, e.client, e.store, logging.Component(e.log, "session"))
	e.app = app.New(e.ledger, e.sort, e.agg, gate, e.log,
		app.WithTradingHoursOnly(e.cfg.Refresh.TradingHoursOnly))
	return e.app
}

func (e *env) close() {
	if e.app != nil {
		e.app.Close()
	}
	if e.client != nil {
		_ = e.client.Close()
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.Warn().Err(err).Msg("close store")
		}
	}
}

// executeOptions turns the shared display flags into pipeline options.
func (e *env) executeOptions(rf *rootFlags) (pipeline.ExecuteOptions, error) {
	filt, err := filter.Parse(rf.filter)
	if err != nil {
		return pipeline.ExecuteOptions{}, err
	}
	width := detectTerminalWidth()
	maxCol := e.cfg.Display.MaxColWidth
	if width > 0 && width/3 < maxCol {
		maxCol = max(width/3, 12)
	}
	return pipeline.ExecuteOptions{
		Sets:        rf.sets,
		Columns:     rf.columns,
		Filter:      filt,
		Color:       e.cfg.Display.Color && !rf.noColor && width > 0,
		PrettyJSON:  rf.pretty,
		MaxColWidth: maxCol,
		Details:     rf.details,
		Width:       width,
	}, nil
}

func newRootCmd(e *env, rf *rootFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "fw",
		Short:        "Track mutual fund valuations and positions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.open(rf)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rf.configPath, "config", "", "config file (default "+config.Dir()+"/config.yaml)")
	pf.StringVar(&rf.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&rf.format, "output", "o", "table", "output format: table, json, md, codes")
	pf.StringSliceVarP(&rf.columns, "columns", "c", nil, "columns to show, comma-separated")
	pf.StringSliceVar(&rf.sets, "set", nil, "column sets: default, valuation, position, all")
	pf.StringVarP(&rf.filter, "filter", "f", "", "filter funds by code or name: substring, glob, a,b or /regex/")
	pf.BoolVarP(&rf.details, "details", "d", false, "show detail lines under each fund")
	pf.BoolVar(&rf.pretty, "pretty", true, "indent json output")
	pf.BoolVar(&rf.noColor, "no-color", false, "disable colors")

	rootCmd.AddCommand(
		listCmd(e, rf),
		showCmd(e, rf),
		watchCmd(e, rf),
		sortCmd(e),
		marketCmd(e),
		addCmd(e),
		removeCmd(e),
		buyCmd(e),
		sellCmd(e),
		editCmd(e),
		moveCmd(e),
		importCmd(e),
		exportCmd(e),
		searchCmd(e, rf),
		historyCmd(e, rf),
	)

	return rootCmd
}

// execute runs the command line in args and closes e afterwards, also when
// the command failed.
func execute(e *env, out io.Writer, args ...string) error {
	var rf rootFlags
	cmd := newRootCmd(e, &rf)
	cmd.SetArgs(args)
	if out != nil {
		cmd.SetOut(out)
	}
	err := cmd.Execute()
	e.close()
	return err
}

func main() {
	var e env
	if err := execute(&e, nil, os.Args[1:]...); err != nil {
		os.Exit(1)
	}
}
