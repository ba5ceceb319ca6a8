// Package main is the entry point for the newsdesk terminal news client.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/media"
	"github.com/pders01/newsdesk/internal/storage"
	"github.com/pders01/newsdesk/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string
	location   string
	quiet      bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "newsdesk",
		Short: "Browse headlines and search news from the terminal",
		Long: `newsdesk is a terminal client for a news search backend. Without a
subcommand it opens the interactive browser; the subcommands print one
page of results and exit.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return debuglog.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to configuration file")
	flags.StringVar(&opts.dbPath, "db", "", "path to database file (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error, off (overrides config)")
	cmd.Flags().StringVar(&opts.location, "location", "", "open the search page at this query string, e.g. \"q=climate&language=en\"")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "skip startup banner")

	cmd.AddCommand(
		newHeadlinesCmd(opts),
		newSearchCmd(opts),
		newFiltersCmd(opts),
		newHealthCmd(opts),
		newLocationsCmd(opts),
		newVersionCmd(),
		newConfigCmd(),
	)
	return cmd
}

// load reads configuration and sets up logging ahead of every command.
func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func (o *rootOptions) client() (*api.Client, error) {
	return api.NewClient(o.cfg.API)
}

func runTUI(opts *rootOptions) error {
	cfg := opts.cfg

	client, err := opts.client()
	if err != nil {
		return err
	}

	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.TouchLastRun(Version); err != nil {
		debuglog.Warnf("recording last run: %v", err)
	}

	if !opts.quiet {
		tui.ShowBanner(Version)
	}
	tui.ApplyColors(cfg.UI.Colors)

	appOpts := []tui.Option{tui.WithLauncher(media.NewLauncher(cfg))}
	if opts.location != "" {
		appOpts = append(appOpts, tui.WithLocation(opts.location))
	}

	app := tui.NewApp(client, store, cfg, appOpts...)
	defer app.Close()

	debuglog.Infof("starting newsdesk %s against %s", Version, client.BaseURL())
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
