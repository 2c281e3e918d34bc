package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/schedule/internal/config"
	"github.com/pfrederiksen/schedule/internal/logger"
	"github.com/pfrederiksen/schedule/internal/schedule"
	"github.com/pfrederiksen/schedule/internal/storage"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitConflict = 2
	ExitNotFound = 3
)

// app holds the state of one invocation.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	outUI  *ui
	errUI  *ui
	now    func() time.Time

	configPath string
	verbose    bool

	store   *storage.Store
	closers []io.Closer
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:      config.NewViper(),
		out:    stdout,
		errOut: stderr,
		outUI:  newUI(stdout),
		errUI:  newUI(stderr),
		now:    time.Now,
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage a personal calendar of time-blocked schedules",
		Long: `A CLI tool to keep a personal calendar in a local JSON file.
Schedules cannot overlap: adding one that intersects an existing
schedule is rejected.

Exit codes:
  0  success
  1  error (bad arguments, unreadable or malformed calendar file)
  2  schedule conflicts with an existing one, or ends before it starts
  3  no schedule with the given id`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.String(config.KeyFile, "", "Calendar file (default "+storage.DefaultFileName+", env SCHEDULE_FILE)")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	_ = a.v.BindPFlag(config.KeyFile, flags.Lookup(config.KeyFile))

	cmd.AddCommand(a.listCmd(), a.addCmd(), a.deleteCmd(), a.exportCmd())
	return cmd
}

// setup resolves configuration, installs the logger and opens the store
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.verbose {
		level = logger.LevelDebug
	}

	var w io.Writer = a.errOut
	if cfg.LogFile != "" {
		fw := logger.NewFileWriter(cfg.LogFile, cfg.LogMaxSizeMB)
		a.closers = append(a.closers, fw)
		w = fw
	}
	logger.SetDefault(logger.New(level, w))

	store, err := storage.New(cfg.File)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	a.store = store

	logger.Debug("configuration resolved", logger.Fields{
		"command":     cmd.Name(),
		"file":        store.Path(),
		"config_file": a.v.ConfigFileUsed(),
		"log_level":   string(level),
	})
	return nil
}

func (a *app) close() {
	for _, c := range a.closers {
		c.Close() // nolint:errcheck
	}
	a.closers = nil
}

// exitCodeFor maps a command error onto the process exit code
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, schedule.ErrConflict), errors.Is(err, schedule.ErrInvalidRange):
		return ExitConflict
	case errors.Is(err, schedule.ErrNotFound):
		return ExitNotFound
	default:
		return ExitError
	}
}

// Run executes the CLI with args and returns the exit code
func Run(args []string, stdout, stderr io.Writer) int {
	prev := logger.Default()
	defer logger.SetDefault(prev)

	a := newApp(stdout, stderr)
	cmd := a.rootCmd()
	cmd.SetArgs(args)

	err := cmd.Execute()
	code := exitCodeFor(err)

	if err != nil {
		fmt.Fprintln(stderr, a.errUI.RenderFail("Error: "+err.Error()))
		fields := logger.Fields{"args": args, "exit_code": code, "error": err.Error()}
		if code == ExitError {
			logger.Warn("command failed", fields)
		} else {
			logger.Info("command rejected", fields)
		}
	}
	logger.Debug("command finished", logger.Fields{"metrics": logger.GetMetricsSnapshot()})

	a.close()
	return code
}

// Execute runs the CLI
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
