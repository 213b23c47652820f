package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/state"
)

// cli holds the root flags shared by every subcommand.
type cli struct {
	dbPath    *string
	list      *string
	ephemeral *bool
	verbose   *bool
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()

	err := root.ParseAndRun(ctx, os.Args[1:], ff.WithEnvVarPrefix("TALLY"))

	switch {
	case err == nil:
	case errors.Is(err, ff.ErrHelp), errors.Is(err, ff.ErrNoExec):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *ff.Command {
	fs := ff.NewFlagSet("tally")

	c := &cli{
		dbPath:    fs.StringLong("db", "", "bolt database file (overrides STORAGE_BOLT_PATH)"),
		list:      fs.StringLong("list", "", "list name (overrides STORAGE_LIST)"),
		ephemeral: fs.BoolLong("ephemeral", "keep state in memory only"),
		verbose:   fs.BoolLong("verbose", "log debug output"),
	}

	return &ff.Command{
		Name:      "tally",
		Usage:     "tally <command> [flags]",
		ShortHelp: "shopping list and budget tracker",
		Flags:     fs,
		Subcommands: []*ff.Command{
			c.listCommand(fs),
			c.addCommand(fs),
			c.editCommand(fs),
			c.removeCommand(fs),
			c.budgetCommand(fs),
			c.clearCommand(fs),
			c.lookupCommand(fs),
			c.scanCommand(fs),
			c.camerasCommand(fs),
			c.reportCommand(fs),
			c.planCommand(fs),
		},
	}
}

// withApp loads configuration, applies the root flags and builds the services.
func (c *cli) withApp(run func(ctx context.Context, a *app.App, args []string) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if *c.verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if *c.dbPath != "" {
			cfg.Storage.Driver = "bolt"
			cfg.Storage.BoltPath = *c.dbPath
		}

		if *c.list != "" {
			cfg.Storage.List = *c.list
		}

		var a *app.App
		if *c.ephemeral {
			a, err = app.NewWithStore(ctx, cfg, state.NewMemoryStore())
		} else {
			a, err = app.New(ctx, cfg)
		}

		if err != nil {
			return err
		}
		defer a.Close()

		return run(ctx, a, args)
	}
}
