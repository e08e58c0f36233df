package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jask/jaskledger/internal/commands"
	"github.com/jask/jaskledger/internal/config"
	"github.com/jask/jaskledger/internal/database"
	"github.com/jask/jaskledger/internal/database/repository"
	"github.com/jask/jaskledger/internal/logging"
	"github.com/jask/jaskledger/internal/service"
)

// RootOptions holds global flags and the lazily opened runtime shared by
// every subcommand.
type RootOptions struct {
	ConfigFile string
	DBPath     string
	Format     string // "json" | "text"
	Verbose    bool

	Config config.Config

	logCloser io.Closer
	db        *sql.DB
	stores    *repository.Stores
	registry  *commands.Registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Execute runs the CLI with args and returns the process exit code. The
// database and log file are released on every path.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if cerr := opts.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return GetExitCode(err)
}

// newRootCommand creates the root command and the options its subcommands
// share.
func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "jaskledger",
		Short:         "jaskledger - personal finance ledger",
		Long:          "Accounts, ledgers, categories and tagged transactions stored in a local SQLite database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, c.CommandPath(), err)
	})

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default $JASKLEDGER_CONFIG or ~/.config/jaskledger/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (overrides database.path)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewOpsCommand(opts))
	cmd.AddCommand(NewInvokeCommand(opts))
	cmd.AddCommand(NewAccountsCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd, opts
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	path := o.ConfigFile
	if path == "" {
		path = os.Getenv("JASKLEDGER_CONFIG")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if o.DBPath != "" {
		cfg.Database.Path = o.DBPath
	}
	if o.Format != "" {
		cfg.UI.Format = o.Format
	}
	if !slices.Contains(ValidFormats, cfg.UI.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.UI.Format, ValidFormats))
	}
	o.Format = cfg.UI.Format
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	o.Config = cfg

	_, closer, err := logging.Setup(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "set up logging", err)
	}
	o.logCloser = closer
	return nil
}

// Registry returns the command registry, opening the database on first use.
func (o *RootOptions) Registry(ctx context.Context) (*commands.Registry, error) {
	if o.registry != nil {
		return o.registry, nil
	}
	stores, err := o.Stores(ctx)
	if err != nil {
		return nil, err
	}
	o.registry = commands.New(commands.Deps{
		Stores:      stores,
		Maintenance: &service.MaintenanceService{DB: o.db},
		Suggester:   &service.TagSuggester{Tags: stores.Tags},
	})
	return o.registry, nil
}

// Stores returns the stores, opening the database on first use.
func (o *RootOptions) Stores(ctx context.Context) (*repository.Stores, error) {
	if o.stores != nil {
		return o.stores, nil
	}
	db, err := database.Setup(ctx, o.Config.Database.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	stores := repository.NewStores(db, o.Config.Tags.DefaultColor)
	if err := stores.Currencies.SeedDefaults(ctx); err != nil {
		_ = db.Close()
		return nil, WrapExitError(ExitCommandError, "seed currencies", err)
	}
	slog.Debug("database ready", "path", o.Config.Database.Path)
	o.db, o.stores = db, stores
	return stores, nil
}

// Close releases the database and the log file.
func (o *RootOptions) Close() error {
	var err error
	if o.db != nil {
		err = o.db.Close()
		o.db, o.stores, o.registry = nil, nil, nil
	}
	if o.logCloser != nil {
		if cerr := o.logCloser.Close(); err == nil {
			err = cerr
		}
		o.logCloser = nil
	}
	return err
}
