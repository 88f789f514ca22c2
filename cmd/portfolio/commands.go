package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"portfolio_dashboard/internal/app/container"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/pkg/logger"
	"portfolio_dashboard/internal/pkg/render"
	"portfolio_dashboard/internal/pkg/utils"

	"github.com/google/subcommands"
	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
)

// commonFlags are shared by every command.
type commonFlags struct {
	config  string
	verbose bool
}

func (c *commonFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", utils.GetEnv("CONFIG_PATH", ""), "path to the YAML configuration; built-in defaults when empty")
	f.BoolVar(&c.verbose, "v", false, "log at debug level")
}

// setup loads the configuration, installs the loggers and wires the services.
func (c *commonFlags) setup(ctx context.Context) (*configloader.Config, *container.Container, *zap.Logger, error) {
	cfg := configloader.Default()
	if c.config != "" {
		var err error
		if cfg, err = configloader.Load(c.config); err != nil {
			return nil, nil, nil, err
		}
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(logger.ZapLevel(level))
	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	slogLevel, _ := logger.ParseLevel(level)
	logger.SetLogger(slog.New(slogzap.Option{Level: slogLevel, Logger: zapLogger}.NewZapHandler()))

	app, err := container.Build(ctx, cfg, zapLogger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, app, zapLogger, nil
}

// --- showCmd ---

type showCmd struct {
	commonFlags
	cluster string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "prints the portfolio of a wallet address" }
func (*showCmd) Usage() string {
	return `show [-config <file>] [-cluster <id>] <address>

Reads the SOL balance and SPL token holdings of <address> and prints them as a table.
`
}
func (c *showCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.cluster, "cluster", "", "cluster identifier (devnet, testnet, mainnet-beta); configured default when empty")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one wallet address is required.")
		return subcommands.ExitUsageError
	}
	address := f.Arg(0)
	if err := utils.ValidateAddress(address); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, app, zapLogger, err := c.setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer zapLogger.Sync() //nolint:errcheck
	defer app.Close()

	cluster := app.Clusters.DefaultCluster()
	if c.cluster != "" {
		var ok bool
		if cluster, ok = app.Clusters.GetClusterByIdentifier(c.cluster); !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown cluster %q\n", c.cluster)
			return subcommands.ExitUsageError
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, container.FetchTimeout(cfg))
	defer cancel()
	snapshot, err := app.Portfolio.FetchPortfolio(fetchCtx, &entity.Account{Address: address}, cluster)
	if err != nil {
		logger.Debug("Portfolio fetch failed", "error", err)
		fmt.Fprintln(os.Stderr, entity.GenericErrorMessage)
		return subcommands.ExitFailure
	}

	render.Portfolio(os.Stdout, address, snapshot)
	return subcommands.ExitSuccess
}

// --- tokenCmd ---

type tokenCmd struct {
	commonFlags
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "looks a mint address up in the token list" }
func (*tokenCmd) Usage() string {
	return `token [-config <file>] <mint>

Prints the token list entry for <mint>, downloading and caching the list when needed.
`
}
func (c *tokenCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *tokenCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one mint address is required.")
		return subcommands.ExitUsageError
	}

	_, app, zapLogger, err := c.setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer zapLogger.Sync() //nolint:errcheck
	defer app.Close()

	meta, found, err := app.Metadata.Resolve(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !found {
		fmt.Fprintf(os.Stderr, "%s: %s\n", f.Arg(0), entity.UnknownTokenSymbol)
		return subcommands.ExitFailure
	}
	render.Token(os.Stdout, meta)
	return subcommands.ExitSuccess
}
