package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amidelab/enumerator/config"
	"github.com/amidelab/enumerator/internal/delivery/cli"
	"github.com/amidelab/enumerator/internal/domain"
	"github.com/amidelab/enumerator/internal/infrastructure/cache"
	"github.com/amidelab/enumerator/internal/infrastructure/chem"
	"github.com/amidelab/enumerator/internal/logging"
	"github.com/amidelab/enumerator/internal/usecase"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

// run builds and executes the command tree against the given streams
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	if args == nil {
		// cobra reads os.Args when given nil
		args = []string{}
	}
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "enumerate --acid=<file> --amine=<file>",
		Short: "Enumerate amide coupling products for every acid and amine pair",
		Long: `enumerate reads two reagent files, one "<SMILES> <label>" per line, and
applies an amide coupling to every (acid, amine) pair.

Pairs giving exactly one product are written to stdout as
"<product> <acid label> + <amine label>". Other pairs are reported on stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError(cmd, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnumerate(cmd, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(usageError)

	root.Flags().String("acid", "", "file of carboxylic acid reagents")
	root.Flags().String("amine", "", "file of amine reagents")
	root.Flags().String("reaction", domain.AmideCouplingPattern, "reaction SMARTS applied to each pair")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", logging.FormatConsole, "log format (console, json)")

	root.AddCommand(newServeCmd(stderr))
	root.AddCommand(newVersionCmd(stdout))
	return root
}

// usageError prints the command usage on the error stream and marks err as
// a usage failure
func usageError(cmd *cobra.Command, err error) error {
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	return cli.UsageError(err)
}

func runEnumerate(cmd *cobra.Command, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.ValidateEnumerate(); err != nil {
		return usageError(cmd, err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	defer func() { _ = logger.Sync() }()

	structures := cache.NewMemoryCache()
	defer structures.Close()

	engine := chem.NewEngine()
	loader := usecase.NewReagentLoader(engine, structures, logger, usecase.ReagentLoaderConfig{
		CacheTTL: cfg.Cache.TTL,
	})
	service := usecase.NewEnumerationService(engine, logger)
	runner := cli.NewRunner(loader, service, cli.NewPrinter(stdout, stderr), logger)

	summary, err := runner.Run(cmd.Context(), *cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("enumeration interrupted", zap.Int("pairs", summary.Pairs))
		}
		return err
	}
	return nil
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "enumerate %s\n", version)
		},
	}
}
