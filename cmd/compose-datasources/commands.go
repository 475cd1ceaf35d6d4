package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/plantarium-platform/compose-datasources/internal/registry"
	"github.com/plantarium-platform/compose-datasources/internal/scan"
	"github.com/plantarium-platform/compose-datasources/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "compose-datasources.yaml"

const inMemoryNotice = "No host configured (host.url), records are kept in memory only and are not persisted"

// emptyArg stands for an empty user or password on the command line.
const emptyArg = "-"

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "compose-datasources",
		Short:         "Registers database connections for the services of docker-compose files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "path to the yaml configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "", "project root to scan, overrides the configuration")
	rootCmd.PersistentFlags().StringVar(&opts.scope, "scope", "", "registry scope, defaults to the project root name")

	rootCmd.AddCommand(newWatchCommand(opts), newScanCommand(opts), newOpenCommand(opts))
	return rootCmd
}

func newWatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "scans the project once, then follows compose file changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppWithDI(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Create a channel to listen for OS signals
			signalChannel := make(chan os.Signal, 1)
			signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signalChannel)
			go func() {
				select {
				case <-signalChannel:
					a.logger.Info("Termination signal received. Shutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			watcher, err := watch.New(a.config.Project.RootFolder, a.config.Project.MaxDepth, a.logger)
			if err != nil {
				return err
			}
			defer watcher.Close()

			// Watch before scanning so changes made during the scan are not lost
			if err := watcher.Start(ctx); err != nil {
				return err
			}

			report := a.orchestrator.StartupScan(ctx)
			printReport(cmd, report)

			a.logger.Info("Waiting for compose file changes...", zap.String("root", a.config.Project.RootFolder))
			a.orchestrator.Run(ctx, watcher.Events())
			return nil
		},
	}
}

func newScanCommand(opts *options) *cobra.Command {
	var dryRun bool

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "scans the project once and registers the detected databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppWithDI(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if dryRun {
				return printConnections(cmd, a)
			}

			report := a.orchestrator.StartupScan(cmd.Context())
			printReport(cmd, report)
			printInMemoryNotice(cmd, a)
			return nil
		},
	}
	scanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the inferred connections without writing them")
	return scanCmd
}

func newOpenCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "open <driver> <url> [user] [password] [name] [comment]",
		Short: "creates or replaces a single data source, use - for an empty user or password",
		Args:  cobra.RangeArgs(2, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppWithDI(*opts)
			if err != nil {
				return err
			}
			defer a.Close()

			req := registry.RegisterRequest{
				Driver:   args[0],
				URL:      args[1],
				Username: optionalArg(args, 2),
				Password: optionalArg(args, 3),
				Name:     optionalArg(args, 4),
				Comment:  optionalArg(args, 5),
			}

			replaced, err := a.reconciler.Register(cmd.Context(), a.config.Project.Scope, req)
			if err != nil {
				return fmt.Errorf("failed to register data source: %w", err)
			}

			action := "Created"
			if replaced {
				action = "Replaced"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s data source for %s in scope %s\n", action, req.URL, a.config.Project.Scope)
			printInMemoryNotice(cmd, a)
			return nil
		},
	}
}

// printConnections lists what a scan would register, without touching the registry.
func printConnections(cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	root := a.config.Project.RootFolder

	for _, path := range scan.Discover(root, a.config.Project.MaxDepth, a.logger) {
		databases, err := a.orchestrator.Inspect(path)
		if err != nil {
			fmt.Fprintf(out, "%s: skipped (%v)\n", path, err)
			continue
		}
		for _, db := range databases {
			fmt.Fprintf(out, "%s: %s -> %s (%s, user %q)\n",
				path, registry.RecordName(db.ServiceName), db.JDBCURL(), db.DriverName(), db.Username)
		}
	}
	return nil
}

func printReport(cmd *cobra.Command, report scan.Report) {
	fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d compose file(s): %d database(s), %d created, %d updated, %d failed, %d unreadable\n",
		report.Files, report.Databases, report.Outcome.Created, report.Outcome.Updated, report.Outcome.Failed, report.Failed)
}

func printInMemoryNotice(cmd *cobra.Command, a *app) {
	if a.inMemory {
		fmt.Fprintln(cmd.ErrOrStderr(), inMemoryNotice)
	}
}

func optionalArg(args []string, index int) string {
	if index >= len(args) || args[index] == emptyArg {
		return ""
	}
	return args[index]
}
