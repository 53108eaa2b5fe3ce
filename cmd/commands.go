package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/okian/santa/internal/adapters/console"
	"github.com/okian/santa/internal/adapters/repository"
	app "github.com/okian/santa/internal/app"
	"github.com/okian/santa/internal/domain/derangement"
	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/internal/domain/sorter"
	"github.com/okian/santa/pkg/logger"
)

func runCmd(c *cli) *cobra.Command {
	var (
		dryRun bool
		suffix string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect participants interactively, then draw and send assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			defer c.writeMetrics(ctx)

			if cmd.Flags().Changed("dry-run") {
				c.cfg.DryRun = dryRun
			}
			if cmd.Flags().Changed("suffix") {
				c.cfg.Suffix = suffix
			}

			svc, err := c.service(ctx, app.WithCollector(console.NewCollector(
				console.WithInput(c.in),
				console.WithOutput(c.out),
			)))
			if err != nil {
				return c.fail(err)
			}

			report, err := svc.Run(ctx)
			return c.finish(report, err)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print invitations instead of sending them")
	cmd.Flags().StringVar(&suffix, "suffix", "", "text appended to the roster file date, e.g. _office")
	return cmd
}

func dispatchCmd(c *cli) *cobra.Command {
	var (
		dryRun   bool
		artifact string
	)

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Draw and send assignments for a roster saved by an earlier run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			defer c.writeMetrics(ctx)

			if cmd.Flags().Changed("dry-run") {
				c.cfg.DryRun = dryRun
			}

			svc, err := c.service(ctx)
			if err != nil {
				return c.fail(err)
			}

			report, err := svc.RunFromArtifact(ctx, artifact)
			return c.finish(report, err)
		},
	}

	cmd.Flags().StringVar(&artifact, "file", "", "roster CSV written by santa run")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print invitations instead of sending them")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func sortCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sort BASE DEST MISC",
		Short: "Rename date-stamped files year-first and move them out of BASE",
		Long: `sort looks at every file in BASE. Files whose name holds a date such as
07-24-2024, 07242024 or 20-Oct-2023 are renamed so the year comes first and
moved to DEST. Everything else is moved to MISC unchanged.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer c.writeMetrics(ctx)

			report, err := sorter.Sort(ctx, sorter.Request{BaseDir: args[0], DestDir: args[1], MiscDir: args[2]})
			if report != nil {
				printSortReport(c.out, report)
			}
			if err != nil {
				return c.fail(err)
			}
			return nil
		},
	}
}

// service wires the orchestrator from the loaded config.
func (c *cli) service(ctx context.Context, opts ...app.Option) (*app.Service, error) {
	cfg := c.cfg
	mode := cfg.Mode()

	assigner, err := derangement.New(derangement.WithMaxAttempts(cfg.MaxAttempts))
	if err != nil {
		return nil, err
	}

	base := []app.Option{
		app.WithStore(repository.NewCSVStore(repository.WithDir(cfg.StoreDir))),
		app.WithAssigner(assigner),
		app.WithSenderAddress(cfg.Sender),
		app.WithMode(mode),
		app.WithSuffix(cfg.Suffix),
		app.WithWorkerCount(cfg.Workers),
		app.WithSendTimeout(cfg.SendTimeout()),
		app.WithOutput(c.out),
	}
	if mode == model.ModeLive {
		if err := cfg.RequireSender(); err != nil {
			return nil, err
		}
		base = append(base, app.WithSender(c.newSender(cfg, c.out)))
	}

	logger.Get().Debug(ctx, "service configured",
		logger.String("mode", mode.String()),
		logger.String("store_dir", cfg.StoreDir),
		logger.Int("workers", cfg.Workers),
	)
	return app.New(append(base, opts...)...)
}

// finish prints the run summary and turns a fatal stage error into the exit status.
func (c *cli) finish(report *app.Report, err error) error {
	if report != nil && len(report.Outcomes) > 0 {
		printReport(c.out, report)
	}
	if err != nil {
		return c.fail(err)
	}
	return nil
}
