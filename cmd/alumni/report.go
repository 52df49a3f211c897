package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"alumni/internal/aggregate"
	"alumni/internal/cli"
	"alumni/internal/core"
	"alumni/internal/log"
	"alumni/internal/report"
)

type reportFlags struct {
	years        []string
	courses      []string
	universities []string
	format       string
}

func newReportCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard for one selection and exit",
		Example: `  alumni report --years 2020,2021 --courses BSIT,BSN,BSCS
  alumni report --years 2020 --universities UST,UP,DLSU --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(flags.format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg, os.Stderr).WithComponent(log.ComponentReport)

			table, src, err := cli.OpenTable(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer src.Close()

			sel := core.NewSelection(
				core.ExpandList(flags.years, table.Unique(core.FieldBatch)),
				core.ExpandList(flags.courses, table.Unique(core.FieldCourse)),
				core.ExpandList(flags.universities, table.Unique(core.FieldUniversity)),
			)
			view := aggregate.Render(table, sel, cli.AggregateOptions(cfg))
			return report.Write(cmd.OutOrStdout(), view, format)
		},
	}

	cmd.Flags().StringArrayVar(&flags.years, "years", nil, "batches to include (repeat, or comma separate a single value)")
	cmd.Flags().StringArrayVar(&flags.courses, "courses", nil, "courses to include")
	cmd.Flags().StringArrayVar(&flags.universities, "universities", nil, "universities to include")
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(report.FormatText), "output format: text, json or yaml")
	return cmd
}
