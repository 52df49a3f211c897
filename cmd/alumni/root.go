package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "alumni",
		Short: "Alumni dashboard: course and university breakdowns of graduates",
		Long: `alumni loads the alumni table once from the configured source and either
serves the interactive dashboard or prints a single report.

Configuration is read from the environment (and a .env file when present):
DATA_SOURCE, DATA_FILE, SQLITE_DB_PATH, POSTGRES_DSN, GOOGLE_SPREADSHEET_ID,
PERCENTAGE_BASIS, MIN_SELECTED, LOG_LEVEL and friends.`,
		SilenceUsage: true,
	}

	serve := newServeCmd()
	root.AddCommand(serve, newReportCmd())

	// Running the bare binary serves the dashboard
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}
