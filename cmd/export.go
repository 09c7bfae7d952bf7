package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cinegraph/awards-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Append all stored editions to the CSV side channel",
	Long: `Re-export every stored award edition to the configured CSV file.
Rows are appended under a fresh run id; the file is never rewritten.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "export"))

		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			path = cfg.Export.Path
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		editions, err := st.Editions(ctx)
		if err != nil {
			return err
		}

		appender, err := export.NewAppender(path)
		if err != nil {
			return err
		}
		defer appender.Close()

		for _, e := range editions {
			rec := export.Record{
				Edition:  e.Edition,
				Year:     e.Year,
				Date:     e.Date,
				VenueID:  e.VenueID,
				Duration: e.Duration,
				Network:  e.Network,
			}
			if err := appender.Append(rec); err != nil {
				return err
			}
		}

		log.Info("export complete", zap.Int("editions", len(editions)), zap.String("path", path))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "output CSV path (default from config)")
	rootCmd.AddCommand(exportCmd)
}
