package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cinegraph/awards-cli/internal/edition"
	"github.com/cinegraph/awards-cli/internal/export"
	"github.com/cinegraph/awards-cli/internal/resolve"
	"github.com/cinegraph/awards-cli/internal/wiki"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a range of ceremony editions",
	Long: `Scrape ceremony pages for a range of edition numbers and persist
venues, people, films, role connections and nominations.

Each edition is processed independently: one malformed or missing page is
logged and skipped without stopping the others. Editions already in the
store are skipped.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "scrape"))

		from, _ := cmd.Flags().GetInt("from")
		to, _ := cmd.Flags().GetInt("to")
		if from == 0 {
			from = cfg.Scrape.FromEdition
		}
		if to == 0 {
			to = cfg.Scrape.ToEdition
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var exporter edition.Exporter
		if cfg.Export.Enabled {
			appender, err := export.NewAppender(cfg.Export.Path)
			if err != nil {
				return err
			}
			defer appender.Close()
			exporter = appender
		}

		client := wiki.NewClient(wiki.ClientConfig{
			TimeoutSecs: cfg.Wiki.TimeoutSecs,
			RatePerSec:  cfg.Wiki.RatePerSec,
			UserAgent:   cfg.Wiki.UserAgent,
		})
		people := resolve.NewPersonResolver(client, st, cfg.Wiki.BaseURL)
		venues := resolve.NewVenueResolver(st)
		movies := resolve.NewMovieResolver(client, st, people, cfg.Wiki.BaseURL)
		builder := edition.NewBuilder(client, st, people, venues, movies, exporter, cfg.Wiki.BaseURL)

		log.Info("starting scrape", zap.Int("from", from), zap.Int("to", to),
			zap.Int("max_concurrent", cfg.Scrape.MaxConcurrent))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Scrape.MaxConcurrent)
		for n := from; n <= to; n++ {
			g.Go(func() error {
				if err := builder.Build(gctx, n); err != nil {
					// One bad ceremony must not halt the rest.
					log.Error("edition failed", zap.Int("edition", n), zap.Error(err))
				}
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		log.Info("scrape complete")
		return nil
	},
}

func init() {
	scrapeCmd.Flags().Int("from", 0, "first edition number (default from config)")
	scrapeCmd.Flags().Int("to", 0, "last edition number (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}
