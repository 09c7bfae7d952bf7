package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cinegraph/awards-cli/internal/resolve"
	"github.com/cinegraph/awards-cli/internal/wiki"
)

var movieCmd = &cobra.Command{
	Use:   "movie <title>",
	Short: "Resolve a single film by title",
	Long: `Fetch one film's page, extract its crew, release dates, languages,
countries and production companies, and persist the movie with its links.
Useful for backfilling a film the ceremony scrape only stored as a bare name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "movie"))
		title := strings.Join(args, " ")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		client := wiki.NewClient(wiki.ClientConfig{
			TimeoutSecs: cfg.Wiki.TimeoutSecs,
			RatePerSec:  cfg.Wiki.RatePerSec,
			UserAgent:   cfg.Wiki.UserAgent,
		})
		people := resolve.NewPersonResolver(client, st, cfg.Wiki.BaseURL)
		movies := resolve.NewMovieResolver(client, st, people, cfg.Wiki.BaseURL)

		out := movies.Resolve(ctx, title, "")
		switch out.Status {
		case resolve.StatusFound:
			log.Info("movie resolved", zap.String("title", title), zap.Int64("movie_id", out.Value))
			fmt.Printf("movie %q resolved to id %d\n", title, out.Value)
			return nil
		case resolve.StatusFailed:
			return eris.Wrapf(out.Err, "resolve movie %q", title)
		default:
			return eris.Errorf("movie %q could not be resolved", title)
		}
	},
}

func init() {
	rootCmd.AddCommand(movieCmd)
}
