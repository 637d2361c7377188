package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/avvvet/concierge-intent/internal/transcript"
)

func newRecentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent recorded exchanges",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			if cfg.RedisURL == "" {
				return errors.New("REDIS_URL is not set; no transcripts are recorded")
			}

			store, err := transcript.NewRedisStore(cfg.RedisURL, cfg.TranscriptTTL)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			exchanges, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return printExchanges(cmd, exchanges)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of exchanges to show")
	return cmd
}

func printExchanges(cmd *cobra.Command, exchanges []transcript.Exchange) error {
	if len(exchanges) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no exchanges recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECEIVED\tINTENT\tLANG\tPMS\tLATENCY\tMESSAGE")
	for _, ex := range exchanges {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\t%s\n",
			ex.ReceivedAt.Local().Format(time.DateTime),
			ex.Intent,
			ex.Language,
			ex.PMSStatus,
			ex.LatencyMs,
			truncate(ex.Message, 60),
		)
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
