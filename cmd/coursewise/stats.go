package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/coursewise/coursewise/pkg/models"
	"github.com/coursewise/coursewise/pkg/tracker"
)

func newStatsCmd(configPath *string) *cobra.Command {
	var (
		callerID string
		recent   int
		since    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show assistant usage from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			tr, err := tracker.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer tr.Close()

			ctx := context.Background()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			if since > 0 && callerID == "" {
				return fmt.Errorf("--since requires --caller")
			}

			var recs []models.UsageRecord
			switch {
			case since > 0:
				recs, err = tr.QueryByCaller(ctx, callerID, time.Now().UTC().Add(-since))
			case recent > 0:
				recs, err = tr.Recent(ctx, recent)
			}
			if err != nil {
				return err
			}
			if since > 0 || recent > 0 {
				if len(recs) == 0 {
					fmt.Println("No calls recorded.")
					return nil
				}
				fmt.Fprintln(w, "TIME\tCALLER\tKIND\tOUTCOME\tLATENCY MS\tREQUEST ID")
				for _, r := range recs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
						r.CreatedAt.Format("2006-01-02T15:04:05"), r.CallerID, r.Kind, r.Outcome, r.LatencyMs, r.RequestID)
				}
				return w.Flush()
			}

			summaries, err := tr.Summary(ctx, callerID)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No usage data found.")
				return nil
			}

			day, err := tr.DispatchedSince(ctx, time.Now().UTC().Add(-24*time.Hour))
			if err != nil {
				return err
			}
			fmt.Printf("Model calls in the last 24h: %d\n\n", day)

			fmt.Fprintln(w, "CALLER\tKIND\tREQUESTS\tCACHE HITS\tMODEL CALLS\tFAILURES\tAVG MS")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%.0f\n",
					s.CallerID, s.Kind, s.RequestCount, s.CacheHits, s.ModelCalls, s.Failures, s.AvgLatencyMs)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&callerID, "caller", "", "filter by caller id")
	cmd.Flags().IntVar(&recent, "recent", 0, "show the N most recent calls instead of the summary")
	cmd.Flags().DurationVar(&since, "since", 0, "show the caller's calls within this window (requires --caller)")
	return cmd
}
