package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newRecommendCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recommend <learning goal>",
		Short: "Recommend courses from the published catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := context.Background()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			entries, err := a.catalog.ListPublished(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return errors.New("no courses available for recommendations; import a catalog first")
			}

			res, err := a.svc.Recommend(ctx, strings.Join(args, " "), entries)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			for i, r := range res.Recommendations {
				fmt.Printf("%d. %s\n   %s\n", i+1, r.CourseTitle, r.Reason)
			}
			if res.Explanation != "" {
				fmt.Printf("\n%s\n", res.Explanation)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	return cmd
}
