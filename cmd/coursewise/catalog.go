package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coursewise/coursewise/pkg/catalog"
	"github.com/coursewise/coursewise/pkg/models"
)

func newCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the course catalog",
	}
	cmd.AddCommand(newCatalogImportCmd(configPath), newCatalogListCmd(configPath))
	return cmd
}

func openCatalog(configPath string) (*catalog.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return catalog.New(cfg.DBPath)
}

func newCatalogImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <courses.yaml>",
		Short: "Import or update courses from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			store, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := context.Background()
			n, err := store.Import(ctx, courses)
			if err != nil {
				return err
			}
			total, err := store.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d courses (%d in catalog).\n", n, total)
			return nil
		},
	}
}

func newCatalogListCmd(configPath *string) *cobra.Command {
	var f models.CourseFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			courses, err := store.List(context.Background(), f)
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				fmt.Println("No courses found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TITLE\tLEVEL\tCATEGORY\tDURATION\tCREATED")
			for _, c := range courses {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					c.Title, c.Level, c.Category, c.Duration, c.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&f.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&f.Level, "level", "", "filter by level")
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive match on title or description")
	return cmd
}
