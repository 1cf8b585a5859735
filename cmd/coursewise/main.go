package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "coursewise",
		Short:         "coursewise: course catalog with an AI recommendation assistant",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "coursewise.yaml", "path to config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newRecommendCmd(&configPath),
		newChatCmd(&configPath),
		newCatalogCmd(&configPath),
		newStatsCmd(&configPath),
		newMCPCmd(&configPath),
		newTokenCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
