package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask the learning assistant a question",
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

			text, err := a.svc.Chat(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}
