package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vxlinks/internal/delivery"
	"vxlinks/internal/rewrite"
)

func newRewriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rewrite <text>...",
		Short:   "Print the replies the bot would send for a message",
		Example: `  vxlinks rewrite "look https://vm.tiktok.com/abc123 and https://x.com/user/status/42"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRewrite(cmd, strings.Join(args, " "))
		},
	}
}

func printRewrite(cmd *cobra.Command, text string) error {
	out := cmd.OutOrStdout()
	batches := delivery.Compose(rewrite.New().Rewrite(text))
	if len(batches) == 0 {
		_, err := fmt.Fprintln(out, "no supported links found")
		return err
	}
	for i, b := range batches {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(out, b.Text()); err != nil {
			return err
		}
	}
	return nil
}
