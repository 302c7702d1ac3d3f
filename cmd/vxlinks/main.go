// Command vxlinks runs the link conversion bot and its maintenance tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vxlinks/internal/bot"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vxlinks",
		Short: "Discord bot that replies with embed-friendly social media links",
		Long: `vxlinks watches guild messages for TikTok, Instagram and X/Twitter links
and replies with rewritten links that Discord can embed.

Without a subcommand it runs the bot, the same as "vxlinks run".`,
		Version:       bot.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBot,
	}
	root.AddCommand(newRunCmd(), newMigrateCmd(), newRewriteCmd())
	return root
}
