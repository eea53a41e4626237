package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "geniusclasses",
		Short:         "Genius Classes website and admin panel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newHashPasswordCmd(), newEmbedURLCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("geniusclasses failed", "error", err)
		os.Exit(1)
	}
}
