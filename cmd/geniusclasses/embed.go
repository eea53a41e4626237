package main

import (
	"fmt"

	"github.com/geniusclasses/geniusclasses/internal/video"
	"github.com/spf13/cobra"
)

func newEmbedURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed-url <link>...",
		Short: "Show the embeddable form of YouTube links",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, raw := range args {
				ref := video.Normalize(raw)
				if !ref.Valid() {
					invalid++
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tinvalid video link\n", raw)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, ref.EmbedURL)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d links are not recognised YouTube URLs", invalid, len(args))
			}
			return nil
		},
	}
}
