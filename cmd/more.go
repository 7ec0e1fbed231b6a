package cmd

import (
	"fmt"
	"strconv"

	"hn-discuss/internal/render"

	"github.com/spf13/cobra"
)

var morePage int

// moreCmd groups the incremental loaders. An empty page means the stream is exhausted.
var moreCmd = &cobra.Command{
	Use:   "more",
	Short: "Load one more page of comments",
}

var moreGeneralCmd = &cobra.Command{
	Use:   "general <url>",
	Short: "Load a page of general comments mentioning a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices(GetConfig())
		if err != nil {
			return err
		}
		defer svc.Close()

		cs, err := svc.agg.LoadMoreGeneral(cmd.Context(), args[0], svc.filters, morePage)
		if err != nil {
			return err
		}
		return render.Comments(cmd.OutOrStdout(), cs, svc.format)
	},
}

var moreStoryCmd = &cobra.Command{
	Use:   "story <story-id>",
	Short: "Load a page of comments for one story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid story id %q", args[0])
		}
		svc, err := newServices(GetConfig())
		if err != nil {
			return err
		}
		defer svc.Close()

		cs, err := svc.agg.LoadMoreForStory(cmd.Context(), id, svc.filters, morePage)
		if err != nil {
			return err
		}
		return render.Comments(cmd.OutOrStdout(), cs, svc.format)
	},
}

func init() {
	moreCmd.PersistentFlags().IntVar(&morePage, "page", 1, "zero-based page to load")
	moreCmd.AddCommand(moreGeneralCmd, moreStoryCmd)
	rootCmd.AddCommand(moreCmd)
}
