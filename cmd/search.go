package cmd

import (
	"time"

	"hn-discuss/internal/feed"
	"hn-discuss/internal/render"

	"github.com/spf13/cobra"
)

var searchMore int

// searchCmd finds stories and comments for a page and optionally pages further.
var searchCmd = &cobra.Command{
	Use:   "search <url>",
	Short: "Search HN stories and comments about a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices(GetConfig())
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		fd := feed.New(svc.agg, args[0], svc.filters)
		if err := fd.Search(ctx); err != nil {
			return err
		}
		for i := 0; i < searchMore && fd.HasMore(); i++ {
			if _, err := fd.LoadMore(ctx); err != nil {
				return err
			}
		}
		return render.Result(cmd.OutOrStdout(), fd.Snapshot(), render.Meta{
			PageURL: args[0],
			Filters: fd.Filters(),
			HasMore: fd.HasMore(),
			Now:     time.Now(),
		}, svc.format)
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchMore, "more", 0, "load up to N additional pages while more content is available")
	rootCmd.AddCommand(searchCmd)
}
