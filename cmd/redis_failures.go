package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hn-discuss/internal/redisclient"
	"hn-discuss/internal/storage"

	"github.com/spf13/cobra"
)

var failuresCount int64

// failuresCmd lists the most recent upstream requests that were treated as empty.
var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List recent failed search requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Redis.Addr == "" {
			return errors.New("redis.addr is not configured")
		}
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := storage.NewRedisStore(rdb, cfg.Redis.FailureStream, cfg.Redis.FailureStreamMaxLen)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		recs, err := store.RecentFailures(ctx, failuresCount)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "no failures recorded")
			return nil
		}
		for _, r := range recs {
			fmt.Fprintf(out, "%s  %-20s status=%d page=%d", r.At.Format(time.RFC3339), r.Op, r.Status, r.Page)
			if r.StoryID != 0 {
				fmt.Fprintf(out, " story=%d", r.StoryID)
			}
			if r.Query != "" {
				fmt.Fprintf(out, " query=%s", r.Query)
			}
			if r.Error != "" {
				fmt.Fprintf(out, " error=%q", r.Error)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	failuresCmd.Flags().Int64Var(&failuresCount, "count", 20, "number of entries to show")
	redisCmd.AddCommand(failuresCmd)
}
