package cmd

import (
	"errors"
	"fmt"

	"hn-discuss/internal/ai"

	"github.com/spf13/cobra"
)

var digestLanguage string

// digestCmd summarizes the discussion found for a page.
var digestCmd = &cobra.Command{
	Use:   "digest <url>",
	Short: "Summarize the HN discussion about a page with OpenAI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.OpenAI.APIKey == "" {
			return errors.New("openai.api_key is not configured")
		}
		summarizer, err := ai.NewOpenAI(ai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL})
		if err != nil {
			return err
		}
		svc, err := newServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		res, err := svc.agg.SearchAll(cmd.Context(), args[0], svc.filters)
		if err != nil {
			return err
		}
		lang := digestLanguage
		if lang == "" {
			lang = cfg.OpenAI.Language
		}
		summary, err := summarizer.SummarizeDiscussion(cmd.Context(), args[0], res, lang)
		if err != nil {
			return err
		}
		if summary == "" {
			summary = "No HN content found for this page"
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return nil
	},
}

func init() {
	digestCmd.Flags().StringVar(&digestLanguage, "language", "", "summary language (default: openai.language)")
	rootCmd.AddCommand(digestCmd)
}
