package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/newsverdict/internal/api"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <url-or-text>",
		Short: "Scores one article and prints the verdict as JSON",
		Long: `Given an http(s) URL, acquires the article (falling back to canned
content when the site cannot be read) and scores its text. Any other
argument is scored as raw article text.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCommand,
	}
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	input := strings.TrimSpace(args[0])

	var out any
	if isURL(input) {
		article := appInstance.Acquirer().Acquire(cmd.Context(), input)
		result, err := appInstance.Predictor().Predict(cmd.Context(), article.Text)
		if err != nil {
			return err
		}
		out = api.NewAnalysis(input, article, result)
	} else {
		result, err := appInstance.Predictor().Predict(cmd.Context(), input)
		if err != nil {
			return err
		}
		out = api.NewVerdict(result)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write verdict: %w", err)
	}
	return nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}
