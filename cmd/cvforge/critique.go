package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dgallion1/cvforge/internal/critique"
	"github.com/dgallion1/cvforge/internal/docx"
	"github.com/dgallion1/cvforge/internal/parser"
	"github.com/dgallion1/cvforge/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	critiqueCV         string
	critiqueJob        string
	critiqueProvider   string
	critiqueModel      string
	critiqueAPIKey     string
	critiqueTimeout    time.Duration
	critiqueMaxTokens  int
	critiqueJSON       bool
	critiqueApply      bool
	critiqueIDs        []int
	critiqueOut        string
	critiqueFontFamily string
	critiqueFontSize   int
)

// providerKeyEnv names the environment variable holding each provider's key.
var providerKeyEnv = map[critique.Provider]string{
	critique.ProviderAnthropic: "ANTHROPIC_API_KEY",
	critique.ProviderOpenAI:    "OPENAI_API_KEY",
	critique.ProviderGoogle:    "GEMINI_API_KEY",
}

var critiqueCmd = &cobra.Command{
	Use:   "critique",
	Short: "Score a CV against a job post and suggest rewrites",
	RunE: func(cmd *cobra.Command, args []string) error {
		if critiqueCV == "" || critiqueJob == "" {
			return fmt.Errorf("--cv and --job are required")
		}
		if critiqueApply && critiqueOut == "" {
			return fmt.Errorf("--apply needs --out")
		}
		provider, err := critique.ParseProvider(critiqueProvider)
		if err != nil {
			return err
		}
		apiKey, err := resolveAPIKey(critiqueAPIKey, provider, os.Getenv)
		if err != nil {
			return err
		}

		cvHTML, err := extractFile(critiqueCV, true, parser.Options{})
		if err != nil {
			return err
		}
		jobPost, err := extractFile(critiqueJob, false, parser.Options{PDFFallbackPdftotext: true})
		if err != nil {
			return err
		}

		client, err := critique.New(critique.Options{
			Provider:        provider,
			Model:           critiqueModel,
			APIKey:          apiKey,
			Timeout:         critiqueTimeout,
			MaxPromptTokens: critiqueMaxTokens,
			Logger:          log,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		log.Debug("asking provider", "provider", provider, "model", client.Model())
		analysis, err := pipeline.AnalyzeWithRetry(cmd.Context(), client, cvHTML, jobPost, log)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if critiqueJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(analysis); err != nil {
				return err
			}
		} else {
			printReport(out, analysis)
		}

		if !critiqueApply {
			return nil
		}
		data, err := os.ReadFile(critiqueCV)
		if err != nil {
			return fmt.Errorf("read cv: %w", err)
		}
		reqs := critique.Requests(analysis.Improvements, critiqueIDs, critiqueFontFamily, critiqueFontSize)
		res, err := docx.Apply(data, reqs)
		if err != nil {
			return err
		}
		if err := os.WriteFile(critiqueOut, res.Data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if !critiqueJSON {
			fmt.Fprintf(out, "\nApplied to %s:\n", critiqueOut)
			printMatches(out, reqs, res.Matches)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(critiqueCmd)
	f := critiqueCmd.Flags()
	f.StringVar(&critiqueCV, "cv", "", "CV to review (.docx)")
	f.StringVar(&critiqueJob, "job", "", "job post (.txt, .md, .html, .pdf, .docx)")
	f.StringVar(&critiqueProvider, "provider", string(critique.ProviderAnthropic), "anthropic, openai or google")
	f.StringVar(&critiqueModel, "model", "", "model name (provider default if empty)")
	f.StringVar(&critiqueAPIKey, "api-key", "", "provider API key (defaults to the provider's env var)")
	f.DurationVar(&critiqueTimeout, "timeout", 120*time.Second, "provider request timeout")
	f.IntVar(&critiqueMaxTokens, "max-prompt-tokens", 30000, "truncate inputs to keep the prompt under this many tokens (0 disables)")
	f.BoolVar(&critiqueJSON, "json", false, "print the analysis as JSON")
	f.BoolVar(&critiqueApply, "apply", false, "write the suggestions into a copy of the CV")
	f.IntSliceVar(&critiqueIDs, "ids", nil, "improvement IDs to apply (all if empty)")
	f.StringVar(&critiqueOut, "out", "", "output .docx for --apply")
	f.StringVar(&critiqueFontFamily, "font-family", "", "font for applied suggestions")
	f.IntVar(&critiqueFontSize, "font-size", 0, "font size in points for applied suggestions")
}

// resolveAPIKey prefers the flag, then the provider's environment variable.
func resolveAPIKey(flag string, p critique.Provider, getenv func(string) string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	env := providerKeyEnv[p]
	if key := getenv(env); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key: pass --api-key or set %s", env)
}

func printReport(w io.Writer, a *critique.Analysis) {
	fmt.Fprintf(w, "Score: %d → %d\n", a.OverallScore, a.NewScore)
	if len(a.Strengths) > 0 {
		fmt.Fprintln(w, "\nStrengths:")
		for _, s := range a.Strengths {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	}
	if len(a.Improvements) == 0 {
		fmt.Fprintln(w, "\nNo improvements suggested.")
		return
	}
	fmt.Fprintln(w, "\nImprovements:")
	for _, imp := range a.Improvements {
		fmt.Fprintf(w, "  [%d] %s\n", imp.ID, strings.TrimSpace(imp.OriginalText))
		fmt.Fprintf(w, "      → %s\n", strings.TrimSpace(imp.Suggestion))
	}
}
