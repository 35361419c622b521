package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/cvforge/internal/docx"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	replaceIn         string
	replaceOut        string
	replaceRequests   string
	replaceFind       string
	replaceWith       string
	replaceFontFamily string
	replaceFontSize   int
)

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Apply literal find/replace edits to a .docx",
	Long: `Replace finds literal text in the paragraphs of a .docx and swaps in new
text. The replacement may use **bold**, *italic*, ***bold italic***,
__underline__ and `+"`accent`"+` markup.

Edits come from --find/--replace or from a YAML file holding a list of
{find, replace, font_family, font_size} entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if replaceIn == "" || replaceOut == "" {
			return fmt.Errorf("--in and --out are required")
		}

		var reqs []docx.Request
		switch {
		case replaceRequests != "" && replaceFind != "":
			return fmt.Errorf("use either --requests or --find, not both")
		case replaceRequests != "":
			var err error
			if reqs, err = loadRequests(replaceRequests); err != nil {
				return err
			}
		case replaceFind != "":
			reqs = []docx.Request{{Find: replaceFind, Replace: replaceWith}}
		default:
			return fmt.Errorf("--requests or --find is required")
		}
		for i := range reqs {
			if reqs[i].FontFamily == "" && reqs[i].FontSize == 0 {
				reqs[i].FontFamily = replaceFontFamily
				reqs[i].FontSize = replaceFontSize
			}
			if err := reqs[i].Validate(); err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
		}

		data, err := os.ReadFile(replaceIn)
		if err != nil {
			return fmt.Errorf("read cv: %w", err)
		}
		res, err := docx.Apply(data, reqs)
		if err != nil {
			return err
		}
		if err := os.WriteFile(replaceOut, res.Data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Debug("replace complete", "in", replaceIn, "out", replaceOut, "requests", len(reqs))

		printMatches(cmd.OutOrStdout(), reqs, res.Matches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replaceCmd)
	replaceCmd.Flags().StringVar(&replaceIn, "in", "", "input .docx")
	replaceCmd.Flags().StringVar(&replaceOut, "out", "", "output .docx")
	replaceCmd.Flags().StringVar(&replaceRequests, "requests", "", "YAML file with a list of edits")
	replaceCmd.Flags().StringVar(&replaceFind, "find", "", "literal text to find")
	replaceCmd.Flags().StringVar(&replaceWith, "replace", "", "replacement text (markup allowed)")
	replaceCmd.Flags().StringVar(&replaceFontFamily, "font-family", "", "font for replaced text")
	replaceCmd.Flags().IntVar(&replaceFontSize, "font-size", 0, "font size in points for replaced text")
}

// loadRequests reads a YAML list of edits. A mapping with a "requests" key
// holding the list is accepted too.
func loadRequests(path string) ([]docx.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}

	var reqs []docx.Request
	if err := yaml.Unmarshal(data, &reqs); err == nil {
		return reqs, nil
	}
	var wrapped struct {
		Requests []docx.Request `yaml:"requests"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse requests %s: %w", path, err)
	}
	return wrapped.Requests, nil
}

func printMatches(w io.Writer, reqs []docx.Request, matches []int) {
	var buf bytes.Buffer
	for i, req := range reqs {
		mark := "✓"
		if matches[i] == 0 {
			mark = "✗"
		}
		fmt.Fprintf(&buf, "%s %q: %d paragraph(s)\n", mark, truncate(req.Find, 60), matches[i])
	}
	w.Write(buf.Bytes())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
