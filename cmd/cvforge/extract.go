package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/cvforge/internal/parser"
	"github.com/spf13/cobra"
)

var (
	extractIn       string
	extractHTML     bool
	extractPdftotxt bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the text of a CV or job post",
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractIn == "" {
			return fmt.Errorf("--in is required")
		}
		out, err := extractFile(extractIn, extractHTML, parser.Options{PDFFallbackPdftotext: extractPdftotxt})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractIn, "in", "", "file to read (.docx, .pdf, .md, .html, .txt)")
	extractCmd.Flags().BoolVar(&extractHTML, "html", false, "print HTML instead of plain text")
	extractCmd.Flags().BoolVar(&extractPdftotxt, "pdftotext", true, "fall back to pdftotext for PDFs")
}

// extractFile parses path and renders it as plain text or HTML.
func extractFile(path string, html bool, opts parser.Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	tree, err := parser.Parse(f, path, opts)
	if err != nil {
		return "", err
	}
	log.Debug("parsed", "file", path, "title", tree.Title, "sections", len(tree.Children))
	if html {
		return parser.RenderHTML(tree)
	}
	return parser.PlainText(tree), nil
}
