package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/cvforge/internal/doctree"
	"github.com/yuin/goldmark"
)

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// Options tunes parser construction.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	return ForFileWithOptions(filename, Options{})
}

// ForFileWithOptions is ForFile with explicit options.
func ForFileWithOptions(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsDOCX reports whether filename names a Word document.
func IsDOCX(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".docx")
}

// Parse picks a parser for filename and runs it.
func Parse(r io.Reader, filename string, opts Options) (*doctree.DocTree, error) {
	p, err := ForFileWithOptions(filename, opts)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return tree, nil
}

// RenderHTML renders the tree as HTML through its markdown form.
func RenderHTML(tree *doctree.DocTree) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(doctree.Markdown(tree)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// PlainText flattens the tree into text.
func PlainText(tree *doctree.DocTree) string {
	return doctree.PlainText(tree)
}

// baseName strips directories so titles never leak client paths.
func baseName(filename string) string {
	return filepath.Base(filepath.ToSlash(filename))
}
