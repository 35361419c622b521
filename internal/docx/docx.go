// Package docx applies find/replace edits to the body of a .docx archive
// while keeping the document's structure and formatting.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"

	"github.com/dgallion1/cvforge/internal/markup"
	"github.com/dgallion1/cvforge/internal/wordml"
)

// Request is one literal find/replace pair. Replace may carry emphasis
// markup; FontFamily and FontSize (points) apply to every run it produces.
type Request struct {
	Find       string `json:"find" yaml:"find"`
	Replace    string `json:"replace" yaml:"replace"`
	FontFamily string `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	FontSize   int    `json:"font_size,omitempty" yaml:"font_size,omitempty"`
}

// Validate rejects requests that can never match.
func (r Request) Validate() error {
	if r.Find == "" {
		return errors.New("find text is empty")
	}
	if r.FontSize < 0 || r.FontSize > 400 {
		return fmt.Errorf("font size %d out of range", r.FontSize)
	}
	return nil
}

// Result is the rebuilt archive plus, for each request, the number of
// paragraphs it rewrote.
type Result struct {
	Data    []byte
	Matches []int
}

// Changed reports whether any request matched.
func (r *Result) Changed() bool {
	for _, n := range r.Matches {
		if n > 0 {
			return true
		}
	}
	return false
}

// Replace applies reqs in order and returns the new archive.
func Replace(data []byte, reqs []Request) ([]byte, error) {
	res, err := Apply(data, reqs)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Apply applies reqs in order. Later requests see the text earlier ones
// produced. A request whose text is not found changes nothing. data is
// never modified.
func Apply(data []byte, reqs []Request) (*Result, error) {
	pkg, err := openPackage(data)
	if err != nil {
		return nil, err
	}
	doc, raw := pkg.doc, pkg.raw

	res := &Result{Matches: make([]int, len(reqs))}
	paras := doc.Paragraphs()
	for i, req := range reqs {
		if req.Find == "" {
			continue
		}
		repl := wordml.Synthesize(markup.Parse(req.Replace), wordml.Override{
			FontFamily: req.FontFamily,
			FontSize:   req.FontSize,
		})
		for _, p := range paras {
			if p.Rewrite(req.Find, repl) {
				res.Matches[i]++
			}
		}
	}

	body := raw
	if res.Changed() {
		body, err = doc.Bytes()
		if err != nil {
			return nil, &ContainerError{Op: "serialize", Err: err}
		}
	}

	out, err := repack(pkg.zr, pkg.body.Name, body)
	if err != nil {
		return nil, &ContainerError{Op: "write", Err: err}
	}
	res.Data = out
	return res, nil
}

// repack rebuilds the archive with a new body. Every other entry is copied
// without recompression.
func repack(zr *zip.Reader, bodyName string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		if f.Name != bodyName {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(body); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if zr.Comment != "" {
		if err := zw.SetComment(zr.Comment); err != nil {
			return nil, fmt.Errorf("set comment: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// BodyText returns the text of every paragraph in the main document part,
// in document order.
func BodyText(data []byte) ([]string, error) {
	pkg, err := openPackage(data)
	if err != nil {
		return nil, err
	}

	paras := pkg.doc.Paragraphs()
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		out = append(out, p.Text())
	}
	return out, nil
}

type openedPackage struct {
	zr   *zip.Reader
	body *zip.File
	raw  []byte
	doc  *wordml.Document
}

// openPackage opens the archive and decodes its main document part.
func openPackage(data []byte) (*openedPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ContainerError{Op: "open", Err: err}
	}
	body, err := locateBody(zr)
	if err != nil {
		return nil, &ContainerError{Op: "locate", Err: err}
	}
	raw, err := readPart(body)
	if err != nil {
		return nil, &ContainerError{Op: "read", Err: err}
	}
	doc, err := wordml.Decode(raw)
	if err != nil {
		return nil, &ContainerError{Op: "parse", Err: err}
	}
	return &openedPackage{zr: zr, body: body, raw: raw, doc: doc}, nil
}
