package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/cvforge/internal/docx"
	"github.com/dgallion1/cvforge/internal/parser"
)

// handleReplace applies literal find/replace requests to an uploaded .docx.
func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	filename, data, err := readUpload(r, "file", s.cfg.MaxUploadBytes)
	if err != nil {
		s.uploadError(w, "file", err)
		return
	}
	if !parser.IsDOCX(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	var reqs []docx.Request
	if err := json.Unmarshal([]byte(r.FormValue("requests")), &reqs); err != nil {
		jsonError(w, "requests must be a JSON array: "+err.Error(), http.StatusBadRequest)
		return
	}
	for i := range reqs {
		if err := reqs[i].Validate(); err != nil {
			jsonError(w, fmt.Sprintf("request %d: %s", i, err), http.StatusBadRequest)
			return
		}
		if reqs[i].FontFamily == "" && reqs[i].FontSize == 0 {
			reqs[i].FontFamily = s.cfg.DefaultFontFamily
			reqs[i].FontSize = s.cfg.DefaultFontSize
		}
	}

	res, err := docx.Apply(data, reqs)
	if err != nil {
		s.containerError(w, err)
		return
	}
	s.log.Info("replaced", "file", filename, "requests", len(reqs), "changed", res.Changed())
	writeDocx(w, filename, res.Data, res.Matches)
}

// handleExtract returns the text of any supported upload, plain and as HTML.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	filename, data, err := readUpload(r, "file", s.cfg.MaxUploadBytes)
	if err != nil {
		s.uploadError(w, "file", err)
		return
	}
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	opts := parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext}
	tree, err := parser.Parse(bytes.NewReader(data), filename, opts)
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	html, err := parser.RenderHTML(tree)
	if err != nil {
		jsonError(w, "render: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title": tree.Title,
		"html":  html,
		"text":  parser.PlainText(tree),
	})
}

// containerError reports an unreadable .docx as 422 and anything else as 500.
func (s *Server) containerError(w http.ResponseWriter, err error) {
	var ce *docx.ContainerError
	if errors.As(err, &ce) {
		jsonError(w, ce.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.log.Error("document rewrite failed", "error", err)
	jsonError(w, err.Error(), http.StatusInternalServerError)
}
