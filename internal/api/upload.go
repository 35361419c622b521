package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var errTooLarge = errors.New("file too large")

// readUpload reads a multipart file field, capped at limit bytes.
func readUpload(r *http.Request, field string, limit int64) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	defer file.Close()
	return readPart(file, header, limit)
}

func readPart(file multipart.File, header *multipart.FileHeader, limit int64) (string, []byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	if int64(len(data)) > limit {
		return "", nil, errTooLarge
	}
	return sanitizeFilename(header.Filename), data, nil
}

// parseForm limits the body and parses a multipart form.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	// Extra 1MB for form overhead and a second upload.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// uploadError maps a readUpload failure to a response.
func (s *Server) uploadError(w http.ResponseWriter, field string, err error) {
	if errors.Is(err, errTooLarge) {
		jsonError(w, fmt.Sprintf("%s exceeds max size (%d bytes)", field, s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, field+" is required: "+err.Error(), http.StatusBadRequest)
}

func writeDocx(w http.ResponseWriter, filename string, data []byte, matches []int) {
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Cvforge-Matches", matchesHeader(matches))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func matchesHeader(matches []int) string {
	parts := make([]string, len(matches))
	for i, n := range matches {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// tailoredName turns "cv.docx" into "cv-tailored.docx".
func tailoredName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + "-tailored.docx"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
