package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/cvforge/internal/critique"
	"github.com/dgallion1/cvforge/internal/parser"
	"github.com/dgallion1/cvforge/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleTailor queues a CV for critique against a job post.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	cvName, cvData, err := readUpload(r, "cv", s.cfg.MaxUploadBytes)
	if err != nil {
		s.uploadError(w, "cv", err)
		return
	}
	if !parser.IsDOCX(cvName) {
		jsonError(w, "cv must be a .docx file", http.StatusBadRequest)
		return
	}

	provider := s.cfg.DefaultProvider
	if v := r.FormValue("provider"); v != "" {
		if provider, err = critique.ParseProvider(v); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	model := r.FormValue("model")
	if model == "" {
		model = s.cfg.Model(provider)
	}
	apiKey := r.FormValue("api_key")
	if apiKey == "" && s.cfg.APIKey(provider) == "" {
		jsonError(w, fmt.Sprintf("no api key configured for %s", provider), http.StatusBadRequest)
		return
	}

	font, err := s.formFont(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	autoApply := false
	if v := r.FormValue("auto_apply"); v != "" {
		if autoApply, err = strconv.ParseBool(v); err != nil {
			jsonError(w, "auto_apply must be a boolean", http.StatusBadRequest)
			return
		}
	}

	job := pipeline.NewJob(cvName, cvData, strings.TrimSpace(r.FormValue("job_post")))
	if _, ok := r.MultipartForm.File["job_file"]; ok {
		jobName, jobData, err := readUpload(r, "job_file", s.cfg.MaxUploadBytes)
		if err != nil {
			s.uploadError(w, "job_file", err)
			return
		}
		if !parser.IsSupportedExtension(jobName) {
			jsonError(w, fmt.Sprintf("unsupported job file type: %s", filepath.Ext(jobName)), http.StatusBadRequest)
			return
		}
		job.SetJobFile(jobName, jobData)
	} else if strings.TrimSpace(r.FormValue("job_post")) == "" {
		jsonError(w, "job_post or job_file is required", http.StatusBadRequest)
		return
	}

	job.Provider = provider
	job.Model = model
	job.AutoApply = autoApply
	job.Font = font
	job.SetAPIKey(apiKey)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/tailor/%s/status", job.ID),
	})
}

func (s *Server) formFont(r *http.Request) (pipeline.Font, error) {
	font := pipeline.Font{Family: r.FormValue("font_family")}
	if v := r.FormValue("font_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 400 {
			return font, fmt.Errorf("font_size must be an integer between 0 and 400")
		}
		font.Size = n
	}
	if font == (pipeline.Font{}) {
		font = pipeline.Font{Family: s.cfg.DefaultFontFamily, Size: s.cfg.DefaultFontSize}
	}
	return font, nil
}

func (s *Server) job(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

func (s *Server) handleTailorStatus(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleTailorAnalysis(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	analysis := job.Analysis()
	if analysis == nil {
		snap := job.Snapshot()
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "analysis not ready",
			"status": snap.Status,
			"errors": snap.Errors,
		})
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleTailorDocument(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	data := job.Document()
	if data == nil {
		jsonError(w, "no document; submit with auto_apply or POST to apply", http.StatusConflict)
		return
	}
	snap := job.Snapshot()
	writeDocx(w, tailoredName(snap.CVFilename), data, snap.Matches)
}

type applyRequest struct {
	IDs        []int  `json:"ids"`
	FontFamily string `json:"font_family"`
	FontSize   int    `json:"font_size"`
}

// handleTailorApply rewrites the job's CV with a chosen set of improvements.
func (s *Server) handleTailorApply(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	var req applyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.FontSize < 0 || req.FontSize > 400 {
		jsonError(w, "font_size must be between 0 and 400", http.StatusBadRequest)
		return
	}

	res, err := s.orchestrator.ApplySelected(jobID, req.IDs, pipeline.Font{Family: req.FontFamily, Size: req.FontSize})
	switch {
	case errors.Is(err, pipeline.ErrJobNotFound):
		jsonError(w, "job not found", http.StatusNotFound)
		return
	case errors.Is(err, pipeline.ErrNoAnalysis):
		jsonError(w, "analysis not ready", http.StatusConflict)
		return
	case err != nil:
		s.containerError(w, err)
		return
	}

	job := s.orchestrator.GetJob(jobID)
	name := "cv-tailored.docx"
	if job != nil {
		name = tailoredName(job.Snapshot().CVFilename)
	}
	writeDocx(w, name, res.Data, res.Matches)
}
