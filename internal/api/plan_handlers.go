package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/buildpilot/internal/config"
	"github.com/entrepeneur4lyf/buildpilot/internal/planner"
	"github.com/entrepeneur4lyf/buildpilot/internal/plans"
	"github.com/gorilla/mux"
)

const errMissingFields = "Both project_name and project_description are required"

// GeneratePlanRequest is the body of POST /api/generate-plan/
type GeneratePlanRequest struct {
	ProjectName        string `json:"project_name"`
	ProjectDescription string `json:"project_description"`
}

// GeneratePlanResponse is returned on success
type GeneratePlanResponse struct {
	Message string `json:"message"`
	Plan    string `json:"plan"`
	File    string `json:"file,omitempty"`
}

// handleGeneratePlan runs the pipeline for one request
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.ProjectName) == "" || strings.TrimSpace(req.ProjectDescription) == "" {
		s.writeError(w, errMissingFields, http.StatusBadRequest)
		return
	}

	if err := s.opts.CheckCredentials(); err != nil {
		var ce *config.ConfigurationError
		if errors.As(err, &ce) {
			s.writeError(w, ce.Error(), http.StatusInternalServerError)
			return
		}
		s.writeError(w, fmt.Sprintf("An error occurred: %v", err), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	if s.opts.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.GenerateTimeout)
		defer cancel()
	}

	result, err := s.opts.Generator.Generate(ctx, req.ProjectName, req.ProjectDescription)
	if err != nil {
		if planner.IsValidation(err) {
			s.writeError(w, errMissingFields, http.StatusBadRequest)
			return
		}
		log.Error("Plan generation failed", "project", req.ProjectName, "error", err)
		s.writeError(w, fmt.Sprintf("An error occurred: %v", err), http.StatusInternalServerError)
		return
	}

	resp := GeneratePlanResponse{
		Message: "success",
		Plan:    result.NormalizedText,
	}

	if s.opts.SavePlans {
		path, err := s.opts.Store.Save(req.ProjectName, result.NormalizedText)
		if err != nil {
			// The plan is still returned
			log.Warn("Failed to save plan", "run_id", result.RunID, "error", err)
		} else {
			resp.File = plans.Filename(req.ProjectName)
			log.Info("Plan saved", "run_id", result.RunID, "path", path)
		}
	}

	s.writeJSON(w, resp)
}

// handleDownloadPlan serves a saved plan as a markdown attachment
func (s *Server) handleDownloadPlan(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	data, err := s.opts.Store.Open(filename)
	switch {
	case errors.Is(err, plans.ErrInvalidFilename):
		s.writeError(w, "Invalid plan filename", http.StatusBadRequest)
		return
	case errors.Is(err, plans.ErrPlanNotFound):
		s.writeError(w, "Plan file not found", http.StatusNotFound)
		return
	case err != nil:
		s.writeError(w, fmt.Sprintf("Error downloading file: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		log.Error("Failed to write plan download", "file", filename, "error", err)
	}
}
