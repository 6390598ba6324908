package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/repository"
	"github.com/alexanderramin/tutor/internal/service"
)

const healthCheckTimeout = 2 * time.Second

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps service errors onto HTTP statuses. notFound is
// the message used for repository.ErrNotFound.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		s.respondError(w, http.StatusBadRequest, "validation_error", ve.Error())
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not_found", notFound)
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return id, nil
}

func int64Query(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return id, nil
}

// Health

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	llmStatus := "unconfigured"
	if s.llm != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		llmStatus = "unavailable"
		if s.llm.Available(ctx) {
			llmStatus = "available"
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"llm":    llmStatus,
	})
}

// Plans

type createPlanRequest struct {
	Name       string        `json:"name"`
	Goal       string        `json:"goal"`
	Level      string        `json:"level"`
	Minutes    int           `json:"minutes"`
	Deadline   string        `json:"deadline"`
	Milestones []string      `json:"milestones"`
	Tasks      []domain.Task `json:"tasks"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.PlanRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	plan, err := s.services.Plans.Generate(r.Context(), req)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			s.respondError(w, http.StatusBadRequest, "validation_error", ve.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "plan generation failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "planner_failed", "Planner failed: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var body createPlanRequest
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stored, err := s.services.Plans.Save(r.Context(), service.SavePlanInput{
		Name: body.Name,
		Request: domain.PlanRequest{
			Goal:          body.Goal,
			Level:         body.Level,
			MinutesPerDay: body.Minutes,
			Deadline:      body.Deadline,
		},
		Plan: domain.Plan{Milestones: body.Milestones, Tasks: body.Tasks},
	})
	if err != nil {
		s.respondServiceError(w, r, err, "Plan not found")
		return
	}
	s.respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.services.Plans.List(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "Plan not found")
		return
	}
	if plans == nil {
		plans = []repository.PlanSummary{}
	}
	s.respondJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	plan, err := s.services.Plans.Get(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "Plan not found")
		return
	}
	s.respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := s.services.Plans.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err, "Plan not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tasks and progress

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	scope := domain.TaskScope(r.URL.Query().Get("scope"))

	tasks, err := s.services.Tasks.Today(r.Context(), id, scope)
	if err != nil {
		s.respondServiceError(w, r, err, "Plan not found")
		return
	}
	if tasks == nil {
		tasks = []domain.StoredTask{}
	}
	s.respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	var in service.CompleteTaskInput
	if err := decodeBody(r, &in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.services.Tasks.Complete(r.Context(), id, in)
	if err != nil {
		s.respondServiceError(w, r, err, "Task or session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	p, err := s.services.Progress.PlanProgress(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "Plan not found")
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

// Study sessions

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	planID, err := int64Query(r, "plan_id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sess, err := s.services.Sessions.Start(r.Context(), planID)
	if err != nil {
		s.respondServiceError(w, r, err, "Plan not found")
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.services.Sessions.End(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err, "Session not active")
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	planID, err := int64Query(r, "plan_id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sess, err := s.services.Sessions.Active(r.Context(), planID)
	if errors.Is(err, repository.ErrNotFound) {
		s.respondJSON(w, http.StatusOK, map[string]any{"id": nil})
		return
	}
	if err != nil {
		s.respondServiceError(w, r, err, "Session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}
