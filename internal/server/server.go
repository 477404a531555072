// Package server exposes the HTTP API: visitor concierge chat, admin
// assistant chat and cloning-job submission and inspection.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/imovia/imovia-go/internal/domain"
	"go.uber.org/zap"
)

const requestTimeout = 90 * time.Second

// ChatHandler answers one conversation message.
type ChatHandler interface {
	HandleMessage(ctx context.Context, pc domain.ProviderContext, conversationID, message string) (string, error)
}

// JobStore creates and reads cloning jobs.
type JobStore interface {
	Create(ctx context.Context, job *domain.CloningJob) error
	Get(ctx context.Context, id string) (*domain.CloningJob, error)
}

type Server struct {
	chat   ChatHandler
	jobs   JobStore
	logger *zap.Logger
	router chi.Router
}

func New(chat ChatHandler, jobs JobStore, logger *zap.Logger) *Server {
	s := &Server{
		chat:   chat,
		jobs:   jobs,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.RequestSize(1 << 20))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/concierge/chat", s.handleChat(domain.ContextConcierge))
		r.Post("/admin/assistant", s.handleChat(domain.ContextAdminAssistant))
		r.Post("/cloning-jobs", s.handleCreateJob)
		r.Get("/cloning-jobs/{id}", s.handleGetJob)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// handleChat serves both chat surfaces. Internal failures never reach the
// visitor; the service substitutes the fallback reply.
func (s *Server) handleChat(pc domain.ProviderContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		conversationID := strings.TrimSpace(req.ConversationID)
		if conversationID == "" {
			conversationID = uuid.NewString()
		}

		reply, err := s.chat.HandleMessage(r.Context(), pc, conversationID, req.Message)
		if err != nil {
			s.logger.Error("Chat handler failed",
				zap.String("context", string(pc)),
				zap.String("conversation_id", conversationID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "failed to process message")
			return
		}

		writeJSON(w, http.StatusOK, chatResponse{
			ConversationID: conversationID,
			Reply:          reply,
		})
	}
}

type createJobRequest struct {
	SourceURL         string `json:"source_url"`
	CustomInstruction string `json:"custom_instruction"`
	AgentID           string `json:"agent_id"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sourceURL := strings.TrimSpace(req.SourceURL)
	if !isValidSourceURL(sourceURL) {
		writeError(w, http.StatusBadRequest, "source_url must be an absolute http(s) URL")
		return
	}

	now := time.Now().UTC()
	job := &domain.CloningJob{
		ID:                uuid.NewString(),
		SourceURL:         sourceURL,
		CustomInstruction: strings.TrimSpace(req.CustomInstruction),
		AgentID:           strings.TrimSpace(req.AgentID),
		Status:            domain.JobPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.jobs.Create(r.Context(), job); err != nil {
		s.logger.Error("Failed to create cloning job",
			zap.String("source_url", sourceURL),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	s.logger.Info("Cloning job accepted",
		zap.String("job_id", job.ID),
		zap.String("source_url", sourceURL),
	)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     job.ID,
		"status": string(domain.JobPending),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to load cloning job",
			zap.String("job_id", id),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func isValidSourceURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
