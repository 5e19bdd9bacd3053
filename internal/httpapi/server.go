// Package httpapi exposes the chat and ingestion operations over REST.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/ingest"
	"docchat/internal/service"
)

const defaultSessionID = "default"

// Server routes REST calls to the chat service and the ingestion pipeline.
type Server struct {
	chat   *service.ChatService
	ingest *ingest.Pipeline
	logger *zap.Logger
}

func NewServer(chat *service.ChatService, pipeline *ingest.Pipeline, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{chat: chat, ingest: pipeline, logger: logger}
}

// Router builds the chi router with CORS enabled for browser clients.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/chat", s.handleHistory)
		r.Delete("/chat", s.handleReset)
		r.Put("/models", s.handleEnsureModels)
		r.Post("/documents", s.handleIngest)
	})
	return r
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	UserInput string `json:"userInput"`
}

type chatResponse struct {
	AIResponse string `json:"aiResponse"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	answer, err := s.chat.ProcessTurn(r.Context(), req.SessionID, req.UserInput)
	if err != nil {
		s.logger.Error("chat turn failed", zap.String("session_id", req.SessionID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}
	s.writeJSON(w, http.StatusOK, chatResponse{AIResponse: answer})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"messages":  s.chat.History(sessionID),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	s.chat.Reset(sessionID)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleEnsureModels(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.EnsureModelsReady(r.Context()); err != nil {
		s.logger.Error("ensuring models failed", zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "failed to prepare models")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type ingestRequest struct {
	Text      string `json:"text"`
	Filename  string `json:"filename"`
	Source    string `json:"source"`
	Category  string `json:"category"`
	PageCount int    `json:"pageCount"`
	Author    string `json:"author"`
	Title     string `json:"title"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		s.writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	result, err := s.ingest.IngestDocument(r.Context(), req.Text, domain.DocumentMetadata{
		Filename:  req.Filename,
		Source:    req.Source,
		Category:  req.Category,
		PageCount: req.PageCount,
		Author:    req.Author,
		Title:     req.Title,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDocument) {
			s.writeError(w, http.StatusBadRequest, "document text is empty")
			return
		}
		s.logger.Error("ingestion failed", zap.String("filename", req.Filename), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to ingest document")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("writing response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
