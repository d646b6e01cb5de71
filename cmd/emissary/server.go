package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/emissary-ai/emissary/internal/agent"
	apperrors "github.com/emissary-ai/emissary/internal/errors"
	"github.com/emissary-ai/emissary/internal/leads"
	"github.com/emissary-ai/emissary/internal/model"
)

// chatter is the slice of the agent the HTTP layer needs.
type chatter interface {
	Chat(ctx context.Context, message string, history []model.Message) (*agent.Reply, error)
}

// recordLister reads back captured records for the admin endpoints.
type recordLister interface {
	RecentLeads(ctx context.Context, limit int) ([]leads.Lead, error)
	RecentUnknownQuestions(ctx context.Context, limit int) ([]leads.UnknownQuestion, error)
}

type server struct {
	agent   chatter
	records recordLister
	log     *logrus.Logger
}

func newServer(a chatter, records recordLister, log *logrus.Logger) *server {
	return &server{agent: a, records: records, log: log}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/leads", s.handleLeads)
	mux.HandleFunc("/unknown-questions", s.handleUnknownQuestions)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

type chatRequest struct {
	Message string          `json:"message"`
	History []model.Message `json:"history"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	TurnID string `json:"turn_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	reply, err := s.agent.Chat(r.Context(), req.Message, sanitizeHistory(req.History))
	if err != nil {
		s.log.WithError(err).Error("chat turn failed")
		writeJSON(w, statusFor(err), errorResponse{Error: publicError(err)})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply.Text, TurnID: reply.TurnID})
}

func (s *server) handleLeads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	rows, err := s.records.RecentLeads(r.Context(), listLimit(r))
	if err != nil {
		s.log.WithError(err).Error("listing leads failed")
		writeJSON(w, statusFor(err), errorResponse{Error: publicError(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": rows})
}

func (s *server) handleUnknownQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	rows, err := s.records.RecentUnknownQuestions(r.Context(), listLimit(r))
	if err != nil {
		s.log.WithError(err).Error("listing unknown questions failed")
		writeJSON(w, statusFor(err), errorResponse{Error: publicError(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unknown_questions": rows})
}

func listLimit(r *http.Request) int {
	const defaultLimit = 50
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 500 {
		return defaultLimit
	}
	return n
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sanitizeHistory keeps only user and assistant text. Clients replay the
// visible transcript; tool traffic never round-trips through them.
func sanitizeHistory(history []model.Message) []model.Message {
	out := make([]model.Message, 0, len(history))
	for _, m := range history {
		if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
			continue
		}
		out = append(out, model.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func statusFor(err error) int {
	switch apperrors.GetCategory(err) {
	case apperrors.CategoryUser:
		return http.StatusBadRequest
	case apperrors.CategoryTemporary:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicError maps an error to a client-safe message. Internal detail
// stays in the logs.
func publicError(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
