package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nativeiq/market-radar/internal/assistant"
	"github.com/nativeiq/market-radar/internal/models"
	"github.com/nativeiq/market-radar/internal/ratelimit"
)

const maxChatBody = 64 << 10

type suggester interface {
	Suggest(ctx context.Context, industry, location string) *models.SuggestionsResponse
}

type chatter interface {
	Chat(ctx context.Context, req assistant.Request) (*assistant.Reply, error)
}

type healthChecker interface {
	Health(ctx context.Context) error
}

type server struct {
	log         *slog.Logger
	suggestions suggester
	chat        chatter
	health      healthChecker
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) routes(limiter *ratelimit.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// suggestions are never rate limited
		r.Get("/market-suggestions", s.handleSuggestions)

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Get("/chat", s.handleChatStatus)
			r.Post("/chat", s.handleChat)
		})
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health.Health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSuggestions always answers 200; provider trouble only thins the list.
func (s *server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := s.suggestions.Suggest(r.Context(), q.Get("industry"), q.Get("location"))
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleChatStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Chat API is running"})
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req assistant.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: assistant.ErrEmptyMessage.Error()})
		return
	}

	if s.chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "OpenAI API key not configured"})
		return
	}

	reply, err := s.chat.Chat(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		var upstream *assistant.UpstreamError
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			status = http.StatusBadRequest
		case errors.As(err, &upstream) && upstream.Status >= 400:
			status = upstream.Status
		case errors.As(err, &upstream):
			status = http.StatusBadGateway
		}
		s.log.Warn("chat request failed",
			slog.Any("err", err),
			slog.Int("status", status),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		msg := "failed to process AI request"
		if status == http.StatusBadRequest {
			msg = err.Error()
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
