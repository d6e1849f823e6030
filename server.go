package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"i4.energy/across/loraterm/modem"
)

// Radio is what the HTTP API needs from the engine.
type Radio interface {
	Send(ctx context.Context, addr uint16, message string) error
	Status() modem.Snapshot
}

// Server handles incoming HTTP requests for interacting with the
// running engine
type Server struct {
	Logger   *slog.Logger
	Radio    Radio
	Gatherer prometheus.Gatherer
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("GET /status", s.handleStatus)
	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

// handleSend queues a radio message. The reply only says it was queued.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	type SendRequest struct {
		To      *uint16 `json:"to"`
		Message string  `json:"message"`
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.To == nil || req.Message == "" {
		s.sendError(w, "both 'to' and 'message' fields are required", http.StatusBadRequest)
		return
	}

	if err := s.Radio.Send(r.Context(), *req.To, req.Message); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, modem.ErrPayloadTooLong), errors.Is(err, modem.ErrEmptyBuffer), errors.Is(err, modem.ErrLineBreak):
			status = http.StatusBadRequest
		case errors.Is(err, modem.ErrAlreadyClosed):
			status = http.StatusServiceUnavailable
		}
		s.Logger.Error("Failed to queue message", "error", err, "to", *req.To)
		s.sendError(w, err.Error(), status)
		return
	}

	s.Logger.Info("Message queued", "to", *req.To, "message_length", len(req.Message))
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Radio.Status()); err != nil {
		s.Logger.Error("Failed to encode status", "error", err)
	}
}
