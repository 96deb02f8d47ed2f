package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/db"
	"github.com/thatsimonsguy/fireplace-controller/internal/scheduler"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 500
)

// StatusSource is satisfied by *scheduler.Scheduler.
type StatusSource interface {
	Status() scheduler.Status
}

type Server struct {
	status StatusSource
	db     *sql.DB
}

type StatusResponse struct {
	Sleeping              bool      `json:"sleeping"`
	FireOn                bool      `json:"fire_on"`
	AudioPlaying          bool      `json:"audio_playing"`
	Editing               bool      `json:"editing"`
	SleepRemainingSeconds int64     `json:"sleep_remaining_seconds"`
	LitSegments           int       `json:"lit_segments"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type EventResponse struct {
	Kind         string    `json:"kind"`
	SleepSeconds int64     `json:"sleep_seconds"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the status API. database may be nil, in which case
// /api/events reports 503.
func NewServer(status StatusSource, database *sql.DB) *Server {
	return &Server{status: status, db: database}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "Not found")
	})

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/events", s.handleEvents)
	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("address", addr).Msg("Starting status API server")

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {

	st := s.status.Status()
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Sleeping:              st.Sleeping,
		FireOn:                st.FireOn,
		AudioPlaying:          st.AudioPlaying,
		Editing:               st.Editing,
		SleepRemainingSeconds: int64(st.SleepRemaining / time.Second),
		LitSegments:           st.LitSegments,
		UpdatedAt:             st.UpdatedAt,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Event journal disabled")
		return
	}

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxEventLimit {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid limit. Must be between 1 and %d", maxEventLimit))
			return
		}
		limit = n
	}

	events, err := db.RecentEvents(s.db, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query events")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := make([]EventResponse, 0, len(events))
	for _, e := range events {
		response = append(response, EventResponse{
			Kind:         string(e.Kind),
			SleepSeconds: int64(e.SleepDuration / time.Second),
			OccurredAt:   e.OccurredAt,
		})
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
