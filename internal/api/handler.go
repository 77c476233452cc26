package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
	"github.com/moodcheck/survey-bot/internal/service"
)

// TriggerSecretHeader carries the shared secret of POST /trigger/{kind}
const TriggerSecretHeader = "X-Trigger-Secret"

// Broadcaster fires a survey kind to the roster
type Broadcaster interface {
	Fire(ctx context.Context, kind domain.SurveyKind) (*service.BroadcastReport, error)
}

// StatsReader reads per-chat statistics
type StatsReader interface {
	Stats(ctx context.Context, chatID string) (*domain.Stats, error)
}

// Server is the HTTP front end: manual broadcast triggers, the Telegram
// webhook, health and metrics
type Server struct {
	broadcaster   Broadcaster
	stats         StatsReader
	triggerSecret string
	webhook       http.Handler

	server *http.Server
	addr   string
	logger zerolog.Logger
}

// NewServer creates a new API server. An empty triggerSecret disables the check.
func NewServer(addr string, broadcaster Broadcaster, stats StatsReader, triggerSecret string) *Server {
	return &Server{
		broadcaster:   broadcaster,
		stats:         stats,
		triggerSecret: triggerSecret,
		addr:          addr,
		logger:        logger.Component("api"),
	}
}

// SetWebhook mounts the Telegram webhook handler
func (s *Server) SetWebhook(h http.Handler) {
	s.webhook = h
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware, RequestLogMiddleware)

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/trigger/{kind}", s.handleTrigger).Methods(http.MethodPost)
	if s.stats != nil {
		router.HandleFunc("/api/stats/{chatId}", s.handleStats).Methods(http.MethodGet)
	}
	if s.webhook != nil {
		router.Handle("/telegram/webhook", s.webhook).Methods(http.MethodPost)
	}
	return router
}

// Start starts the HTTP server; it blocks until Stop
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info().Str("addr", s.addr).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTrigger runs a broadcast now. The secret is checked before the kind;
// neither rejection touches the roster.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusForbidden, "invalid trigger secret")
		return
	}

	kind, err := domain.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	// The broadcast outlives a client that hangs up
	report, err := s.broadcaster.Fire(context.WithoutCancel(r.Context()), kind)
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(kind)).Msg("triggered broadcast failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.triggerSecret == "" {
		return true
	}
	got := r.Header.Get(TriggerSecretHeader)
	if got == "" {
		got = r.URL.Query().Get("secret")
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.triggerSecret)) == 1
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusForbidden, "invalid trigger secret")
		return
	}
	stats, err := s.stats.Stats(r.Context(), mux.Vars(r)["chatId"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Code: status, Message: message})
}
