// Package server exposes the relay over HTTP so a host can centralize its
// outbound notifications.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	sendnotification "github.com/donnex/sendnotification"
	"github.com/donnex/sendnotification/internal/config"
	"github.com/donnex/sendnotification/internal/logging"
	"github.com/donnex/sendnotification/internal/metrics"
	"github.com/donnex/sendnotification/internal/notify"
)

// Sender is the notification entry point the server drives.
type Sender interface {
	Send(ctx context.Context, message string, window time.Duration) (sendnotification.Status, error)
}

// Server serves the notification API.
type Server struct {
	sender Sender
	listen string
	srv    *http.Server
}

// New returns a Server listening on listen once ListenAndServe is called.
func New(listen string, sender Sender) *Server {
	return &Server{sender: sender, listen: listen}
}

// Router builds the chi router; split out so tests can drive it directly.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(bodySizeLimit(64 << 10))
	r.Post("/v1/notifications", s.handleNotify)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", metrics.PromHandler().ServeHTTP)
	r.Get("/metrics.json", metrics.SnapshotHandler())
	return r
}

// ListenAndServe runs the server until ctx is cancelled or SIGINT/SIGTERM
// arrives, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Get().Info().Str("listen", s.listen).Msg("notification server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logging.Get().Info().Msg("shutting down notification server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type notifyRequest struct {
	Message         string `json:"message"`
	IntervalSeconds int    `json:"interval_seconds"`
}

type notifyResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, notifyResponse{Error: "invalid request body"})
		return
	}

	window := time.Duration(req.IntervalSeconds) * time.Second
	status, err := s.sender.Send(r.Context(), req.Message, window)
	if err != nil {
		writeJSON(w, statusForError(err), notifyResponse{Error: err.Error()})
		return
	}

	resp := notifyResponse{Status: "sent"}
	if status == sendnotification.StatusSuppressed {
		resp.Status = "suppressed"
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusForError maps caller mistakes to 400 and delivery exhaustion to 502.
func statusForError(err error) int {
	var verr *config.ValidationError
	if errors.Is(err, sendnotification.ErrEmptyMessage) || errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var serr *notify.SendError
	if errors.As(err, &serr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func bodySizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
