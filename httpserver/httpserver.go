package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	loggerName = "keepalive"

	RootPath   = "/"
	HealthPath = "/health"

	aliveMessage    = "cogsync is alive\n"
	shutdownTimeout = 5 * time.Second
)

// Server answers uptime checks so hosting platforms keep the process running.
type Server struct {
	logger  *zap.Logger
	port    string
	started time.Time
}

func New(logger *zap.Logger, port string) *Server {
	return &Server{
		logger:  logger.Named(loggerName),
		port:    port,
		started: time.Now(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(RootPath, s.alive)
	mux.HandleFunc(HealthPath, s.health)
	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("stopped")
	return nil
}

func (s *Server) alive(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("got request", zap.String("path", r.URL.Path))
	io.WriteString(w, aliveMessage)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}
