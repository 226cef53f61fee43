package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coglab/internal"
	"coglab/internal/session"
	"coglab/ports"
)

// Server is the participant-facing HTTP surface. It is a thin shim over
// the run manager: every invariant lives in the engine, the handlers
// only translate JSON to domain calls.
type Server struct {
	router  *gin.Engine
	runs    *session.RunManager
	reader  ports.OutcomeReader
	logger  *internal.Logger
	httpSrv *http.Server
}

// NewServer creates the API server. reader may be nil when no
// persistence backend is configured; the stored-outcomes endpoint then
// reports 404.
func NewServer(runs *session.RunManager, reader ports.OutcomeReader, logger *internal.Logger, ginMode string) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	s := &Server{
		router: gin.Default(),
		runs:   runs,
		reader: reader,
		logger: logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/runs", s.handleCreateRun)
		api.GET("/runs/:id", s.handleGetRun)
		api.POST("/runs/:id/responses", s.handleSubmitResponse)
		api.POST("/runs/:id/abort", s.handleAbortRun)
		api.GET("/runs/:id/analysis", s.handleAnalyzeRun)
		api.GET("/runs/:id/outcomes", s.handleListOutcomes)
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	s.httpSrv = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.logger.Info("API server listening on :%s", port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}
