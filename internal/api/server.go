package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/orchestrator"
	"github.com/ppiankov/curator/internal/report"
)

// Server exposes health, run triggering and the last run report
type Server struct {
	runner     *orchestrator.Runner
	reportPath string // fallback for the last report before any run in this process
	ctx        context.Context
	logger     *slog.Logger
}

// NewServer creates a Server. Runs it triggers are bound to ctx, not to the request.
func NewServer(ctx context.Context, runner *orchestrator.Runner, reportPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		runner:     runner,
		reportPath: reportPath,
		ctx:        ctx,
		logger:     logger.With("component", "api"),
	}
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.POST("/runs", s.handleTriggerRun)
	v1.GET("/runs/last", s.handleLastRun)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"running": s.runner.Running(),
	})
}

func (s *Server) handleTriggerRun(c *gin.Context) {
	if _, ok := s.runner.Trigger(s.ctx); !ok {
		c.JSON(http.StatusConflict, gin.H{"error": orchestrator.ErrRunInProgress.Error()})
		return
	}
	s.logger.Info("run triggered", "remote", c.ClientIP())
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (s *Server) handleLastRun(c *gin.Context) {
	if rep := s.lastReport(); rep != nil {
		c.JSON(http.StatusOK, rep)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "no run report available"})
}

func (s *Server) lastReport() *model.RunReport {
	if rep := s.runner.Last(); rep != nil {
		return rep
	}
	if s.reportPath == "" {
		return nil
	}
	rep, err := report.Load(s.reportPath)
	if err != nil {
		return nil
	}
	return rep
}
