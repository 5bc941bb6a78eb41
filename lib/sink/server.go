package sink

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"percipio.com/xferhist/lib/logger"
)

const shutdownTimeout = 5 * time.Second

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Swallowed int64     `json:"swallowed"`
	Bytes     int64     `json:"bytes"`
}

// Server accepts payloads and throws them away, counting what it received.
type Server struct {
	service   string
	version   string
	swallowed atomic.Int64
	bytes     atomic.Int64
}

func New(service, version string) *Server {
	return &Server{service: service, version: version}
}

func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.POST("/swallow", s.Swallow)
	r.GET("/ping", s.Ping)
	r.GET("/health", s.Health)
}

func (s *Server) Swallow(c *gin.Context) {
	n, err := io.Copy(io.Discard, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.swallowed.Add(1)
	s.bytes.Add(n)
	c.Status(http.StatusNoContent)
}

func (s *Server) Ping(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   s.service,
		Version:   s.version,
		Swallowed: s.swallowed.Load(),
		Bytes:     s.bytes.Load(),
	})
}

// Handler builds a router with the sink routes and panic recovery.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	s.RegisterRoutes(router)
	return router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Sink listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down sink (swallowed %d payloads)", s.swallowed.Load())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
