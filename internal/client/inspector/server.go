package inspector

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nexus/internal/client/logger"
	"nexus/internal/sentry"
)

// Server exposes recorded exchanges and client metrics over HTTP.
type Server struct {
	store   Store
	addr    string
	httpSrv *http.Server
}

// NewServer creates a new inspector server listening on addr.
func NewServer(addr string, store Store) *Server {
	if store == nil {
		store = NewInMemoryStore(100)
	}
	return &Server{store: store, addr: addr}
}

// Handler returns the inspector routes.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	if sentry.Enabled() {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	api := r.Group("/api")
	api.GET("/exchanges", s.listExchanges)
	api.GET("/exchanges/:id", s.getExchange)
	api.POST("/clear", s.clearExchanges)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("Inspector listening on http://%s", s.addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartAsync starts the inspector server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			logger.Warn("Inspector stopped: %v", err)
		}
	}()
}

func (s *Server) listExchanges(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) getExchange(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid ID"})
		return
	}
	exchange, ok := s.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}
	c.JSON(http.StatusOK, exchange)
}

func (s *Server) clearExchanges(c *gin.Context) {
	s.store.Clear()
	c.Status(http.StatusNoContent)
}
