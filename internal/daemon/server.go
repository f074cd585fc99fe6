package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"catchup/internal/config"
	"catchup/internal/handler"
	"catchup/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server manages the HTTP server exposing the unread-summary endpoint.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// NewServer builds the gin router and HTTP server. The /unread route
// adapts each request into the gateway-style event the handler consumes.
func NewServer(cfg config.Config, h *handler.Handler, m *metrics.Metrics, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/unread", func(c *gin.Context) {
		resp := h.Handle(c.Request.Context(), eventFromRequest(c.Request))
		c.Data(resp.StatusCode, "application/json", []byte(resp.Body))
	})
	router.GET("/livez", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return &Server{
		http:   &http.Server{Addr: cfg.HTTPAddr, Handler: router},
		logger: logger,
	}
}

// eventFromRequest flattens query parameters and headers into the
// invocation event; repeated keys keep their first value.
func eventFromRequest(r *http.Request) handler.Event {
	evt := handler.Event{
		QueryStringParameters: map[string]string{},
		Headers:               map[string]string{},
	}
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			evt.QueryStringParameters[key] = vals[0]
		}
	}
	for key, vals := range r.Header {
		if len(vals) > 0 {
			evt.Headers[key] = vals[0]
		}
	}
	return evt
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown failed", zap.Error(err))
	}
}
