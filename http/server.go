// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"diabetescheck/monitoring"
	"diabetescheck/predict"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
	log    *zap.Logger
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		RateLimit:      100,
		RateWindow:     time.Minute,
	}
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, service *predict.Service, metrics *monitoring.Metrics, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	handler, err := NewHandler(config, service, metrics, log)
	if err != nil {
		return nil, err
	}

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           handler,
			ReadHeaderTimeout: config.Timeout,
			ReadTimeout:       config.Timeout,
			WriteTimeout:      config.Timeout,
			IdleTimeout:       120 * time.Second,
			ErrorLog:          zap.NewStdLog(log),
		},
		config: config,
		log:    log,
	}, nil
}

// NewHandler builds the routed, middleware-wrapped handler.
func NewHandler(config ServerConfig, service *predict.Service, metrics *monitoring.Metrics, log *zap.Logger) (http.Handler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	handlers, err := NewHandlers(service, log)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	RegisterHandlers(mux, handlers)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	middlewares := []Middleware{
		RecoveryMiddleware(log),
		LoggerMiddleware(log),
		SecurityHeadersMiddleware,
		RequestSizeMiddleware(maxBodyBytes),
		CORSMiddleware(config.AllowedOrigins),
		RateLimitMiddleware(config.RateLimit, config.RateWindow),
	}
	if metrics != nil {
		// innermost, so it sees the pattern the mux matched
		middlewares = append(middlewares, MetricsMiddleware(metrics))
	}
	return Chain(middlewares...)(mux), nil
}

// Start 启动服务器
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info("starting HTTP server", zap.String("addr", l.Addr().String()))

	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
