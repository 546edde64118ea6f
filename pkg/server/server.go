/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package server exposes the log config toolkit and the local config store over HTTP.
package server

import (
	"context"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"net"
	"net/http"
	"time"
)

type (
	// Repository is the store contract required by the HTTP API.
	Repository interface {
		Create(ctx context.Context, cfg *logconfig.LogConfig) (*logconfig.LogConfig, error)
		Update(ctx context.Context, cfg *logconfig.LogConfig) (*logconfig.LogConfig, error)
		Get(ctx context.Context, id string) (*logconfig.LogConfig, error)
		GetVersion(ctx context.Context, id string, version int) (*logconfig.LogConfig, error)
		ListVersions(ctx context.Context, id string) ([]*logconfig.LogConfig, error)
		List(ctx context.Context) ([]*logconfig.LogConfig, error)
		Delete(ctx context.Context, id string) error
	}

	Server struct {
		addr      string
		repo      Repository
		validator *timeformat.Validator
		metrics   *metrics
		server    *http.Server
		ctx       context.Context
		cancel    context.CancelFunc
		startTime time.Time
	}
)

func NewServer(addr string, repo Repository, validator *timeformat.Validator) *Server {
	if addr == "" {
		addr = "0.0.0.0:8080"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		repo:      repo,
		validator: validator,
		metrics:   newMetrics(),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler builds the routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.metrics.middleware())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/version", s.handleVersion)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	r.POST("/api/logconfig/parse", s.handleParse)
	r.POST("/api/logconfig/schema", s.handleSchema)
	r.POST("/api/timeformat/check", s.handleCheckTimeFormat)

	g := r.Group("/api/logconfigs")
	g.GET("", s.handleList)
	g.POST("", s.handleCreate)
	g.GET("/:id", s.handleGet)
	g.PUT("/:id", s.handleUpdate)
	g.DELETE("/:id", s.handleDelete)
	g.GET("/:id/versions", s.handleListVersions)
	g.GET("/:id/versions/:version", s.handleGetVersion)
	return r
}

// Start listens on addr and serves in the background.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.startTime = time.Now()
	logger.Infoz("[server] listen", zap.String("addr", listener.Addr().String()))
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Errorz("[server] serve error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func lang(c *gin.Context) language.Tag {
	return i18n.Parse(c.GetHeader("Accept-Language"))
}

// writeError maps err to a status code. Validation errors carry their translated message.
func writeError(c *gin.Context, err error) {
	var ie *i18n.Error
	switch {
	case errors.As(err, &ie):
		c.JSON(http.StatusBadRequest, gin.H{"error": ie.Key, "message": i18n.T(lang(c), ie.Key)})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.Is(err, store.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "version_conflict", "message": err.Error()})
	default:
		logger.Errorw("[server] request error", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": i18n.GeneralError, "message": i18n.T(lang(c), i18n.GeneralError)})
	}
}

func badRequest(c *gin.Context, key i18n.Key) {
	c.JSON(http.StatusBadRequest, gin.H{"error": key, "message": i18n.T(lang(c), key)})
}
