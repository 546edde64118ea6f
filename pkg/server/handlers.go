/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package server

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/appconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/filter"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/parser"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/schema"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/status"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"net/http"
	"time"
)

type (
	parseRequest struct {
		LogType       logconfig.LogType      `json:"logType" binding:"required"`
		UserLogFormat string                 `json:"userLogFormat"`
		Regex         string                 `json:"regex"`
		Sample        string                 `json:"sample"`
		FilterConfig  logconfig.FilterConfig `json:"filterConfigMap"`
	}

	schemaRequest struct {
		Sample string `json:"sample"`
	}

	timeFormatRequest struct {
		Value  string `json:"value"`
		Format string `json:"format"`
	}
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, appconfig.VersionInfo())
}

// handleParse evaluates a sample line. A sample that does not match is a normal outcome and returns 200.
func (s *Server) handleParse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, i18n.LogTypeRequired)
		return
	}
	if !req.LogType.Valid() || req.LogType == logconfig.LogTypeJSON {
		badRequest(c, i18n.LogTypeRequired)
		return
	}
	if req.Sample == "" {
		badRequest(c, i18n.SampleRequired)
		return
	}
	cfg := &logconfig.LogConfig{
		LogType:       req.LogType,
		UserLogFormat: req.UserLogFormat,
		Regex:         req.Regex,
		FilterConfig:  req.FilterConfig,
	}
	if cfg.LogType.UsesLogFormat() && !cfg.UsesGrok() && cfg.Regex == "" {
		reg, err := parser.GenerateRegex(cfg)
		if err != nil {
			badRequest(c, i18n.LogFormatInvalid)
			return
		}
		cfg.Regex = reg
	}
	ev, err := parser.ForConfig(cfg)
	if err != nil {
		badRequest(c, i18n.LogFormatInvalid)
		return
	}
	res := ev.Evaluate(req.Sample)
	result := "matched"
	if !res.OK() {
		result = "not_matched"
	}
	s.metrics.parses.WithLabelValues(string(req.LogType), result).Inc()

	resp := gin.H{
		"ok":      res.OK(),
		"regex":   cfg.Regex,
		"fields":  res.Fields,
		"message": i18n.T(lang(c), res.MessageKey()),
	}
	if !res.OK() {
		resp["error"] = res.MessageKey()
	} else if cfg.FilterConfig.Enabled {
		m, err := filter.Compile(cfg.FilterConfig)
		if err != nil {
			badRequest(c, i18n.FilterValueInvalid)
			return
		}
		record := make(map[string]interface{}, len(res.Fields))
		for k, v := range res.Map() {
			record[k] = v
		}
		resp["kept"] = m.Match(record)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSchema(c *gin.Context) {
	var req schemaRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Sample == "" {
		badRequest(c, i18n.SampleRequired)
		return
	}
	sch, err := schema.Infer(req.Sample)
	if err != nil {
		s.metrics.parses.WithLabelValues(string(logconfig.LogTypeJSON), "not_matched").Inc()
		badRequest(c, i18n.JSONInvalid)
		return
	}
	s.metrics.parses.WithLabelValues(string(logconfig.LogTypeJSON), "matched").Inc()
	c.JSON(http.StatusOK, gin.H{
		"schema": sch,
		"fields": sch.FieldPaths(),
	})
}

// handleCheckTimeFormat validates value against format. When the format does not match,
// a format detected from the value is suggested.
func (s *Server) handleCheckTimeFormat(c *gin.Context) {
	var req timeFormatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == "" {
		badRequest(c, i18n.TimeFormatRequired)
		return
	}
	st := timeformat.Invalid
	if req.Format != "" {
		st = s.validator.Validate(c.Request.Context(), req.Value, req.Format)
	}
	s.metrics.timeFormatCheck.WithLabelValues(st.String()).Inc()

	resp := gin.H{
		"status":  st,
		"display": status.Lookup(st.String()),
	}
	if st == timeformat.Valid {
		resp["message"] = i18n.T(lang(c), i18n.TimeFormatValid)
	} else {
		resp["message"] = i18n.T(lang(c), i18n.TimeFormatInvalid)
		if d, ok := timeformat.Detect(req.Value); ok {
			resp["suggestion"] = d.Format
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleList(c *gin.Context) {
	cfgs, err := s.repo.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logConfigs": cfgs, "total": len(cfgs)})
}

func (s *Server) handleCreate(c *gin.Context) {
	var cfg logconfig.LogConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, i18n.GeneralError)
		return
	}
	created, err := s.repo.Create(c.Request.Context(), &cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGet(c *gin.Context) {
	cfg, err := s.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleUpdate(c *gin.Context) {
	var cfg logconfig.LogConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, i18n.GeneralError)
		return
	}
	cfg.ID = c.Param("id")
	updated, err := s.repo.Update(c.Request.Context(), &cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListVersions(c *gin.Context) {
	cfgs, err := s.repo.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": cfgs})
}

func (s *Server) handleGetVersion(c *gin.Context) {
	version, err := cast.ToIntE(c.Param("version"))
	if err != nil || version <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_version", "message": "version must be a positive integer"})
		return
	}
	cfg, err := s.repo.GetVersion(c.Request.Context(), c.Param("id"), version)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
