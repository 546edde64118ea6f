/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package server

import (
	"bytes"
	"encoding/json"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.NewStorage(filepath.Join(t.TempDir(), "clo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	srv := NewServer("", st, timeformat.NewValidator(&timeformat.LocalChecker{}))
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var ret map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ret))
	}
	return w, ret
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	w, body := do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, _ = do(t, h, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParse(t *testing.T) {
	h := newTestHandler(t)
	w, body := do(t, h, http.MethodPost, "/api/logconfig/parse", gin.H{
		"logType": "SingleLineText",
		"regex":   `(?P<level>[A-Z]+) (?P<msg>.*)`,
		"sample":  "WARN disk is full",
		"filterConfigMap": gin.H{
			"enabled": true,
			"filters": []gin.H{{"key": "level", "condition": "Include", "value": "WARN|ERROR"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["kept"])
	fields := body["fields"].([]interface{})
	require.Len(t, fields, 2)
	assert.Equal(t, "level", fields[0].(map[string]interface{})["key"])
}

func TestParseNotMatched(t *testing.T) {
	h := newTestHandler(t)
	w, body := do(t, h, http.MethodPost, "/api/logconfig/parse", gin.H{
		"logType": "SingleLineText",
		"regex":   `^(?P<n>\d+)$`,
		"sample":  "abc",
	}, "Accept-Language", "zh-CN")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "示例日志与正则表达式不匹配", body["message"])
}

func TestParseNginxFormat(t *testing.T) {
	h := newTestHandler(t)
	w, body := do(t, h, http.MethodPost, "/api/logconfig/parse", gin.H{
		"logType":       "Nginx",
		"userLogFormat": `$remote_addr [$time_local] $status`,
		"sample":        `1.2.3.4 [02/Jan/2022:03:04:05 +0000] 404`,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["regex"])
}

func TestParseBadRequest(t *testing.T) {
	h := newTestHandler(t)
	w, _ := do(t, h, http.MethodPost, "/api/logconfig/parse", gin.H{"logType": "JSON", "sample": "{}"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, h, http.MethodPost, "/api/logconfig/parse", gin.H{"logType": "SingleLineText"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchema(t *testing.T) {
	h := newTestHandler(t)
	w, body := do(t, h, http.MethodPost, "/api/logconfig/schema", gin.H{"sample": `{"host":"92.13.1.23","level":"WARN"}`})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"host", "level"}, body["fields"])

	w, body = do(t, h, http.MethodPost, "/api/logconfig/schema", gin.H{"sample": `{"host":`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "resource:config.common.jsonInvalid", body["error"])
}

func TestCheckTimeFormat(t *testing.T) {
	h := newTestHandler(t)
	w, body := do(t, h, http.MethodPost, "/api/timeformat/check", gin.H{"value": "2022-01-02 03:04:05", "format": "%Y-%m-%d %H:%M:%S"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "VALID", body["status"])
	assert.Equal(t, "success", body["display"].(map[string]interface{})["icon"])

	w, body = do(t, h, http.MethodPost, "/api/timeformat/check", gin.H{"value": "2022-01-02 03:04:05", "format": "%d/%m"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INVALID", body["status"])
	assert.Equal(t, "%Y-%m-%d %H:%M:%S", body["suggestion"])
}

func TestLogConfigCRUD(t *testing.T) {
	h := newTestHandler(t)
	cfg := logconfig.LogConfig{
		Name:    "app",
		LogType: logconfig.LogTypeSingleLineText,
		Regex:   `(?P<msg>.*)`,
	}
	w, created := do(t, h, http.MethodPost, "/api/logconfigs", cfg)
	require.Equal(t, http.StatusCreated, w.Code)
	id := created["id"].(string)
	assert.EqualValues(t, 1, created["version"])

	cfg.ID = id
	cfg.Version = 1
	cfg.Description = "v2"
	w, updated := do(t, h, http.MethodPut, "/api/logconfigs/"+id, cfg)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, updated["version"])

	w, _ = do(t, h, http.MethodPut, "/api/logconfigs/"+id, cfg)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, got := do(t, h, http.MethodGet, "/api/logconfigs/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v2", got["description"])

	w, v1 := do(t, h, http.MethodGet, "/api/logconfigs/"+id+"/versions/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, v1["description"])

	w, _ = do(t, h, http.MethodGet, "/api/logconfigs/"+id+"/versions/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, versions := do(t, h, http.MethodGet, "/api/logconfigs/"+id+"/versions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, versions["versions"], 2)

	w, list := do(t, h, http.MethodGet, "/api/logconfigs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, list["total"])

	w, _ = do(t, h, http.MethodDelete, "/api/logconfigs/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, h, http.MethodGet, "/api/logconfigs/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateInvalid(t *testing.T) {
	h := newTestHandler(t)
	w, body := do(t, h, http.MethodPost, "/api/logconfigs", logconfig.LogConfig{LogType: logconfig.LogTypeJSON})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please input the config name", body["message"])
}

func TestMetrics(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodGet, "/api/health", nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `clo_api_requests_total{code="200",route="/api/health"} 1`)
}
