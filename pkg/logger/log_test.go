/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package logger

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"testing"
)

func TestSetupZapLogger(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SetupZapLogger(Config{Dir: dir, Debug: true}))
	defer func() {
		DebugEnabled = false
	}()

	Infof("[test] hello %s", "world")
	Warnw("[test] warn", "key", 1)
	Errorz("[test] error", zap.String("k", "v"))
	Debugf("[test] debug")
	Sync()

	b, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "[test] hello world")

	b, err = os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `{"k": "v"}`)

	b, err = os.ReadFile(filepath.Join(dir, "debug.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "[test] debug")
	assert.True(t, IsDebugEnabled())
}
