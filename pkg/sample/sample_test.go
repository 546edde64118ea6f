/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package sample

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestTail(t *testing.T) {
	path := writeFile(t, []byte("l1\nl2\nl3\nl4\n"))

	p, err := Tail(path, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, UTF8, p.Charset)
	assert.Equal(t, []string{"l3", "l4"}, p.Lines)

	p, err = Tail(path, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2", "l3", "l4"}, p.Lines)
	assert.Equal(t, "l1\nl2\nl3\nl4", p.Text())
}

func TestTailWithoutTrailingNewline(t *testing.T) {
	path := writeFile(t, []byte("a\r\nb\r\nc"))
	p, err := Tail(path, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, p.Lines)
}

func TestTailDropsCutLine(t *testing.T) {
	path := writeFile(t, []byte("0123456789\nabc\ndef\n"))
	p, err := Tail(path, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def"}, p.Lines)
}

func TestTailGB18030(t *testing.T) {
	line := strings.Repeat("我是中文日志内容，用于字符集检测。", 4)
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String(line + "\n" + line + "\n")
	require.NoError(t, err)
	path := writeFile(t, []byte(encoded))

	p, err := Tail(path, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "GB-18030", p.Charset)
	assert.Equal(t, []string{line, line}, p.Lines)
}

func TestTailErrors(t *testing.T) {
	_, err := Tail(filepath.Join(t.TempDir(), "missing.log"), 1, 0)
	assert.Error(t, err)
	_, err = Tail(t.TempDir(), 1, 0)
	assert.Error(t, err)
}
