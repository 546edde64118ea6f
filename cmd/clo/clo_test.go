/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, args...)
	return out, err
}

func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("CLO_API_ENDPOINT", "")
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), stderr.String(), err
}

func TestParseCmd(t *testing.T) {
	out, err := execute(t, "parse",
		"--type", "SingleLineText",
		"--regex", `(?P<time>\S+ \S+) (?P<level>\w+) (?P<msg>.*)`,
		"--sample", "2024-01-02 03:04:05 WARN disk almost full")
	require.NoError(t, err)

	var ret struct {
		Fields []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ret))
	require.Len(t, ret.Fields, 3)
	assert.Equal(t, "level", ret.Fields[1].Key)
	assert.Equal(t, "WARN", ret.Fields[1].Value)

	_, err = execute(t, "parse", "--type", "SingleLineText", "--regex", `(?P<n>\d+)`, "--sample", "abc")
	assert.Error(t, err)

	_, err = execute(t, "parse", "--type", "JSON", "--sample", "{}")
	assert.Error(t, err)
}

func TestParseCmdAlerts(t *testing.T) {
	_, stderr, err := executeWithStderr(t, "parse", "--regex", `(?P<level>\w+)`, "--sample", "WARN")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[SUCCESS] The sample log was parsed successfully")

	_, stderr, err = executeWithStderr(t, "parse", "--regex", `(?P<n>\d+)`, "--sample", "abc")
	var e *i18n.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, i18n.RegexNotMatched, e.Key)
	assert.Contains(t, stderr, "[ERROR] The sample log does not match the regular expression")

	_, stderr, err = executeWithStderr(t, "--lang", "zh", "parse", "--regex", `(?P<n>\d+)`, "--sample", "abc")
	assert.Error(t, err)
	assert.Contains(t, stderr, "示例日志与正则表达式不匹配")

	_, _, err = executeWithStderr(t, "parse", "--regex", "(?P<a>", "--sample", "abc")
	require.ErrorAs(t, err, &e)
	assert.Equal(t, i18n.RegexInvalid, e.Key)
}

func TestParseCmdSyslog(t *testing.T) {
	out, err := execute(t, "parse", "--type", "Syslog",
		"--sample", "<34>Oct 11 22:14:15 mymachine su[230]: 'su root' failed for lonvick on /dev/pts/8")
	require.NoError(t, err)
	assert.Contains(t, out, `"mymachine"`)
}

func TestParseCmdNginxFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "access.log")
	content := "10.0.0.1 - - [02/Jan/2024:03:04:05 +0000] \"GET / HTTP/1.1\" 200 12\n" +
		"10.0.0.2 - - [02/Jan/2024:03:04:06 +0000] \"GET /a HTTP/1.1\" 404 0\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	out, err := execute(t, "parse",
		"--type", "Nginx",
		"--format", `$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent`,
		"--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"10.0.0.2"`)
	assert.Contains(t, out, `"404"`)
}

func TestInferCmd(t *testing.T) {
	out, err := execute(t, "infer", "--sample", `{"host":"92.13.1.23","level":"WARN"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "object"`)
	assert.Contains(t, out, `"host"`)

	_, err = execute(t, "infer", "--sample", `{"host":`)
	assert.Error(t, err)

	_, err = execute(t, "infer")
	assert.Error(t, err)
}

func TestCheckTimeCmd(t *testing.T) {
	out, err := execute(t, "check-time", "--value", "2024-01-02 03:04:05", "--format", "%Y-%m-%d %H:%M:%S")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "VALID"`)

	out, err = execute(t, "check-time", "--value", "02/Jan/2024", "--format", "%Y-%m-%d %H:%M:%S")
	assert.Error(t, err)
	assert.Contains(t, out, `"status": "INVALID"`)

	out, err = execute(t, "--lang", "zh", "check-time", "--value", "2024-01-02 03:04:05", "--format", "%Y-%m-%d %H:%M:%S")
	require.NoError(t, err)
	assert.Contains(t, out, "时间格式与示例值匹配")

	_, err = execute(t, "check-time", "--value", "x")
	assert.Error(t, err)
}

func TestDetectTimeCmd(t *testing.T) {
	out, err := execute(t, "detect-time", "2024-01-02 03:04:05")
	require.NoError(t, err)
	assert.Contains(t, out, `"Format": "%Y-%m-%d %H:%M:%S"`)

	_, err = execute(t, "detect-time", "no time here")
	assert.Error(t, err)
}
