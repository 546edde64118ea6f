/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package appconfig is the process wide configuration. It is set up first, so it must not depend on
// other business packages.
package appconfig

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	envPrefix = "CLO_"

	defaultDataDir    = "data"
	defaultLogDir     = "logs"
	defaultServerAddr = ":8080"
	defaultLanguage   = "en"
	defaultAPITimeout = "10s"

	DefaultSolutionName = "%%SOLUTION_NAME%%"
	DefaultVersion      = "%%VERSION%%"
	DefaultBucketName   = "%%BUCKET_NAME%%"
)

var (
	StdPortalConfig = PortalConfig{}
)

type (
	PortalConfig struct {
		// Language of the messages, "en" or "zh"
		Language string         `json:"language" yaml:"language" toml:"language"`
		API      APIConfig      `json:"api" yaml:"api" toml:"api"`
		Data     DataConfig     `json:"data" yaml:"data" toml:"data"`
		Server   ServerConfig   `json:"server" yaml:"server" toml:"server"`
		Log      LogConfig      `json:"log" yaml:"log" toml:"log"`
		Solution SolutionConfig `json:"solution" yaml:"solution" toml:"solution"`
		Version  string         `json:"version" yaml:"-" toml:"-"`
	}
	APIConfig struct {
		// GraphQL endpoint of the console. Empty means time formats are checked locally.
		Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
		Token    string `json:"-" yaml:"token" toml:"token"`
		Timeout  string `json:"timeout" yaml:"timeout" toml:"timeout"`
	}
	DataConfig struct {
		Dir string `json:"dir" yaml:"dir" toml:"dir"`
	}
	ServerConfig struct {
		Addr string `json:"addr" yaml:"addr" toml:"addr"`
	}
	LogConfig struct {
		Dir        string `json:"dir" yaml:"dir" toml:"dir"`
		Debug      bool   `json:"debug" yaml:"debug" toml:"debug"`
		MaxSizeMB  int    `json:"maxSizeMB,omitempty" yaml:"maxSizeMB" toml:"maxSizeMB"`
		MaxBackups int    `json:"maxBackups,omitempty" yaml:"maxBackups" toml:"maxBackups"`
	}
	// SolutionConfig holds the placeholders written into deployment templates.
	SolutionConfig struct {
		Name    string `json:"name" yaml:"name" toml:"name"`
		Version string `json:"version" yaml:"version" toml:"version"`
		Bucket  string `json:"bucket" yaml:"bucket" toml:"bucket"`
	}
)

// SetupAppConfig loads StdPortalConfig from the working directory and the environment.
func SetupAppConfig() error {
	c, err := Load(".", os.Getenv)
	if err != nil {
		return err
	}
	StdPortalConfig = *c
	return nil
}

// Load reads dir/clo.yaml (or dir/conf/clo.yaml), then dir/clo.toml (or dir/conf/clo.toml), then CLO_* variables.
// Later sources override earlier ones.
func Load(dir string, getenv func(string) string) (*PortalConfig, error) {
	c := &PortalConfig{}

	if b, path, err := readFirst(dir, "clo.yaml"); err == nil {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if b, path, err := readFirst(dir, "clo.toml"); err == nil {
		if err := toml.Unmarshal(b, c); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := c.loadEnv(getenv); err != nil {
		return nil, err
	}
	c.setDefaults()
	c.Version = version
	return c, nil
}

func readFirst(dir, name string) ([]byte, string, error) {
	path := filepath.Join(dir, name)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		path = filepath.Join(dir, "conf", name)
		b, err = os.ReadFile(path)
	}
	return b, path, err
}

func (c *PortalConfig) loadEnv(getenv func(string) string) error {
	env := func(key string) string {
		return getenv(envPrefix + key)
	}
	if s := env("LANGUAGE"); s != "" {
		c.Language = s
	}
	if s := env("API_ENDPOINT"); s != "" {
		c.API.Endpoint = s
	}
	if s := env("API_TOKEN"); s != "" {
		c.API.Token = s
	}
	if s := env("API_TIMEOUT"); s != "" {
		if _, err := cast.ToDurationE(s); err != nil {
			return errors.Wrapf(err, "%sAPI_TIMEOUT", envPrefix)
		}
		c.API.Timeout = s
	}
	if s := env("DATA_DIR"); s != "" {
		c.Data.Dir = s
	}
	if s := env("SERVER_ADDR"); s != "" {
		c.Server.Addr = s
	}
	if s := env("LOG_DIR"); s != "" {
		c.Log.Dir = s
	}
	if s := env("DEBUG"); s != "" {
		c.Log.Debug = cast.ToBool(s)
	}
	if s := env("LOG_MAX_SIZE_MB"); s != "" {
		c.Log.MaxSizeMB = cast.ToInt(s)
	}
	if s := env("SOLUTION_NAME"); s != "" {
		c.Solution.Name = s
	}
	if s := env("SOLUTION_VERSION"); s != "" {
		c.Solution.Version = s
	}
	if s := env("SOLUTION_BUCKET"); s != "" {
		c.Solution.Bucket = s
	}
	return nil
}

func (c *PortalConfig) setDefaults() {
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	if c.API.Timeout == "" {
		c.API.Timeout = defaultAPITimeout
	}
	if c.Data.Dir == "" {
		c.Data.Dir = defaultDataDir
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Log.Dir == "" {
		c.Log.Dir = defaultLogDir
	}
	if c.Solution.Name == "" {
		c.Solution.Name = DefaultSolutionName
	}
	if c.Solution.Version == "" {
		c.Solution.Version = DefaultVersion
	}
	if c.Solution.Bucket == "" {
		c.Solution.Bucket = DefaultBucketName
	}
}

// APITimeout returns the configured timeout, or the default one when it cannot be parsed.
func (c *PortalConfig) APITimeout() time.Duration {
	if d, err := cast.ToDurationE(c.API.Timeout); err == nil && d > 0 {
		return d
	}
	return cast.ToDuration(defaultAPITimeout)
}

// EnsureDirs creates the data and log directories.
func (c *PortalConfig) EnsureDirs() error {
	for _, dir := range []string{c.Data.Dir, c.Log.Dir} {
		if err := ensureExist(dir); err != nil {
			return err
		}
	}
	return nil
}

func ensureExist(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if os.IsNotExist(err) {
		return os.MkdirAll(dir, fs.ModePerm)
	} else {
		return err
	}
}
