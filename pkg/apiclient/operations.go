/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package apiclient

import (
	"context"
	"encoding/json"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/schema"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"time"
)

const (
	logConfigFields = `id version name logType description userLogFormat userSampleLog regex
    regexFieldSpecs { key type format }
    jsonSchema timeKey timeOffset timeKeyRegex
    filterConfigMap { enabled filters { key condition value } }
    createdAt`

	createLogConfigMutation = `mutation CreateLogConfig($name: String!, $logType: LogType!, $description: String, $userLogFormat: String, $userSampleLog: String, $regex: String, $regexFieldSpecs: [RegularSpecInput], $jsonSchema: AWSJSON, $timeKey: String, $timeOffset: String, $timeKeyRegex: String, $filterConfigMap: ProcessorFilterRegexInput) {
  createLogConfig(name: $name, logType: $logType, description: $description, userLogFormat: $userLogFormat, userSampleLog: $userSampleLog, regex: $regex, regexFieldSpecs: $regexFieldSpecs, jsonSchema: $jsonSchema, timeKey: $timeKey, timeOffset: $timeOffset, timeKeyRegex: $timeKeyRegex, filterConfigMap: $filterConfigMap)
}`
	updateLogConfigMutation = `mutation UpdateLogConfig($id: String!, $version: Int!, $name: String!, $logType: LogType!, $description: String, $userLogFormat: String, $userSampleLog: String, $regex: String, $regexFieldSpecs: [RegularSpecInput], $jsonSchema: AWSJSON, $timeKey: String, $timeOffset: String, $timeKeyRegex: String, $filterConfigMap: ProcessorFilterRegexInput) {
  updateLogConfig(id: $id, version: $version, name: $name, logType: $logType, description: $description, userLogFormat: $userLogFormat, userSampleLog: $userSampleLog, regex: $regex, regexFieldSpecs: $regexFieldSpecs, jsonSchema: $jsonSchema, timeKey: $timeKey, timeOffset: $timeOffset, timeKeyRegex: $timeKeyRegex, filterConfigMap: $filterConfigMap)
}`
	deleteLogConfigMutation = `mutation DeleteLogConfig($id: String!) {
  deleteLogConfig(id: $id)
}`
	getLogConfigQuery = `query GetLogConfig($id: String!, $version: Int) {
  getLogConfig(id: $id, version: $version) {
    ` + logConfigFields + `
  }
}`
	listLogConfigsQuery = `query ListLogConfigs($page: Int!, $count: Int!) {
  listLogConfigs(page: $page, count: $count) {
    logConfigs {
      ` + logConfigFields + `
    }
    total
  }
}`
	listLogConfigVersionsQuery = `query ListLogConfigVersions($id: String!) {
  listLogConfigVersions(id: $id) {
    ` + logConfigFields + `
  }
}`
	checkTimeFormatQuery = `query CheckTimeFormat($timeStr: String!, $formatStr: String!) {
  checkTimeFormat(timeStr: $timeStr, formatStr: $formatStr) {
    isMatch
  }
}`
	listDomainNamesQuery = `query ListDomainNames($region: String) {
  listDomainNames(region: $region) {
    domainNames
  }
}`
)

var _ timeformat.Checker = (*Client)(nil)

type (
	// logConfigDTO is the wire shape of a log config. jsonSchema travels as an AWSJSON string.
	logConfigDTO struct {
		ID              string                 `json:"id"`
		Version         int                    `json:"version"`
		Name            string                 `json:"name"`
		LogType         logconfig.LogType      `json:"logType"`
		Description     string                 `json:"description"`
		UserLogFormat   string                 `json:"userLogFormat"`
		UserSampleLog   string                 `json:"userSampleLog"`
		Regex           string                 `json:"regex"`
		RegexFieldSpecs []logconfig.FieldSpec  `json:"regexFieldSpecs"`
		JSONSchema      string                 `json:"jsonSchema"`
		TimeKey         string                 `json:"timeKey"`
		TimeOffset      string                 `json:"timeOffset"`
		TimeKeyRegex    string                 `json:"timeKeyRegex"`
		FilterConfig    logconfig.FilterConfig `json:"filterConfigMap"`
		CreatedAt       string                 `json:"createdAt"`
	}

	LogConfigPage struct {
		LogConfigs []*logconfig.LogConfig
		Total      int
	}
)

func (c *Client) CreateLogConfig(ctx context.Context, cfg *logconfig.LogConfig) (string, error) {
	req := graphql.NewRequest(createLogConfigMutation)
	if err := setLogConfigVars(req, cfg); err != nil {
		return "", err
	}
	var resp struct {
		CreateLogConfig string `json:"createLogConfig"`
	}
	if err := c.run(ctx, "createLogConfig", req, &resp); err != nil {
		return "", err
	}
	return resp.CreateLogConfig, nil
}

// UpdateLogConfig saves cfg as a new version. cfg.Version is the version being replaced.
func (c *Client) UpdateLogConfig(ctx context.Context, cfg *logconfig.LogConfig) error {
	req := graphql.NewRequest(updateLogConfigMutation)
	req.Var("id", cfg.ID)
	req.Var("version", cfg.Version)
	if err := setLogConfigVars(req, cfg); err != nil {
		return err
	}
	var resp struct {
		UpdateLogConfig string `json:"updateLogConfig"`
	}
	return c.run(ctx, "updateLogConfig", req, &resp)
}

func (c *Client) DeleteLogConfig(ctx context.Context, id string) error {
	req := graphql.NewRequest(deleteLogConfigMutation)
	req.Var("id", id)
	var resp struct {
		DeleteLogConfig string `json:"deleteLogConfig"`
	}
	return c.run(ctx, "deleteLogConfig", req, &resp)
}

// GetLogConfig fetches one version of a config. Version 0 means the latest.
func (c *Client) GetLogConfig(ctx context.Context, id string, version int) (*logconfig.LogConfig, error) {
	req := graphql.NewRequest(getLogConfigQuery)
	req.Var("id", id)
	if version > 0 {
		req.Var("version", version)
	}
	var resp struct {
		GetLogConfig *logConfigDTO `json:"getLogConfig"`
	}
	if err := c.run(ctx, "getLogConfig", req, &resp); err != nil {
		return nil, err
	}
	if resp.GetLogConfig == nil {
		return nil, errors.Errorf("log config %s not found", id)
	}
	return resp.GetLogConfig.toLogConfig()
}

func (c *Client) ListLogConfigs(ctx context.Context, page, count int) (*LogConfigPage, error) {
	req := graphql.NewRequest(listLogConfigsQuery)
	req.Var("page", page)
	req.Var("count", count)
	var resp struct {
		ListLogConfigs struct {
			LogConfigs []*logConfigDTO `json:"logConfigs"`
			Total      int             `json:"total"`
		} `json:"listLogConfigs"`
	}
	if err := c.run(ctx, "listLogConfigs", req, &resp); err != nil {
		return nil, err
	}
	ret := &LogConfigPage{Total: resp.ListLogConfigs.Total}
	for _, dto := range resp.ListLogConfigs.LogConfigs {
		cfg, err := dto.toLogConfig()
		if err != nil {
			return nil, err
		}
		ret.LogConfigs = append(ret.LogConfigs, cfg)
	}
	return ret, nil
}

func (c *Client) ListLogConfigVersions(ctx context.Context, id string) ([]*logconfig.LogConfig, error) {
	req := graphql.NewRequest(listLogConfigVersionsQuery)
	req.Var("id", id)
	var resp struct {
		ListLogConfigVersions []*logConfigDTO `json:"listLogConfigVersions"`
	}
	if err := c.run(ctx, "listLogConfigVersions", req, &resp); err != nil {
		return nil, err
	}
	ret := make([]*logconfig.LogConfig, 0, len(resp.ListLogConfigVersions))
	for _, dto := range resp.ListLogConfigVersions {
		cfg, err := dto.toLogConfig()
		if err != nil {
			return nil, err
		}
		ret = append(ret, cfg)
	}
	return ret, nil
}

// CheckTimeFormat asks the server whether value matches the strftime format.
func (c *Client) CheckTimeFormat(ctx context.Context, value, format string) (bool, error) {
	req := graphql.NewRequest(checkTimeFormatQuery)
	req.Var("timeStr", value)
	req.Var("formatStr", format)
	var resp struct {
		CheckTimeFormat struct {
			IsMatch bool `json:"isMatch"`
		} `json:"checkTimeFormat"`
	}
	if err := c.run(ctx, "checkTimeFormat", req, &resp); err != nil {
		return false, err
	}
	return resp.CheckTimeFormat.IsMatch, nil
}

func (c *Client) ListDomainNames(ctx context.Context, region string) ([]string, error) {
	req := graphql.NewRequest(listDomainNamesQuery)
	if region != "" {
		req.Var("region", region)
	}
	var resp struct {
		ListDomainNames struct {
			DomainNames []string `json:"domainNames"`
		} `json:"listDomainNames"`
	}
	if err := c.run(ctx, "listDomainNames", req, &resp); err != nil {
		return nil, err
	}
	return resp.ListDomainNames.DomainNames, nil
}

func setLogConfigVars(req *graphql.Request, cfg *logconfig.LogConfig) error {
	req.Var("name", cfg.Name)
	req.Var("logType", cfg.LogType)
	req.Var("description", cfg.Description)
	req.Var("userLogFormat", cfg.UserLogFormat)
	req.Var("userSampleLog", cfg.UserSampleLog)
	req.Var("timeKey", cfg.TimeKey)
	req.Var("timeOffset", cfg.TimeOffset)
	req.Var("timeKeyRegex", cfg.TimeKeyRegex)
	req.Var("filterConfigMap", cfg.FilterConfig)
	if cfg.LogType.UsesRegex() {
		req.Var("regex", cfg.Regex)
		req.Var("regexFieldSpecs", cfg.RegexFieldSpecs)
		return nil
	}
	if cfg.JSONSchema != nil {
		b, err := json.Marshal(cfg.JSONSchema)
		if err != nil {
			return errors.Wrap(err, "encode json schema")
		}
		req.Var("jsonSchema", string(b))
	}
	return nil
}

func (d *logConfigDTO) toLogConfig() (*logconfig.LogConfig, error) {
	cfg := &logconfig.LogConfig{
		ID:              d.ID,
		Name:            d.Name,
		Version:         d.Version,
		LogType:         d.LogType,
		Description:     d.Description,
		UserLogFormat:   d.UserLogFormat,
		UserSampleLog:   d.UserSampleLog,
		Regex:           d.Regex,
		RegexFieldSpecs: d.RegexFieldSpecs,
		TimeKey:         d.TimeKey,
		TimeOffset:      d.TimeOffset,
		TimeKeyRegex:    d.TimeKeyRegex,
		FilterConfig:    d.FilterConfig,
	}
	if d.JSONSchema != "" {
		cfg.JSONSchema = &schema.JSONSchema{}
		if err := json.Unmarshal([]byte(d.JSONSchema), cfg.JSONSchema); err != nil {
			return nil, errors.Wrapf(err, "decode json schema of %s", d.ID)
		}
	}
	if d.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, d.CreatedAt); err == nil {
			cfg.CreatedAt = t
		}
	}
	cfg.Normalize()
	return cfg, nil
}
