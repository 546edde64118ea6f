/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package apiclient talks to the console GraphQL API.
package apiclient

import (
	"context"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"time"
)

const defaultTimeout = 10 * time.Second

var ErrNoEndpoint = errors.New("api endpoint is not configured")

type (
	Config struct {
		Endpoint string
		// Token is sent as the Authorization header.
		Token   string
		Timeout time.Duration
	}

	Client struct {
		config Config
		gql    *graphql.Client
		dns    *dnsCache
	}
)

func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	dns := newDNSCache()
	gql := graphql.NewClient(config.Endpoint, graphql.WithHTTPClient(dns.httpClient(config.Timeout)))
	if logger.IsDebugEnabled() {
		gql.Log = func(s string) {
			logger.Debugf("[apiclient] %s", s)
		}
	}
	dns.start()
	return &Client{config: config, gql: gql, dns: dns}, nil
}

func (c *Client) Close() {
	c.dns.stop()
}

// run executes one operation. Failures are logged and returned, never retried.
func (c *Client) run(ctx context.Context, op string, req *graphql.Request, resp interface{}) error {
	if c.config.Token != "" {
		req.Header.Set("Authorization", c.config.Token)
	}
	begin := time.Now()
	err := c.gql.Run(ctx, req, resp)
	if err != nil {
		logger.Warnw("[apiclient] call error", "op", op, "cost", time.Since(begin), "err", err)
		return errors.Wrapf(err, "%s", op)
	}
	logger.Debugf("[apiclient] %s cost=%s", op, time.Since(begin))
	return nil
}
