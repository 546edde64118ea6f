/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package main

import (
	"encoding/json"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/apiclient"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/appconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/sample"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"io"
)

type (
	rootOptions struct {
		lang  string
		debug bool
	}

	// sampleOptions selects the sample log, given inline or read from the tail of a file.
	sampleOptions struct {
		sample string
		file   string
		lines  int
	}
)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "clo",
		Short:         "Log config toolkit for centralized logging",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := appconfig.SetupAppConfig(); err != nil {
				return err
			}
			if cmd.Flags().Changed("lang") {
				appconfig.StdPortalConfig.Language = opts.lang
			}
			if opts.debug {
				appconfig.StdPortalConfig.Log.Debug = true
			}
			logger.DebugEnabled = appconfig.StdPortalConfig.Log.Debug
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.lang, "lang", "en", "message language: en, zh")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logs")

	cmd.AddCommand(
		newParseCmd(),
		newInferCmd(),
		newCheckTimeCmd(),
		newDetectTimeCmd(),
		newServeCmd(),
	)
	return cmd
}

func (o *sampleOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.sample, "sample", "", "sample log")
	cmd.Flags().StringVar(&o.file, "file", "", "read the sample from the tail of this file")
	cmd.Flags().IntVar(&o.lines, "lines", 1, "number of lines taken from --file")
}

func (o *sampleOptions) load() (string, error) {
	if o.file == "" {
		if o.sample == "" {
			return "", i18n.NewError(i18n.SampleRequired)
		}
		return o.sample, nil
	}
	p, err := sample.Tail(o.file, o.lines, 0)
	if err != nil {
		return "", err
	}
	if len(p.Lines) == 0 {
		return "", errors.Errorf("no complete line in %s", o.file)
	}
	logger.Debugf("[clo] read %d lines from %s charset=%s", len(p.Lines), o.file, p.Charset)
	return p.Text(), nil
}

func lang() language.Tag {
	return i18n.Parse(appconfig.StdPortalConfig.Language)
}

// newChecker uses the console API when an endpoint is configured, the local parser otherwise.
func newChecker() (timeformat.Checker, func(), error) {
	cfg := appconfig.StdPortalConfig
	if cfg.API.Endpoint == "" {
		return &timeformat.LocalChecker{}, func() {}, nil
	}
	c, err := apiclient.New(apiclient.Config{
		Endpoint: cfg.API.Endpoint,
		Token:    cfg.API.Token,
		Timeout:  cfg.APITimeout(),
	})
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
