/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package main

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/formstate"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var (
		so      sampleOptions
		logType string
		regex   string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Extract the fields of a sample log with a regex or a log format",
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := so.load()
			if err != nil {
				return err
			}
			lt := logconfig.LogType(logType)
			if !lt.Valid() || lt == logconfig.LogTypeJSON {
				return i18n.NewError(i18n.LogTypeRequired)
			}

			f := newForm(cmd.ErrOrStderr())
			actions := []formstate.Action{formstate.SetLogType{LogType: lt}}
			if format != "" {
				actions = append(actions, formstate.SetLogFormat{Format: format})
			}
			if regex != "" {
				actions = append(actions, formstate.SetRegex{Regex: regex})
			}
			st, err := f.run(append(actions,
				formstate.SetSample{Sample: line},
				formstate.ParseSample{},
			)...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"regex":  st.Config.Regex,
				"fields": st.Extracted,
				"specs":  st.Config.RegexFieldSpecs,
			})
		},
	}
	so.addFlags(cmd)
	cmd.Flags().StringVar(&logType, "type", string(logconfig.LogTypeSingleLineText), "log type: Apache, Nginx, Syslog, SingleLineText, MultiLineText")
	cmd.Flags().StringVar(&regex, "regex", "", "regular expression with named groups")
	cmd.Flags().StringVar(&format, "format", "", "nginx log_format, apache LogFormat or syslog format (RFC3164, RFC5424, CUSTOM)")
	return cmd
}

func newInferCmd() *cobra.Command {
	var so sampleOptions
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer the JSON schema of a JSON sample log",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := so.load()
			if err != nil {
				return err
			}
			st, err := newForm(cmd.ErrOrStderr()).run(
				formstate.SetLogType{LogType: logconfig.LogTypeJSON},
				formstate.SetSample{Sample: raw},
				formstate.ParseSample{},
			)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st.Config.JSONSchema)
		},
	}
	so.addFlags(cmd)
	return cmd
}
