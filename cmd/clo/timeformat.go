/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package main

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/notify"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/status"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCheckTimeCmd() *cobra.Command {
	var value, format string
	cmd := &cobra.Command{
		Use:   "check-time",
		Short: "Check that a time value matches a strftime format",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				return i18n.NewError(i18n.TimeFormatRequired)
			}
			checker, closeFn, err := newChecker()
			if err != nil {
				return err
			}
			defer closeFn()

			st := timeformat.NewValidator(checker).Validate(cmd.Context(), value, format)
			d := status.Lookup(st.String())
			ret := map[string]interface{}{
				"status":  st,
				"display": d,
			}
			if st == timeformat.Valid {
				ret["message"] = notify.Alert{Level: notify.LevelSuccess, Key: i18n.TimeFormatValid}.Text(lang())
			} else {
				ret["message"] = notify.Alert{Level: notify.LevelError, Key: i18n.TimeFormatInvalid, Detail: value}.Text(lang())
			}
			if err := printJSON(cmd.OutOrStdout(), ret); err != nil {
				return err
			}
			if st != timeformat.Valid {
				return errors.New(d.Label)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "time value taken from a sample log")
	cmd.Flags().StringVar(&format, "format", "", "strftime format, e.g. %Y-%m-%d %H:%M:%S")
	return cmd
}

func newDetectTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect-time VALUE",
		Short: "Suggest a strftime format for a time value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := timeformat.Detect(args[0])
			if !ok {
				return errors.Errorf("no known time format found in %q", args[0])
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}
}
