/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package main

import (
	"fmt"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/appconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/solutionhelper"
	"github.com/spf13/cobra"
	"os"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var (
		dir            string
		templateBucket string
		debug          bool
	)
	p := solutionhelper.DefaultPlaceholders()
	cmd := &cobra.Command{
		Use:           "cdk-solution-helper",
		Short:         "Point synthesized templates at the solution distribution bucket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appconfig.SetupAppConfig(); err != nil {
				return err
			}
			logger.DebugEnabled = debug || appconfig.StdPortalConfig.Log.Debug
			sc := appconfig.StdPortalConfig.Solution
			flags := cmd.Flags()
			if !flags.Changed("solution-name") {
				p.SolutionName = sc.Name
			}
			if !flags.Changed("version") {
				p.Version = sc.Version
			}
			if !flags.Changed("bucket") {
				p.BucketName = sc.Bucket
			}
			if templateBucket != "" {
				p.TemplateBucket = templateBucket
			}
			return solutionhelper.ProcessDir(dir, p)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "../deployment/global-s3-assets", "directory holding the synthesized *.json templates")
	cmd.Flags().StringVar(&p.SolutionName, "solution-name", p.SolutionName, "solution name placeholder")
	cmd.Flags().StringVar(&p.Version, "version", p.Version, "solution version placeholder")
	cmd.Flags().StringVar(&p.BucketName, "bucket", p.BucketName, "regional asset bucket placeholder")
	cmd.Flags().StringVar(&templateBucket, "template-bucket", "", "bucket holding nested stack templates")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logs")
	return cmd
}
