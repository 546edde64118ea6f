/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package solutionhelper rewrites synthesized CloudFormation templates so that code assets and nested
// stacks are fetched from the solution distribution bucket instead of the CDK asset bucket.
package solutionhelper

import (
	"bytes"
	"encoding/json"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"github.com/pkg/errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	typeFunction    = "AWS::Lambda::Function"
	typeLayer       = "AWS::Lambda::LayerVersion"
	typeNestedStack = "AWS::CloudFormation::Stack"

	assetPathMetadata    = "aws:asset:path"
	assetParameterMarker = "AssetParameters"
	zipSuffix            = ".zip"
)

var ErrMissingAssetPath = errors.New("nested stack is missing the aws:asset:path metadata")

type (
	// Placeholders are the tokens substituted by the release pipeline.
	Placeholders struct {
		SolutionName   string
		Version        string
		BucketName     string
		TemplateBucket string
	}

	template = map[string]interface{}
)

func DefaultPlaceholders() Placeholders {
	return Placeholders{
		SolutionName:   "%%SOLUTION_NAME%%",
		Version:        "%%VERSION%%",
		BucketName:     "%%BUCKET_NAME%%",
		TemplateBucket: "%%TEMPLATE_OUTPUT_BUCKET%%",
	}
}

// ProcessDir rewrites every *.json file of dir in place. It stops at the first error.
func ProcessDir(dir string, p Placeholders) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, file := range files {
		if err := ProcessFile(file, p); err != nil {
			return err
		}
	}
	logger.Infof("[solution-helper] processed %d templates in %s", len(files), dir)
	return nil
}

func ProcessFile(path string, p Placeholders) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var tpl template
	if err := decoder.Decode(&tpl); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	if err := Process(tpl, p); err != nil {
		return errors.Wrapf(err, "process %s", path)
	}

	buf := bytes.NewBuffer(nil)
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(tpl); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"), stat.Mode()); err != nil {
		return err
	}
	logger.Infof("[solution-helper] rewrote %s", path)
	return nil
}

// Process rewrites tpl in place.
func Process(tpl template, p Placeholders) error {
	resources := object(tpl["Resources"])
	for _, name := range sortedKeys(resources) {
		res := object(resources[name])
		switch res["Type"] {
		case typeFunction:
			rewriteCode(object(object(res["Properties"])["Code"]), p)
		case typeLayer:
			rewriteCode(object(object(res["Properties"])["Content"]), p)
		case typeNestedStack:
			if err := rewriteNestedStack(name, res, p); err != nil {
				return err
			}
		}
	}

	if params := object(tpl["Parameters"]); params != nil {
		removeAssetParameters(params)
		delete(params, "BootstrapVersion")
	}
	if rules := object(tpl["Rules"]); rules != nil {
		delete(rules, "CheckBootstrapVersion")
	}
	return nil
}

// rewriteCode points a code location with an S3Bucket at the solution bucket.
func rewriteCode(code template, p Placeholders) {
	if code == nil {
		return
	}
	if _, ok := code["S3Bucket"]; !ok {
		return
	}
	key, ok := code["S3Key"].(string)
	if !ok {
		logger.Warnf("[solution-helper] S3Key is not a string, skip: %v", code["S3Key"])
		return
	}
	if !strings.HasSuffix(key, zipSuffix) {
		key += zipSuffix
	}
	code["S3Key"] = p.SolutionName + "/" + p.Version + "/" + key
	code["S3Bucket"] = template{"Fn::Sub": p.BucketName + "-${AWS::Region}"}
}

func rewriteNestedStack(name string, res template, p Placeholders) error {
	assetPath, _ := object(res["Metadata"])[assetPathMetadata].(string)
	if assetPath == "" {
		return errors.Wrapf(ErrMissingAssetPath, "resource %s", name)
	}
	props := object(res["Properties"])
	if props == nil {
		props = template{}
		res["Properties"] = props
	}
	props["TemplateURL"] = template{
		"Fn::Join": []interface{}{
			"",
			[]interface{}{
				"https://" + p.TemplateBucket + ".s3.",
				template{"Ref": "AWS::URLSuffix"},
				"/" + p.SolutionName + "/" + p.Version + "/" + assetPath,
			},
		},
	}
	if params := object(props["Parameters"]); params != nil {
		removeAssetParameters(params)
	}
	return nil
}

func removeAssetParameters(params template) {
	for key := range params {
		if strings.Contains(key, assetParameterMarker) {
			delete(params, key)
		}
	}
}

func object(v interface{}) template {
	m, _ := v.(map[string]interface{})
	return m
}

func sortedKeys(m template) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
