/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package solutionhelper

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTemplate = `{
  "Parameters": {
    "BootstrapVersion": {"Type": "AWS::SSM::Parameter::Value<String>"},
    "AssetParametersabc123S3Bucket": {"Type": "String"},
    "Domain": {"Type": "String"}
  },
  "Resources": {
    "Fn": {
      "Type": "AWS::Lambda::Function",
      "Properties": {"Code": {"S3Bucket": "cdk-assets", "S3Key": "abc123"}, "MemorySize": 128}
    },
    "FnZip": {
      "Type": "AWS::Lambda::Function",
      "Properties": {"Code": {"S3Bucket": "cdk-assets", "S3Key": "def456.zip"}}
    },
    "Inline": {
      "Type": "AWS::Lambda::Function",
      "Properties": {"Code": {"ZipFile": "exports.handler = () => 1 && 2 < 3"}}
    },
    "Layer": {
      "Type": "AWS::Lambda::LayerVersion",
      "Properties": {"Content": {"S3Bucket": "cdk-assets", "S3Key": "layer.zip"}}
    },
    "Nested": {
      "Type": "AWS::CloudFormation::Stack",
      "Metadata": {"aws:asset:path": "NestedStack.nested.template.json"},
      "Properties": {
        "TemplateURL": "https://cdk-assets/NestedStack.json",
        "Parameters": {"referencetoAssetParametersabc123Ref": {"Ref": "x"}, "Domain": {"Ref": "Domain"}}
      }
    }
  },
  "Rules": {"CheckBootstrapVersion": {"Assertions": []}}
}`

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readTemplate(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var tpl map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &tpl))
	return tpl
}

func resourceProps(tpl map[string]interface{}, name string) map[string]interface{} {
	return tpl["Resources"].(map[string]interface{})[name].(map[string]interface{})["Properties"].(map[string]interface{})
}

func TestProcessDir(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "main.template.json", sampleTemplate)
	other := writeTemplate(t, dir, "notes.txt", "untouched")

	require.NoError(t, ProcessDir(dir, DefaultPlaceholders()))
	tpl := readTemplate(t, path)

	code := resourceProps(tpl, "Fn")["Code"].(map[string]interface{})
	assert.Equal(t, "%%SOLUTION_NAME%%/%%VERSION%%/abc123.zip", code["S3Key"])
	assert.Equal(t, map[string]interface{}{"Fn::Sub": "%%BUCKET_NAME%%-${AWS::Region}"}, code["S3Bucket"])
	assert.EqualValues(t, 128, resourceProps(tpl, "Fn")["MemorySize"])

	codeZip := resourceProps(tpl, "FnZip")["Code"].(map[string]interface{})
	assert.Equal(t, "%%SOLUTION_NAME%%/%%VERSION%%/def456.zip", codeZip["S3Key"])

	inline := resourceProps(tpl, "Inline")["Code"].(map[string]interface{})
	assert.NotContains(t, inline, "S3Key")

	content := resourceProps(tpl, "Layer")["Content"].(map[string]interface{})
	assert.Equal(t, "%%SOLUTION_NAME%%/%%VERSION%%/layer.zip", content["S3Key"])

	nested := resourceProps(tpl, "Nested")
	url := nested["TemplateURL"].(map[string]interface{})["Fn::Join"].([]interface{})
	parts := url[1].([]interface{})
	assert.Equal(t, "https://%%TEMPLATE_OUTPUT_BUCKET%%.s3.", parts[0])
	assert.Equal(t, "/%%SOLUTION_NAME%%/%%VERSION%%/NestedStack.nested.template.json", parts[2])
	assert.Equal(t, map[string]interface{}{"Domain": map[string]interface{}{"Ref": "Domain"}}, nested["Parameters"])

	params := tpl["Parameters"].(map[string]interface{})
	assert.NotContains(t, params, "BootstrapVersion")
	assert.NotContains(t, params, "AssetParametersabc123S3Bucket")
	assert.Contains(t, params, "Domain")
	assert.NotContains(t, tpl["Rules"].(map[string]interface{}), "CheckBootstrapVersion")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "{\n  \""))
	assert.Contains(t, string(b), "1 && 2 < 3")

	b, err = os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(b))
}

func TestProcessIsIdempotentForZipSuffix(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "a.json", sampleTemplate)
	p := DefaultPlaceholders()
	require.NoError(t, ProcessFile(path, p))
	require.NoError(t, ProcessFile(path, p))
	code := resourceProps(readTemplate(t, path), "FnZip")["Code"].(map[string]interface{})
	assert.False(t, strings.HasSuffix(code["S3Key"].(string), ".zip.zip"))
}

func TestMissingAssetPath(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.json", `{"Resources":{"N":{"Type":"AWS::CloudFormation::Stack","Properties":{}}}}`)
	err := ProcessDir(dir, DefaultPlaceholders())
	assert.ErrorIs(t, err, ErrMissingAssetPath)
}

func TestInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.json", `{`)
	assert.Error(t, ProcessDir(dir, DefaultPlaceholders()))
}

func TestCustomPlaceholders(t *testing.T) {
	tpl := map[string]interface{}{
		"Resources": map[string]interface{}{
			"Fn": map[string]interface{}{
				"Type":       "AWS::Lambda::Function",
				"Properties": map[string]interface{}{"Code": map[string]interface{}{"S3Bucket": "b", "S3Key": "k"}},
			},
		},
	}
	require.NoError(t, Process(tpl, Placeholders{SolutionName: "clo", Version: "v1.0.0", BucketName: "dist"}))
	code := resourceProps(tpl, "Fn")["Code"].(map[string]interface{})
	assert.Equal(t, "clo/v1.0.0/k.zip", code["S3Key"])
	assert.Equal(t, map[string]interface{}{"Fn::Sub": "dist-${AWS::Region}"}, code["S3Bucket"])
}
