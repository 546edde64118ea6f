/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package sample

import (
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	UTF8 = "UTF-8"
)

var (
	// detection results are only trusted for these charsets
	expectedCharsets = []string{UTF8, "GB-18030"}
	decoderMap       = map[string]encoding.Encoding{
		"GB-18030": simplifiedchinese.GB18030,
		"GB18030":  simplifiedchinese.GB18030,
		"GBK":      simplifiedchinese.GB18030,
		"GB2312":   simplifiedchinese.GB18030,
	}
)

// DetectCharset guesses the charset of bs, falling back to UTF-8.
func DetectCharset(bs []byte) string {
	if results, err := chardet.NewTextDetector().DetectAll(bs); err == nil {
		for _, expected := range expectedCharsets {
			for _, result := range results {
				if result.Charset == expected {
					return result.Charset
				}
			}
		}
	}
	return UTF8
}

// GetEncoding returns nil for UTF-8 and unknown charsets.
func GetEncoding(charset string) encoding.Encoding {
	return decoderMap[charset]
}
