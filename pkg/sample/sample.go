/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package sample reads sample log lines from the tail of a local file.
package sample

import (
	"bytes"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"os"
	"strings"
)

const (
	DefaultMaxBytes = 64 * 1024
	maxBytes        = 1024 * 1024
)

type (
	Preview struct {
		Charset string   `json:"charset"`
		Lines   []string `json:"lines"`
	}
)

// Tail returns up to maxLines complete lines from the end of the file at path, reading at most
// readBytes. Lines are decoded to UTF-8 and returned in file order. A trailing line without
// newline is included, a line cut by the read window is not.
func Tail(path string, maxLines, readBytes int) (*Preview, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, errors.Errorf("%s is a directory", path)
	}

	if readBytes <= 0 {
		readBytes = DefaultMaxBytes
	}
	if readBytes > maxBytes {
		readBytes = maxBytes
	}
	size := stat.Size()
	n := int64(readBytes)
	if n > size {
		n = size
	}
	offset := size - n
	dst := make([]byte, n)
	read, err := file.ReadAt(dst, offset)
	if err != nil && read != len(dst) {
		return nil, err
	}
	dst = dst[:read]

	charset := DetectCharset(dst)
	var decoder *encoding.Decoder
	if charset != UTF8 {
		enc := GetEncoding(charset)
		if enc == nil {
			return nil, errors.Errorf("unsupported charset %s", charset)
		}
		decoder = enc.NewDecoder()
	}

	dst = bytes.TrimRight(dst, "\r\n")
	lines := make([]string, 0, maxLines)
	for len(dst) > 0 && len(lines) < maxLines {
		i := bytes.LastIndexByte(dst, '\n')
		if i < 0 && offset > 0 {
			// the first line is cut by the read window
			break
		}
		line := dst[i+1:]
		dst = dst[:max(i, 0)]
		lines = append(lines, decode(decoder, bytes.TrimRight(line, "\r")))
	}
	reverse(lines)
	return &Preview{Charset: charset, Lines: lines}, nil
}

// Text joins the lines back into one sample, as expected by multi-line log types.
func (p *Preview) Text() string {
	return strings.Join(p.Lines, "\n")
}

func decode(decoder *encoding.Decoder, line []byte) string {
	if decoder == nil {
		return string(line)
	}
	if d, err := decoder.Bytes(line); err == nil {
		return string(d)
	}
	return string(line)
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
