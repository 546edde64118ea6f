/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package notify

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestPublishSubscribe(t *testing.T) {
	n := New()
	a, unsubA := n.Subscribe()
	b, unsubB := n.Subscribe()
	defer unsubB()

	n.Error(i18n.JSONInvalid, "line 1")
	assert.Equal(t, Alert{Level: LevelError, Key: i18n.JSONInvalid, Detail: "line 1"}, <-a)
	assert.Equal(t, LevelError, (<-b).Level)

	unsubA()
	unsubA()
	_, ok := <-a
	assert.False(t, ok)

	n.Success(i18n.ParseSuccess)
	assert.Equal(t, LevelSuccess, (<-b).Level)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	n := New()
	ch, unsub := n.Subscribe()
	defer unsub()
	for i := 0; i < defaultBuffer+5; i++ {
		n.Publish(Alert{Level: LevelInfo, Detail: "x"})
	}
	assert.Len(t, ch, defaultBuffer)
}

func TestClose(t *testing.T) {
	n := New()
	ch, unsub := n.Subscribe()
	n.Close()
	_, ok := <-ch
	assert.False(t, ok)
	unsub()
	n.Publish(Alert{})

	late, _ := n.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestAlertText(t *testing.T) {
	assert.Equal(t, "The sample log is not valid JSON: line 1", Alert{Key: i18n.JSONInvalid, Detail: "line 1"}.Text(i18n.English))
	assert.Equal(t, "示例日志不是合法的JSON", Alert{Key: i18n.JSONInvalid}.Text(i18n.Chinese))
	assert.Equal(t, "raw", Alert{Detail: "raw"}.Text(i18n.English))
}
