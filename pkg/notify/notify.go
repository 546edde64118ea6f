/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package notify carries user facing alerts from the code that raises them to whoever displays them.
package notify

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"golang.org/x/text/language"
	"sync"
)

const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarn    Level = "WARN"
	LevelError   Level = "ERROR"

	defaultBuffer = 16
)

type (
	Level string

	// Alert is one message for the user. Key is translated when displayed, Detail is shown verbatim.
	Alert struct {
		Level  Level    `json:"level"`
		Key    i18n.Key `json:"key,omitempty"`
		Detail string   `json:"detail,omitempty"`
	}

	// Notifier fans alerts out to subscribers. A slow subscriber loses alerts instead of blocking the sender.
	Notifier struct {
		mu     sync.Mutex
		subs   map[int]chan Alert
		nextID int
		buffer int
		closed bool
	}
)

func New() *Notifier {
	return &Notifier{
		subs:   make(map[int]chan Alert),
		buffer: defaultBuffer,
	}
}

// Text renders the alert in the given language.
func (a Alert) Text(tag language.Tag) string {
	text := i18n.T(tag, a.Key)
	switch {
	case text == "":
		return a.Detail
	case a.Detail == "":
		return text
	default:
		return text + ": " + a.Detail
	}
}

// Subscribe returns a channel receiving alerts published from now on, and a func to unsubscribe.
func (n *Notifier) Subscribe() (<-chan Alert, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan Alert, n.buffer)
	if n.closed {
		close(ch)
		return ch, func() {}
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if c, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(c)
			}
		})
	}
}

func (n *Notifier) Publish(a Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for id, ch := range n.subs {
		select {
		case ch <- a:
		default:
			logger.Warnw("[notify] subscriber is full, alert dropped", "subscriber", id, "key", a.Key)
		}
	}
}

func (n *Notifier) Error(key i18n.Key, detail string) {
	n.Publish(Alert{Level: LevelError, Key: key, Detail: detail})
}

func (n *Notifier) Success(key i18n.Key) {
	n.Publish(Alert{Level: LevelSuccess, Key: key})
}

// Close closes every subscriber channel. Later publishes are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
