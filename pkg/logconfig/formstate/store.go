/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package formstate

import (
	"context"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/notify"
	"sync"
)

type (
	// Store serializes actions on one form and hands every new state to its listeners.
	// Listeners run on the dispatching goroutine and must not dispatch themselves.
	Store struct {
		dispatchMu sync.Mutex
		mu         sync.RWMutex
		state      State
		listeners  map[int]func(State)
		nextID     int
		notifier   *notify.Notifier
	}
)

// NewStore returns a store starting at initial. notifier may be nil.
func NewStore(initial State, notifier *notify.Notifier) *Store {
	return &Store{
		state:     initial,
		listeners: make(map[int]func(State)),
		notifier:  notifier,
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn and returns a func removing it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next := Reduce(s.state, a)
	s.state = next
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if logger.IsDebugEnabled() {
		logger.Debugw("[formstate] dispatch", "action", a.actionName(), "canSave", next.CanSave)
	}
	s.alert(a, next)
	for _, fn := range listeners {
		fn(next)
	}
	return next
}

func (s *Store) alert(a Action, next State) {
	if s.notifier == nil {
		return
	}
	switch a := a.(type) {
	case ParseSample:
		if key := next.Errors[FieldSample]; key != "" {
			s.notifier.Error(key, "")
		} else if next.Parsed {
			s.notifier.Success(i18n.ParseSuccess)
		}
	case TimeFormatCheckFinished:
		if a.Status == timeformat.Invalid && next.TimeCheckOf(a.Key).Status == timeformat.Invalid {
			s.notifier.Error(i18n.TimeFormatInvalid, a.Value)
		}
	}
}

// CheckTimeFormat runs the remote check of field key through v and feeds the outcome back into store.
// It returns the resulting status of the field.
func CheckTimeFormat(ctx context.Context, store *Store, v *timeformat.Validator, key string) timeformat.Status {
	cur := store.State()
	value, format, ok := cur.TimeSample(key)
	if !ok || format == "" {
		return cur.TimeCheckOf(key).Status
	}
	store.Dispatch(TimeFormatCheckStarted{Key: key})
	status := v.Validate(ctx, value, format)
	next := store.Dispatch(TimeFormatCheckFinished{Key: key, Value: value, Format: format, Status: status})
	return next.TimeCheckOf(key).Status
}
