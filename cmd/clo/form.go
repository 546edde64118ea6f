/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package main

import (
	"fmt"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/formstate"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/notify"
	"io"
)

// form drives a config form the same way the console does and prints its alerts to w.
type form struct {
	store    *formstate.Store
	notifier *notify.Notifier
	w        io.Writer
}

func newForm(w io.Writer) *form {
	n := notify.New()
	return &form{
		store:    formstate.NewStore(formstate.New(), n),
		notifier: n,
		w:        w,
	}
}

// run dispatches actions in order. It stops at the first action leaving an error on
// the log format, the regex or the sample, and returns that error.
func (f *form) run(actions ...formstate.Action) (formstate.State, error) {
	alerts, cancel := f.notifier.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		tag := lang()
		for a := range alerts {
			fmt.Fprintf(f.w, "[%s] %s\n", a.Level, a.Text(tag))
		}
	}()
	defer func() {
		cancel()
		<-done
	}()

	var st formstate.State
	for _, a := range actions {
		st = f.store.Dispatch(a)
		for _, field := range []formstate.Field{formstate.FieldLogFormat, formstate.FieldRegex, formstate.FieldSample} {
			if key := st.Errors[field]; key != "" {
				return st, i18n.NewError(key)
			}
		}
	}
	return st, nil
}
