/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package timeformat

import (
	"context"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"golang.org/x/sync/singleflight"
	"strconv"
)

type (
	// Validator turns checker answers into a Status.
	// Identical checks issued while one is in flight share its answer.
	Validator struct {
		checker Checker
		group   singleflight.Group
	}
)

func NewValidator(checker Checker) *Validator {
	return &Validator{checker: checker}
}

// Validate never retries. A failed call counts as Invalid and the user has to trigger it again.
func (v *Validator) Validate(ctx context.Context, value, format string) Status {
	if value == "" || format == "" {
		return Invalid
	}
	key := strconv.Quote(value) + "|" + strconv.Quote(format)
	ret, err, _ := v.group.Do(key, func() (interface{}, error) {
		return v.checker.CheckTimeFormat(ctx, value, format)
	})
	if err != nil {
		logger.Warnw("[timeformat] check error", "value", value, "format", format, "err", err)
		return Invalid
	}
	if ok, _ := ret.(bool); ok {
		return Valid
	}
	return Invalid
}
