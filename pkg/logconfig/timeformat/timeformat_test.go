/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package timeformat

import (
	"context"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestToLayout(t *testing.T) {
	cases := map[string]string{
		"%Y-%m-%d %H:%M:%S":    "2006-01-02 15:04:05",
		"%d/%b/%Y:%H:%M:%S %z": "02/Jan/2006:15:04:05 -0700",
		"%Y-%m-%dT%H:%M:%S.%f": "2006-01-02T15:04:05.000000",
		"%b %e %H:%M:%S":       "Jan _2 15:04:05",
		"%Y%m%d %I:%M %p %%":   "20060102 03:04 PM %",
	}
	for format, layout := range cases {
		l, epoch, err := ToLayout(format)
		assert.NoError(t, err, format)
		assert.False(t, epoch)
		assert.Equal(t, layout, l, format)
	}

	_, epoch, err := ToLayout("%s")
	assert.NoError(t, err)
	assert.True(t, epoch)

	_, _, err = ToLayout("%Q")
	assert.True(t, errors.Is(err, ErrUnsupportedDirective))
	_, _, err = ToLayout("%Y%")
	assert.True(t, errors.Is(err, ErrUnsupportedDirective))
}

func TestToLayoutAmbiguousLiteral(t *testing.T) {
	for _, format := range []string{
		"%Y-%m-%d 1%H",
		"Jan %d %Y",
		"%H:%M PM",
		"%d %b 2006",
		"at %H:%M pm",
		"MST %H:%M",
		"%H:%M Mon",
	} {
		_, _, err := ToLayout(format)
		assert.True(t, errors.Is(err, ErrAmbiguousLiteral), format)
	}

	c := &LocalChecker{}
	ok, err := c.CheckTimeFormat(context.Background(), "Jan 02 2023", "Jan %d %Y")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrAmbiguousLiteral))

	for _, format := range []string{"%Y-%m-%dT%H:%M:%SZ", "[%d/%b/%Y:%H:%M:%S]", "%H:%M %p UTC"} {
		_, _, err := ToLayout(format)
		assert.NoError(t, err, format)
	}
}

func TestFractionDigits(t *testing.T) {
	c := &LocalChecker{}
	ctx := context.Background()
	cases := []struct {
		value string
		ok    bool
	}{
		{"2023-06-15 16:24:11.1", true},
		{"2023-06-15 16:24:11.12", true},
		{"2023-06-15 16:24:11.123", true},
		{"2023-06-15 16:24:11.12345", true},
		{"2023-06-15 16:24:11.123456", true},
		{"2023-06-15 16:24:11.1234567", false},
		{"2023-06-15 16:24:11", false},
		{"2023-06-15 16:24:11.", false},
	}
	for _, x := range cases {
		ok, err := c.CheckTimeFormat(ctx, x.value, "%Y-%m-%d %H:%M:%S.%f")
		assert.NoError(t, err, x.value)
		assert.Equal(t, x.ok, ok, x.value)
	}

	ts, err := c.Parse("2023-06-15 16:24:11,12", "%Y-%m-%d %H:%M:%S,%f")
	require.NoError(t, err)
	assert.Equal(t, 120*time.Millisecond, time.Duration(ts.Nanosecond()))

	ok, err := c.CheckTimeFormat(ctx, "2023-06-15T16:24:11.5+08:00", "%Y-%m-%dT%H:%M:%S.%f%z")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestFromLayout(t *testing.T) {
	assert.Equal(t, "%Y-%m-%d %H:%M:%S", FromLayout("2006-01-02 15:04:05"))
	assert.Equal(t, "%Y-%m-%dT%H:%M:%S.%L%z", FromLayout("2006-01-02T15:04:05.000Z07:00"))
	assert.Equal(t, "%d/%b/%Y:%H:%M:%S %z", FromLayout("02/Jan/2006:15:04:05 -0700"))
	assert.Equal(t, "%a %b %e %H:%M:%S %Z %Y", FromLayout(time.UnixDate))
}

func TestLocalChecker(t *testing.T) {
	c := &LocalChecker{}
	ctx := context.Background()
	cases := []struct {
		value  string
		format string
		ok     bool
	}{
		{"2023-01-02 03:04:05", "%Y-%m-%d %H:%M:%S", true},
		{"2023-01-02 03:04:05", "%Y/%m/%d %H:%M:%S", false},
		{"10/Oct/2000:13:55:36 -0700", "%d/%b/%Y:%H:%M:%S %z", true},
		{"2023-06-15T16:24:11.123+07:00", "%Y-%m-%dT%H:%M:%S.%L%z", true},
		{"2023-06-15T16:24:11.123Z", "%Y-%m-%dT%H:%M:%S.%L%z", true},
		{"1668517987", "%s", true},
		{"16685x7987", "%s", false},
	}
	for _, x := range cases {
		ok, err := c.CheckTimeFormat(ctx, x.value, x.format)
		assert.NoError(t, err, x.value)
		assert.Equal(t, x.ok, ok, "%s %s", x.value, x.format)
	}

	_, err := c.CheckTimeFormat(ctx, "2023", "%Q")
	assert.Error(t, err)

	ts, err := c.Parse("2021-01-02 03:04:05", "%Y-%m-%d %H:%M:%S")
	require.NoError(t, err)
	assert.Equal(t, int64(1609556645000), ts.UnixMilli())
}

func TestDetect(t *testing.T) {
	cases := []struct {
		value  string
		format string
		offset int
	}{
		{"2021-01-02 03:04:05", "%Y-%m-%d %H:%M:%S", 0},
		{"2021-01-02 03:04:05,123", "%Y-%m-%d %H:%M:%S.%L", 0},
		{"[2021-01-02 03:04:05]", "%Y-%m-%d %H:%M:%S", 1},
		{"2023-06-15T16:24:11.123+07:00", "%Y-%m-%dT%H:%M:%S.%L%z", 0},
		{"10/Oct/2000:13:55:36 -0700", "%d/%b/%Y:%H:%M:%S %z", 0},
		{"1668517987", "%s", 0},
	}
	for _, c := range cases {
		d, ok := Detect(c.value)
		require.True(t, ok, c.value)
		assert.Equal(t, c.format, d.Format, c.value)
		assert.Equal(t, c.offset, d.Offset, c.value)
	}

	_, ok := Detect("no time here")
	assert.False(t, ok)
}

func TestDetectedFormatIsAccepted(t *testing.T) {
	c := &LocalChecker{}
	for _, v := range []string{"2021-01-02 03:04:05", "2023-06-15T16:24:11.123+07:00", "10/Oct/2000:13:55:36 -0700"} {
		d, ok := Detect(v)
		require.True(t, ok)
		valid, err := c.CheckTimeFormat(context.Background(), v, d.Format)
		assert.NoError(t, err)
		assert.True(t, valid, v)
	}
}

type countingChecker struct {
	calls   int32
	release chan struct{}
	answer  bool
	err     error
}

func (c *countingChecker) CheckTimeFormat(ctx context.Context, value, format string) (bool, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.release != nil {
		<-c.release
	}
	return c.answer, c.err
}

func TestValidator(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Valid, NewValidator(&countingChecker{answer: true}).Validate(ctx, "v", "f"))
	assert.Equal(t, Invalid, NewValidator(&countingChecker{answer: false}).Validate(ctx, "v", "f"))

	failing := &countingChecker{answer: true, err: errors.New("network down")}
	v := NewValidator(failing)
	assert.Equal(t, Invalid, v.Validate(ctx, "v", "f"))
	// no retry on failure
	assert.Equal(t, int32(1), atomic.LoadInt32(&failing.calls))

	assert.Equal(t, Invalid, v.Validate(ctx, "", "f"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&failing.calls))
}

func TestValidatorCollapsesConcurrentChecks(t *testing.T) {
	c := &countingChecker{answer: true, release: make(chan struct{})}
	v := NewValidator(c)

	var wg sync.WaitGroup
	results := make([]Status, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = v.Validate(context.Background(), "2023", "%Y")
		}(i)
	}
	// give the goroutines time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(c.release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, Valid, r)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&c.calls), int32(4))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&c.calls), int32(1))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "UNCHECKED", Unchecked.String())
	assert.Equal(t, "VALID", Valid.String())
	assert.Equal(t, "INVALID", Invalid.String())
}
