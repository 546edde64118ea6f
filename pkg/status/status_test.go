/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package status

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestLookup(t *testing.T) {
	assert.Equal(t, Display{IconSuccess, "Active"}, Lookup("active"))
	assert.Equal(t, Display{IconError, "Failed"}, Lookup(" FAILED "))
	assert.Equal(t, Display{IconPending, "Validating"}, Lookup("Validating"))
	assert.Equal(t, Display{IconInfo, "Sleeping"}, Lookup("Sleeping"))
}
