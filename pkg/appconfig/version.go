/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package appconfig

import (
	"runtime"
	"time"
)

// set by -ldflags at build time
var (
	version   string
	buildTime string
	gitcommit string
)

var uptime = time.Now()

func VersionInfo() map[string]interface{} {
	return map[string]interface{}{
		"goversion": runtime.Version(),
		"version":   version,
		"buildTime": buildTime,
		"commit":    gitcommit,
		"uptime":    uptime.Format(time.RFC3339),
	}
}
