// FILE: lixenwraith/sinklog/constant.go
package sinklog

import (
	"time"

	"github.com/lixenwraith/sinklog/record"
)

// Default levels, re-exported for callers that only import the root package
var (
	LevelTrace    = record.LevelTrace
	LevelDebug    = record.LevelDebug
	LevelInfo     = record.LevelInfo
	LevelSuccess  = record.LevelSuccess
	LevelWarning  = record.LevelWarning
	LevelError    = record.LevelError
	LevelCritical = record.LevelCritical
)

// Storage
const (
	// Archive timestamp layout, lexically sortable with millisecond precision
	archiveTimeLayout = "2006-01-02T15-04-05.000"
	// Upper bound of the collision counter appended to archive names
	maxArchiveCollisions = 999
	// File modes for active files and their directory
	fileMode = 0644
	dirMode  = 0755
)

// Timers
const (
	// Default bound on waiting for background work during Close
	defaultDrainTimeout = 30 * time.Second
	// Default fsync period for interval durability
	defaultFlushInterval = time.Second
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Interval between reports of records dropped by an async sink
	dropReportInterval = 5 * time.Second
)
