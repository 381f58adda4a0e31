// Package timeouts provides centralized timeout values for handler operations.
//
// These are used with context.WithTimeout around database operations and
// other I/O in HTTP handlers. Centralizing the values keeps handlers
// consistent and makes adjustment a one-line change.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: simple single-document reads or lookups
//   - Medium: list queries, moderate writes, multi-step reads
//   - Long: operations touching multiple documents (sign-in reconciliation,
//     membership synchronization)
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for health checks and connectivity verification.
func Ping() time.Duration { return ping }

// Short returns the timeout for simple operations like single-document reads.
func Short() time.Duration { return short }

// Medium returns the timeout for moderate operations like list queries.
func Medium() time.Duration { return medium }

// Long returns the timeout for multi-step operations that issue several
// sequential store writes.
func Long() time.Duration { return long }
