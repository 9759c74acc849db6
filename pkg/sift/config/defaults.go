// Package config loads sift settings from file, environment and flags.
package config

import "time"

// Defaults.
const (
	DefaultPath          = "."
	DefaultAlgorithm     = "sha512"
	DefaultFormat        = "pretty"
	DefaultRetentionDays = 90
	EnvPrefix            = "SIFT"
	appName              = "sift"

	// DefaultBusyTimeout is how long an index write waits on a locked database.
	DefaultBusyTimeout = 5 * time.Second
)

// DefaultSkip lists relative paths pruned from every walk.
var DefaultSkip = []string{}
