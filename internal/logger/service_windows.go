//go:build windows

package logger

import "os"

// IsService reports whether the process runs without an attached console,
// e.g. from Task Scheduler or as a windowless build.
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}

	return os.Getenv("SERVICE_NAME") != ""
}
