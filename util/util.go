// Package util defines small shared helpers for the hardware exporter.
package util

import (
	"os"
	"strings"
)

var hostname string

// InitHostname resolves the host identity used to tag every exported record.
// A non-empty custom value overrides the system hostname. The name is
// truncated at the first dot and lowercased, matching scrape-target identity.
func InitHostname(custom string) error {
	h := custom
	if h == "" {
		var err error
		h, err = os.Hostname()
		if err != nil {
			return err
		}
	}
	if i := strings.Index(h, "."); i >= 0 {
		h = h[:i]
	}
	hostname = strings.ToLower(h)
	return nil
}

// Hostname returns the resolved host identity, or "unknown" before
// InitHostname has run successfully.
func Hostname() string {
	if hostname == "" {
		return "unknown"
	}
	return hostname
}

// Btoi converts a bool to the 0/1 convention used by status metrics.
func Btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
