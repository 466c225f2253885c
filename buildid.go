// buildid.go - BUILD_ID register value (static build timestamp)

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

package main

import "strconv"

// Default BUILD_ID: 2026-01-01 00:00:00 UTC. The versioning step overrides
// it at link time:
//
//	go build -ldflags "-X main.buildTimestamp=$(date +%s)"
const defaultBuildID = 1767225600

// buildTimestamp is injected via ldflags as a decimal Unix timestamp.
var buildTimestamp string

// BuildID returns the static timestamp exposed by the BUILD_ID register.
// It is fixed for the lifetime of the binary and survives peripheral reset.
func BuildID() uint32 {
	if buildTimestamp != "" {
		if v, err := strconv.ParseUint(buildTimestamp, 10, 32); err == nil {
			return uint32(v)
		}
	}
	return defaultBuildID
}
