// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Car management metrics
	IncCarCreated()
	IncCarUpdated()
	IncCarDeleted()
	IncCarCacheHit()
	IncCarCacheMiss()

	// Media store metrics
	IncImageUploaded()
	IncImageUploadFailed()
	IncImageDeleted()
	ObserveUploadDuration(duration time.Duration)

	// Account metrics
	IncUserSignup()
	IncUserLogin()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
