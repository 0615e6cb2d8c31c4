package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCarCreated is a no-op.
func (n *NoopRecorder) IncCarCreated() {}

// IncCarUpdated is a no-op.
func (n *NoopRecorder) IncCarUpdated() {}

// IncCarDeleted is a no-op.
func (n *NoopRecorder) IncCarDeleted() {}

// IncCarCacheHit is a no-op.
func (n *NoopRecorder) IncCarCacheHit() {}

// IncCarCacheMiss is a no-op.
func (n *NoopRecorder) IncCarCacheMiss() {}

// IncImageUploaded is a no-op.
func (n *NoopRecorder) IncImageUploaded() {}

// IncImageUploadFailed is a no-op.
func (n *NoopRecorder) IncImageUploadFailed() {}

// IncImageDeleted is a no-op.
func (n *NoopRecorder) IncImageDeleted() {}

// ObserveUploadDuration is a no-op.
func (n *NoopRecorder) ObserveUploadDuration(duration time.Duration) {}

// IncUserSignup is a no-op.
func (n *NoopRecorder) IncUserSignup() {}

// IncUserLogin is a no-op.
func (n *NoopRecorder) IncUserLogin() {}
