package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CarsCreated           uint64
	CarsUpdated           uint64
	CarsDeleted           uint64
	CarCacheHits          uint64
	CarCacheMisses        uint64
	ImagesUploaded        uint64
	ImageUploadsFailed    uint64
	ImagesDeleted         uint64
	UploadDurationCount   uint64
	UploadDurationTotalNs int64
	UserSignups           uint64
	UserLogins            uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	carsCreated           uint64
	carsUpdated           uint64
	carsDeleted           uint64
	carCacheHits          uint64
	carCacheMisses        uint64
	imagesUploaded        uint64
	imageUploadsFailed    uint64
	imagesDeleted         uint64
	uploadDurationCount   uint64
	uploadDurationTotalNs int64
	userSignups           uint64
	userLogins            uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		CarsCreated:           atomic.LoadUint64(&m.carsCreated),
		CarsUpdated:           atomic.LoadUint64(&m.carsUpdated),
		CarsDeleted:           atomic.LoadUint64(&m.carsDeleted),
		CarCacheHits:          atomic.LoadUint64(&m.carCacheHits),
		CarCacheMisses:        atomic.LoadUint64(&m.carCacheMisses),
		ImagesUploaded:        atomic.LoadUint64(&m.imagesUploaded),
		ImageUploadsFailed:    atomic.LoadUint64(&m.imageUploadsFailed),
		ImagesDeleted:         atomic.LoadUint64(&m.imagesDeleted),
		UploadDurationCount:   atomic.LoadUint64(&m.uploadDurationCount),
		UploadDurationTotalNs: atomic.LoadInt64(&m.uploadDurationTotalNs),
		UserSignups:           atomic.LoadUint64(&m.userSignups),
		UserLogins:            atomic.LoadUint64(&m.userLogins),
	}
}

// IncCarCreated increments the car created counter.
func (m *InMemoryRecorder) IncCarCreated() {
	atomic.AddUint64(&m.carsCreated, 1)
}

// IncCarUpdated increments the car updated counter.
func (m *InMemoryRecorder) IncCarUpdated() {
	atomic.AddUint64(&m.carsUpdated, 1)
}

// IncCarDeleted increments the car deleted counter.
func (m *InMemoryRecorder) IncCarDeleted() {
	atomic.AddUint64(&m.carsDeleted, 1)
}

// IncCarCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncCarCacheHit() {
	atomic.AddUint64(&m.carCacheHits, 1)
}

// IncCarCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncCarCacheMiss() {
	atomic.AddUint64(&m.carCacheMisses, 1)
}

// IncImageUploaded increments the image uploaded counter.
func (m *InMemoryRecorder) IncImageUploaded() {
	atomic.AddUint64(&m.imagesUploaded, 1)
}

// IncImageUploadFailed increments the failed upload counter.
func (m *InMemoryRecorder) IncImageUploadFailed() {
	atomic.AddUint64(&m.imageUploadsFailed, 1)
}

// IncImageDeleted increments the image deleted counter.
func (m *InMemoryRecorder) IncImageDeleted() {
	atomic.AddUint64(&m.imagesDeleted, 1)
}

// ObserveUploadDuration records the duration of an image batch upload.
func (m *InMemoryRecorder) ObserveUploadDuration(duration time.Duration) {
	atomic.AddUint64(&m.uploadDurationCount, 1)
	atomic.AddInt64(&m.uploadDurationTotalNs, duration.Nanoseconds())
}

// IncUserSignup increments the signup counter.
func (m *InMemoryRecorder) IncUserSignup() {
	atomic.AddUint64(&m.userSignups, 1)
}

// IncUserLogin increments the login counter.
func (m *InMemoryRecorder) IncUserLogin() {
	atomic.AddUint64(&m.userLogins, 1)
}
