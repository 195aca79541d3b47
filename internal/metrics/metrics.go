package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Process-wide counters reported by the health endpoint.
var (
	ListingsAssembled  Counter
	ImageLookups       Counter
	ImagesStored       Counter
	ImagesServed       Counter
	ImageBytesServed   Counter
	ImageUploadsFailed Counter
	EventsPublished    Counter
	EventsFailed       Counter
)

// Snapshot returns the current counter values keyed by name.
func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"listings_assembled":   ListingsAssembled.Load(),
		"image_lookups":        ImageLookups.Load(),
		"images_stored":        ImagesStored.Load(),
		"images_served":        ImagesServed.Load(),
		"image_bytes_served":   ImageBytesServed.Load(),
		"image_uploads_failed": ImageUploadsFailed.Load(),
		"events_published":     EventsPublished.Load(),
		"events_failed":        EventsFailed.Load(),
	}
}
