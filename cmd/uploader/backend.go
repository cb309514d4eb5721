package main

import (
	"sync"
	"time"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

// sampleWindows mirrors the default rolling windows (seconds) tracked for
// short/medium/long-term averaging: 10s, 60s, 5m, 1h.
var sampleWindows = [4]int{10, 60, 300, 3600}

// backend accumulates rolling CPS averages and the most recent
// battery/conversion readings behind a mutex, fed by a session's status and
// query callbacks and polled by the console and push uploaders.
type backend struct {
	mu sync.Mutex

	lastUpdate time.Time
	conversion *uint32
	battery    *float64

	averages [4]*radalert.FIRFilter
}

func newBackend() *backend {
	b := &backend{}
	for i, window := range sampleWindows {
		b.averages[i] = radalert.NewFIRFilterWithReducer(window, radalert.Sum)
	}
	return b
}

// onStatus feeds a decoded status record into the rolling averages. It
// accepts radalert.Status so it works for either BLE or HID sessions.
func (b *backend) onStatus(s radalert.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastUpdate = time.Now()
	cps := float64(s.CPS())
	for _, f := range b.averages {
		f.Push(cps)
	}
	if pct, ok := s.BatteryPercent(); ok {
		b.battery = &pct
	}
}

// onQuery records the calibration conversion factor (CPM per mR/h) from an
// on-demand query response.
func (b *backend) onQuery(q radalert.Query) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv := q.ConversionFactor()
	b.conversion = &conv
}

// cpmEstimate reports the rolling counts-per-minute estimate for the given
// window index, scaled from the windowed sum of per-second counts.
func (b *backend) cpmEstimate(window int) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := b.averages[window]
	if f.Len() == 0 {
		return 0, false
	}
	return f.Value() / float64(f.Len()) * 60, true
}

// stale reports whether no status update has arrived within maxAge.
func (b *backend) stale(maxAge time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUpdate.IsZero() || time.Since(b.lastUpdate) > maxAge
}

// lastUpdateTime returns the timestamp of the most recent status update, or
// the zero time if none has arrived yet.
func (b *backend) lastUpdateTime() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUpdate
}

func (b *backend) snapshot() (battery *float64, conversion *uint32, cpm10, cpm60, cpm300, cpm3600 float64, ok [4]bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	battery, conversion = b.battery, b.conversion
	values := [4]*float64{&cpm10, &cpm60, &cpm300, &cpm3600}
	for i, f := range b.averages {
		if f.Len() == 0 {
			continue
		}
		*values[i] = f.Value() / float64(f.Len()) * 60
		ok[i] = true
	}
	return
}
