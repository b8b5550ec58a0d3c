package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// PassStats are the counters produced by one extrusion pass.
type PassStats struct {
	Features  int
	Parts     int
	Triangles int
	Drawables int
	Elapsed   time.Duration
}

type MetricsState struct {
	mutex          sync.Mutex
	PassAVGCounter uint8
	MStimes        [AVG_COUNT]float64
	MSavg          float64
	Passes         int
	Totals         PassStats
}

// NewMetrics creates an empty metrics state.
func NewMetrics() *MetricsState {
	return &MetricsState{}
}

// Record adds the stats of one pass and updates the rolling average of pass time.
func (ms *MetricsState) Record(stats PassStats) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	passMS := float64(stats.Elapsed.Microseconds()) / 1000.0
	ms.MStimes[ms.PassAVGCounter] = passMS
	ms.Passes++

	// Average over the samples gathered so far until the window fills up.
	samples := int(AVG_COUNT)
	if ms.Passes < samples {
		samples = ms.Passes
	}
	sum := 0.0
	for i := 0; i < samples; i++ {
		sum += ms.MStimes[i]
	}
	ms.MSavg = sum / float64(samples)

	ms.PassAVGCounter++
	ms.PassAVGCounter %= AVG_COUNT

	ms.Totals.Features += stats.Features
	ms.Totals.Parts += stats.Parts
	ms.Totals.Triangles += stats.Triangles
	ms.Totals.Drawables += stats.Drawables
	ms.Totals.Elapsed += stats.Elapsed
}

// PassTime returns the rolling average pass time in milliseconds.
func (ms *MetricsState) PassTime() float64 {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	return ms.MSavg
}

func (ms *MetricsState) Snapshot() (int, PassStats) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	return ms.Passes, ms.Totals
}
