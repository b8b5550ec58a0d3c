package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsCountsEvictedEntries(t *testing.T) {
	d := NewDiagnostics(2)
	d.Warn("test", nil, "first")
	d.Warn("test", ErrResourceLibraryNotFound, "second %d", 2)
	d.Warn("test", nil, "third")

	assert.Equal(t, 3, d.Count())
	entries := d.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "second 2", entries[0].Message)
	assert.True(t, errors.Is(entries[0].Err, ErrResourceLibraryNotFound))
	assert.Equal(t, SeverityWarning, entries[1].Severity)
}

func TestIdentifierIsDeterministic(t *testing.T) {
	assert.Equal(t, uint32(151), IdentifierFeatureSeed(0))
	assert.Equal(t, IdentifierFeatureSeed(42), IdentifierFeatureSeed(42))
	assert.Equal(t, IdentifierFromParts("walls", "brick"), IdentifierFromParts("walls", "brick"))
	assert.NotEqual(t, IdentifierFromParts("walls", "brick"), IdentifierFromParts("roofs", "brick"))
	assert.NotEqual(t, IdentifierNew(), IdentifierNew())
}

func TestMetricsRollingAverage(t *testing.T) {
	m := NewMetrics()
	m.Record(PassStats{Features: 2, Triangles: 8, Elapsed: 10 * time.Millisecond})
	m.Record(PassStats{Features: 1, Triangles: 4, Elapsed: 20 * time.Millisecond})

	assert.InDelta(t, 15.0, m.PassTime(), 1e-9)
	passes, totals := m.Snapshot()
	assert.Equal(t, 2, passes)
	assert.Equal(t, 3, totals.Features)
	assert.Equal(t, 12, totals.Triangles)
}

func TestEventFireStopsAtFirstHandler(t *testing.T) {
	require.True(t, EventInitialize())
	defer EventShutdown()

	var calls []string
	first, second := "first", "second"
	require.True(t, EventRegister(EVENT_CODE_ASSETS_CHANGED, first, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, fmt.Sprint(listener, ":", data.Data.C[0]))
		return true
	}))
	require.True(t, EventRegister(EVENT_CODE_ASSETS_CHANGED, second, func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		calls = append(calls, "second")
		return false
	}))
	assert.False(t, EventRegister(EVENT_CODE_ASSETS_CHANGED, first, func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }))

	ctx := EventContext{}
	ctx.Data.C[0] = "styles.toml"
	assert.True(t, EventFire(EVENT_CODE_ASSETS_CHANGED, nil, ctx))
	assert.Equal(t, []string{"first:styles.toml"}, calls)

	assert.True(t, EventUnregister(EVENT_CODE_ASSETS_CHANGED, first))
	assert.False(t, EventFire(EVENT_CODE_ASSETS_CHANGED, nil, ctx))
	assert.Equal(t, []string{"first:styles.toml", "second"}, calls)
}

func TestSetLogLevel(t *testing.T) {
	assert.NoError(t, SetLogLevel("debug"))
	assert.Error(t, SetLogLevel("loud"))
	assert.NoError(t, SetLogLevel("info"))
}
