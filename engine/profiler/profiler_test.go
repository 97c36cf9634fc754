package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestTickReportsAtInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var lines []string
	p := NewProfiler(
		WithClock(clock.now),
		WithInterval(time.Second),
		WithLogf(func(format string, args ...any) { lines = append(lines, format) }),
	)

	for range 29 {
		clock.t = clock.t.Add(time.Second / 60)
		assert.False(t, p.Tick())
	}
	_, ok := p.Last()
	assert.False(t, ok)

	p.RecordSkipped()
	clock.t = clock.t.Add(time.Second)
	assert.True(t, p.Tick())

	s, ok := p.Last()
	require.True(t, ok)
	assert.Greater(t, s.FPS, 0.0)
	assert.Equal(t, 1, s.SkippedFrame)
	assert.Greater(t, s.HeapMB, 0.0)
	assert.Len(t, lines, 1)

	clock.t = clock.t.Add(2 * time.Second)
	assert.True(t, p.Tick())
	s, _ = p.Last()
	assert.Equal(t, 0, s.SkippedFrame)
}

func TestWithoutProcessStats(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithoutProcessStats(), WithLogf(func(string, ...any) {}))
	clock.t = clock.t.Add(time.Second)
	require.True(t, p.Tick())
	s, _ := p.Last()
	assert.Equal(t, 0.0, s.CPUPercent)
	assert.Equal(t, 0.0, s.RSSMB)
}
