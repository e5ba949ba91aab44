package alarm

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newFastScheduler() *Scheduler {
	s := NewScheduler()
	s.tick = 10 * time.Millisecond
	return s
}

func TestSchedulerRunsJobsOnTheirOwnIntervals(t *testing.T) {
	var fast, slow int64

	s := newFastScheduler()
	s.Every(30*time.Millisecond, "fast", func() { atomic.AddInt64(&fast, 1) })
	s.Every(120*time.Millisecond, "slow", func() { atomic.AddInt64(&slow, 1) })
	s.Start()

	time.Sleep(300 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt64(&fast), int64(3))
	assert.GreaterOrEqual(t, atomic.LoadInt64(&slow), int64(1))
	assert.Greater(t, atomic.LoadInt64(&fast), atomic.LoadInt64(&slow))
}

func TestSchedulerIsolatesPanickingJob(t *testing.T) {
	var healthy int64

	s := newFastScheduler()
	s.Every(30*time.Millisecond, "panicky", func() { panic("boom") })
	s.Every(30*time.Millisecond, "healthy", func() { atomic.AddInt64(&healthy, 1) })
	s.Start()

	time.Sleep(200 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt64(&healthy), int64(3))
}

func TestSchedulerSkipsOverlappingInvocations(t *testing.T) {
	var running, maxRunning int64

	s := newFastScheduler()
	s.Every(20*time.Millisecond, "slow_sweep", func() {
		now := atomic.AddInt64(&running, 1)
		for {
			seen := atomic.LoadInt64(&maxRunning)
			if now <= seen || atomic.CompareAndSwapInt64(&maxRunning, seen, now) {
				break
			}
		}
		time.Sleep(80 * time.Millisecond)
		atomic.AddInt64(&running, -1)
	})
	s.Start()

	time.Sleep(300 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int64(1), atomic.LoadInt64(&maxRunning))
}

func TestSchedulerStopWaitsForInFlightJob(t *testing.T) {
	var done int64

	s := newFastScheduler()
	s.Every(20*time.Millisecond, "job", func() {
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt64(&done, 1)
	})
	s.Start()

	time.Sleep(40 * time.Millisecond)
	s.Stop()

	// Stop returned, so the started invocation ran to completion
	assert.GreaterOrEqual(t, atomic.LoadInt64(&done), int64(1))
}
