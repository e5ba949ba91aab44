package alarm

import (
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Job is one periodic sweep owned by the Scheduler.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func()

	// held for the duration of one invocation; a due invocation that cannot
	// take it is skipped, so a sweep never overlaps itself and the tick
	// recency-window assumption holds
	mu      sync.Mutex
	nextRun time.Time
}

// Scheduler drives the registered jobs from one cooperative loop, checking
// due jobs once per second. Job bodies run in their own goroutine so a slow
// sweep does not delay the other job's due check.
type Scheduler struct {
	jobs []*Job
	tick time.Duration
	stop chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		tick: time.Second,
		stop: make(chan struct{}),
	}
}

// Every registers a job to run each interval. Must be called before Start.
func (s *Scheduler) Every(interval time.Duration, name string, run func()) {
	s.jobs = append(s.jobs, &Job{
		Name:     name,
		Interval: interval,
		Run:      run,
		nextRun:  time.Now().Add(interval),
	})
}

// Start launches the loop. It returns immediately; the loop runs until Stop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case now := <-ticker.C:
				s.runPending(now)
			}
		}
	}()
}

// Stop ends the loop and waits for in-flight job invocations to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Scheduler) runPending(now time.Time) {
	for _, job := range s.jobs {
		if now.Before(job.nextRun) {
			continue
		}
		job.nextRun = now.Add(job.Interval)

		s.wg.Add(1)
		go func(j *Job) {
			defer s.wg.Done()
			s.invoke(j)
		}(job)
	}
}

func (s *Scheduler) invoke(j *Job) {
	if !j.mu.TryLock() {
		sweepsSkipped.WithLabelValues(j.Name).Inc()
		log.Warnf("job %s still running, skipping this invocation", j.Name)
		return
	}
	defer j.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 4096)
			stackSize := runtime.Stack(stackBuf, false)
			log.Errorf("recovered from panic in job %s: %v\n%s", j.Name, r, stackBuf[:stackSize])
		}
	}()

	j.Run()
}
