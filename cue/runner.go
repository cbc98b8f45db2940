package cue

import (
	"sync"
	"time"
)

// Runner performs the work behind a cue. Start must arrange for done to be
// called exactly once when the execution reaches its end; done may be called
// from any goroutine, and calls after Stop are ignored by the cue.
type Runner interface {
	Start(c *Cue, done func())
	Stop(c *Cue)
	Pause(c *Cue)
	Resume(c *Cue)
}

// Instant completes as soon as it is started. Memo cues and cues without a
// dedicated runner use it.
type Instant struct{}

func (Instant) Start(_ *Cue, done func()) { done() }
func (Instant) Stop(*Cue)                 {}
func (Instant) Pause(*Cue)                {}
func (Instant) Resume(*Cue)               {}

// Timed completes after preWait + duration + postWait seconds. It supports
// pause and resume and can be shared between cues.
type Timed struct {
	mu   sync.Mutex
	runs map[*Cue]*timedRun
}

type timedRun struct {
	timer     *time.Timer
	startedAt time.Time
	remaining time.Duration
	done      func()
}

// NewTimed creates a timer-backed runner
func NewTimed() *Timed {
	return &Timed{runs: make(map[*Cue]*timedRun)}
}

// Length returns the total wall time an execution of c takes.
func (t *Timed) Length(c *Cue) time.Duration {
	p := c.Properties()
	seconds := p.Float(PropPreWait) + p.Float(PropDuration) + p.Float(PropPostWait)
	return time.Duration(seconds * float64(time.Second))
}

func (t *Timed) Start(c *Cue, done func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if run, ok := t.runs[c]; ok {
		run.timer.Stop()
	}
	run := &timedRun{remaining: t.Length(c), done: done}
	t.runs[c] = run
	t.arm(c, run)
}

func (t *Timed) Stop(c *Cue) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if run, ok := t.runs[c]; ok {
		run.timer.Stop()
		delete(t.runs, c)
	}
}

func (t *Timed) Pause(c *Cue) {
	t.mu.Lock()
	defer t.mu.Unlock()

	run, ok := t.runs[c]
	if !ok || !run.timer.Stop() {
		return
	}
	run.remaining -= time.Since(run.startedAt)
	if run.remaining < 0 {
		run.remaining = 0
	}
}

func (t *Timed) Resume(c *Cue) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if run, ok := t.runs[c]; ok {
		t.arm(c, run)
	}
}

// arm must be called with t.mu held.
func (t *Timed) arm(c *Cue, run *timedRun) {
	run.startedAt = time.Now()
	run.timer = time.AfterFunc(run.remaining, func() {
		t.mu.Lock()
		if t.runs[c] != run {
			t.mu.Unlock()
			return
		}
		delete(t.runs, c)
		t.mu.Unlock()
		run.done()
	})
}

// Active returns the number of executions still in flight
func (t *Timed) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.runs)
}
