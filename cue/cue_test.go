package cue

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestKindIs(t *testing.T) {
	tests := []struct {
		kind     Kind
		ancestor Kind
		want     bool
	}{
		{KindAudio, KindAudio, true},
		{KindAudio, KindMedia, true},
		{KindAudio, KindCue, true},
		{KindAudio, KindVideo, false},
		{KindLight, KindMedia, false},
		{KindMedia, KindAudio, false},
		{KindCue, KindCue, true},
		{Kind(99), KindCue, true},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"_is_"+tt.ancestor.String(), func(t *testing.T) {
			if got := tt.kind.Is(tt.ancestor); got != tt.want {
				t.Errorf("%v.Is(%v) = %v, want %v", tt.kind, tt.ancestor, got, tt.want)
			}
		})
	}
}

func TestCommonKind(t *testing.T) {
	tests := []struct {
		name  string
		kinds []Kind
		want  Kind
	}{
		{name: "no kinds", kinds: nil, want: KindCue},
		{name: "single kind", kinds: []Kind{KindVideo}, want: KindVideo},
		{name: "same kind", kinds: []Kind{KindAudio, KindAudio}, want: KindAudio},
		{name: "siblings share parent", kinds: []Kind{KindAudio, KindVideo}, want: KindMedia},
		{name: "parent and child", kinds: []Kind{KindMedia, KindAudio}, want: KindMedia},
		{name: "child then parent", kinds: []Kind{KindAudio, KindMedia}, want: KindMedia},
		{name: "unrelated branches", kinds: []Kind{KindAudio, KindLight}, want: KindCue},
		{name: "mixed three", kinds: []Kind{KindAudio, KindVideo, KindMemo}, want: KindCue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommonKind(tt.kinds...); got != tt.want {
				t.Errorf("CommonKind(%v) = %v, want %v", tt.kinds, got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}

	if _, err := ParseKind("hologram"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestFieldsIncludeInheritedFirst(t *testing.T) {
	fields := Fields(KindAudio)

	var keys []string
	for _, f := range fields {
		keys = append(keys, f.Key)
	}

	want := []string{
		PropName, PropNumber, PropNotes, PropPreWait, PropPostWait, PropDuration,
		PropFileTarget, PropFadeIn, PropFadeOut,
		PropVolume,
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("audio fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteFiresNextOncePerExecution(t *testing.T) {
	c := New(KindMemo, Properties{PropName: "Memo"})
	fired := 0
	c.Next.Connect(func(*Cue) { fired++ })

	c.Execute(ActionDefault)
	c.Execute(ActionStart)

	if fired != 2 {
		t.Errorf("expected Next to fire twice, fired %d times", fired)
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle after instant completion, got %v", c.State())
	}
}

// manualRunner lets a test decide when an execution ends.
type manualRunner struct {
	done    []func()
	stopped int
}

func (r *manualRunner) Start(_ *Cue, done func()) { r.done = append(r.done, done) }
func (r *manualRunner) Stop(*Cue)                 { r.stopped++ }
func (r *manualRunner) Pause(*Cue)                {}
func (r *manualRunner) Resume(*Cue)               {}

func TestStoppedExecutionDoesNotFireNext(t *testing.T) {
	runner := &manualRunner{}
	c := New(KindAudio, nil)
	c.SetRunner(runner)
	fired := 0
	c.Next.Connect(func(*Cue) { fired++ })

	c.Execute(ActionStart)
	if c.State() != StateRunning {
		t.Fatalf("expected running, got %v", c.State())
	}
	c.Execute(ActionStop)
	runner.done[0]()

	if fired != 0 {
		t.Errorf("stale completion fired Next %d times", fired)
	}
	if runner.stopped != 1 {
		t.Errorf("expected runner stop once, got %d", runner.stopped)
	}
	if c.State() != StateStopped {
		t.Errorf("expected stopped, got %v", c.State())
	}
}

func TestRestartDropsEarlierCompletion(t *testing.T) {
	runner := &manualRunner{}
	c := New(KindAudio, nil)
	c.SetRunner(runner)
	fired := 0
	c.Next.Connect(func(*Cue) { fired++ })

	c.Execute(ActionStart)
	c.Execute(ActionStart)
	runner.done[0]()
	if fired != 0 {
		t.Fatalf("completion of the first execution should be dropped")
	}
	runner.done[1]()
	runner.done[1]()
	if fired != 1 {
		t.Errorf("expected one completion, got %d", fired)
	}
}

func TestPauseResumeTransitions(t *testing.T) {
	c := New(KindAudio, nil)
	c.SetRunner(&manualRunner{})

	c.Execute(ActionPause)
	if c.State() != StateIdle {
		t.Fatalf("pause on idle cue should be ignored, got %v", c.State())
	}

	c.Execute(ActionStart)
	c.Execute(ActionPause)
	if c.State() != StatePaused {
		t.Fatalf("expected paused, got %v", c.State())
	}
	c.Execute(ActionResume)
	if c.State() != StateRunning {
		t.Fatalf("expected running, got %v", c.State())
	}
	c.Execute(ActionInterrupt)
	if c.State() != StateStopped {
		t.Fatalf("expected stopped, got %v", c.State())
	}
}

func TestCompletionDuringPauseFinishes(t *testing.T) {
	runner := &manualRunner{}
	c := New(KindAudio, nil)
	c.SetRunner(runner)
	fired := 0
	c.Next.Connect(func(*Cue) { fired++ })

	c.Execute(ActionStart)
	c.Execute(ActionPause)
	// The runner was already done when the pause arrived.
	runner.done[0]()

	if fired != 1 {
		t.Errorf("expected Next once, got %d", fired)
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %v", c.State())
	}
	c.Execute(ActionResume)
	if c.State() != StateIdle {
		t.Errorf("resume after completion should be ignored, got %v", c.State())
	}
}

func TestTimedRunnerCompletes(t *testing.T) {
	runner := NewTimed()
	c := New(KindAudio, Properties{PropDuration: 0.01})
	c.SetRunner(runner)

	finished := make(chan struct{}, 1)
	c.Next.Connect(func(*Cue) { finished <- struct{}{} })

	c.Execute(ActionStart)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("timed cue never finished")
	}
	if runner.Active() != 0 {
		t.Errorf("expected no active runs, got %d", runner.Active())
	}
}

func TestTimedRunnerStop(t *testing.T) {
	runner := NewTimed()
	c := New(KindAudio, Properties{PropDuration: 30.0})
	c.SetRunner(runner)

	c.Execute(ActionStart)
	if runner.Active() != 1 {
		t.Fatalf("expected one active run, got %d", runner.Active())
	}
	c.Execute(ActionStop)
	if runner.Active() != 0 {
		t.Errorf("expected stop to cancel the run, got %d active", runner.Active())
	}
}

func TestPropertiesAccessors(t *testing.T) {
	p := Properties{
		PropName:     "Intro",
		PropDuration: 2,
		"flag":       true,
	}

	if p.String(PropName) != "Intro" {
		t.Errorf("unexpected name %q", p.String(PropName))
	}
	if p.Float(PropDuration) != 2 {
		t.Errorf("unexpected duration %v", p.Float(PropDuration))
	}
	if !p.Bool("flag") {
		t.Error("expected flag true")
	}
	if p.String(PropDuration) != "" {
		t.Error("non-string property should read as empty string")
	}

	c := New(KindMemo, p)
	p[PropName] = "changed"
	if c.Name() != "Intro" {
		t.Errorf("cue should keep its own copy of properties, got %q", c.Name())
	}
}
