package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/zenibako/cueplayer/action"
	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"
	"github.com/zenibako/cueplayer/layout"
	"github.com/zenibako/cueplayer/model"

	"github.com/charmbracelet/huh"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedPrompter answers prompts from fixed lists.
type scriptedPrompter struct {
	mu       sync.Mutex
	commands []Command
	indices  []int
	kinds    []cue.Kind
}

func (p *scriptedPrompter) Command(context.Context) (Command, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.commands) == 0 {
		return "", huh.ErrUserAborted
	}
	cmd := p.commands[0]
	p.commands = p.commands[1:]
	return cmd, nil
}

func (p *scriptedPrompter) Index(context.Context, string, int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.indices) == 0 {
		return 0, huh.ErrUserAborted
	}
	i := p.indices[0]
	p.indices = p.indices[1:]
	return i, nil
}

func (p *scriptedPrompter) Kind(context.Context) (cue.Kind, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.kinds) == 0 {
		return cue.KindCue, huh.ErrUserAborted
	}
	k := p.kinds[0]
	p.kinds = p.kinds[1:]
	return k, nil
}

type consoleFixture struct {
	console *Console
	layout  *layout.ListLayout
	queue   *dispatch.Queue
	history *action.Handler
	prompt  *scriptedPrompter
	out     *bytes.Buffer
	cues    []*cue.Cue
	ctx     context.Context
}

func newConsole(t *testing.T, editor layout.Editor, names ...string) *consoleFixture {
	t.Helper()

	list := model.New()
	timed := cue.NewTimed()
	var cues []*cue.Cue
	for _, n := range names {
		c := cue.NewWithID(n, cue.KindAudio, cue.Properties{cue.PropName: n, cue.PropDuration: 3600.0})
		c.SetRunner(timed)
		cues = append(cues, c)
		_ = list.Add(c)
	}

	q := dispatch.NewQueue()
	history := action.NewHandler(0)
	l := layout.NewListLayout(list, q, layout.Options{
		Policy:        layout.DefaultPolicy(),
		GoKey:         "space",
		SelectionMode: true,
		Editor:        editor,
		Actions:       history,
	})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = q.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
		for _, c := range list.Items() {
			c.Execute(cue.ActionStop)
		}
	})

	prompt := &scriptedPrompter{}
	out := &bytes.Buffer{}
	return &consoleFixture{
		console: New(l, q, Options{Out: out, Prompter: prompt, History: history, GoKey: "space"}),
		layout:  l,
		queue:   q,
		history: history,
		prompt:  prompt,
		out:     out,
		cues:    cues,
		ctx:     ctx,
	}
}

// read runs fn on the layout goroutine.
func (f *consoleFixture) read(t *testing.T, fn func()) {
	t.Helper()
	if err := f.queue.Call(f.ctx, fn); err != nil {
		t.Fatalf("queue call failed: %v", err)
	}
}

func (f *consoleFixture) exec(t *testing.T, cmds ...Command) {
	t.Helper()
	for _, cmd := range cmds {
		if _, err := f.console.Execute(f.ctx, cmd); err != nil {
			t.Fatalf("Execute(%s) failed: %v", cmd, err)
		}
	}
}

func (f *consoleFixture) names(t *testing.T) []string {
	var out []string
	f.read(t, func() {
		for c := range f.layout.Cues(cue.KindCue) {
			out = append(out, c.Name())
		}
	})
	return out
}

func TestExecuteGoUsesKeyHandling(t *testing.T) {
	f := newConsole(t, nil, "A", "B")

	var keys []string
	f.read(t, func() { f.layout.KeyPressed.Connect(func(k string) { keys = append(keys, k) }) })

	f.exec(t, CmdGo)

	var standby int
	f.read(t, func() { standby = f.layout.StandbyIndex() })
	if standby != 1 {
		t.Errorf("expected standby 1, got %d", standby)
	}
	if f.cues[0].State() != cue.StateRunning {
		t.Errorf("expected A running, got %v", f.cues[0].State())
	}
	f.read(t, func() {
		if diff := cmp.Diff([]string{"space"}, keys); diff != "" {
			t.Errorf("keys (-want +got):\n%s", diff)
		}
	})
}

func TestExecuteCursorAndSelection(t *testing.T) {
	f := newConsole(t, nil, "A", "B", "C")
	f.prompt.indices = []int{2, 0}

	f.exec(t, CmdStandbyNext, CmdStandbyNext, CmdStandbyPrevious)
	var standby int
	f.read(t, func() { standby = f.layout.StandbyIndex() })
	if standby != 1 {
		t.Errorf("expected standby 1, got %d", standby)
	}

	f.exec(t, CmdStandby)
	f.read(t, func() { standby = f.layout.StandbyIndex() })
	if standby != 2 {
		t.Errorf("expected standby 2, got %d", standby)
	}

	f.exec(t, CmdToggleSelect, CmdSelectInvert)
	var selected []string
	f.read(t, func() { selected = SelectedCueLabels(f.layout.SelectedCues(cue.KindCue)) })
	if diff := cmp.Diff([]string{"B", "C"}, selected); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}

	f.exec(t, CmdSelectNone)
	f.read(t, func() { selected = SelectedCueLabels(f.layout.SelectedCues(cue.KindCue)) })
	if len(selected) != 0 {
		t.Errorf("expected empty selection, got %v", selected)
	}
}

func TestExecuteRunStateCommands(t *testing.T) {
	f := newConsole(t, nil, "A", "B")

	f.exec(t, CmdGo, CmdGo, CmdPauseAll)
	for _, c := range f.cues {
		if c.State() != cue.StatePaused {
			t.Errorf("expected %s paused, got %v", c.Name(), c.State())
		}
	}

	f.exec(t, CmdResumeAll, CmdStopAll)
	for _, c := range f.cues {
		if c.State() != cue.StateStopped {
			t.Errorf("expected %s stopped, got %v", c.Name(), c.State())
		}
	}
}

func TestExecuteToggles(t *testing.T) {
	f := newConsole(t, nil, "A")

	f.exec(t, CmdAutoContinue, CmdSelectionMode)

	var auto, selection bool
	f.read(t, func() {
		auto = f.layout.Policy().AutoContinue
		selection = f.layout.SelectionMode()
	})
	if auto || selection {
		t.Errorf("expected both toggled off, got auto=%v selection=%v", auto, selection)
	}
}

func TestExecuteAddRemoveUndo(t *testing.T) {
	f := newConsole(t, nil, "A", "B")
	f.prompt.kinds = []cue.Kind{cue.KindMemo}

	f.exec(t, CmdAddCue)
	if diff := cmp.Diff([]string{"A", "Memo", "B"}, f.names(t)); diff != "" {
		t.Errorf("after add (-want +got):\n%s", diff)
	}

	f.exec(t, CmdSelectAll, CmdRemoveSelected)
	if got := f.names(t); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}

	f.exec(t, CmdUndo)
	if diff := cmp.Diff([]string{"A", "Memo", "B"}, f.names(t)); diff != "" {
		t.Errorf("after undo (-want +got):\n%s", diff)
	}
	f.exec(t, CmdUndo, CmdUndo)
	if diff := cmp.Diff([]string{"A", "B"}, f.names(t)); diff != "" {
		t.Errorf("after second undo (-want +got):\n%s", diff)
	}
	f.exec(t, CmdRedo)
	if diff := cmp.Diff([]string{"A", "Memo", "B"}, f.names(t)); diff != "" {
		t.Errorf("after redo (-want +got):\n%s", diff)
	}
}

func TestExecuteEditStandby(t *testing.T) {
	editor := &Editor{run: func(_ *huh.Form, values []*formValue) error {
		for _, v := range values {
			if v.field.Key == cue.PropVolume {
				v.value = "0.25"
			}
		}
		return nil
	}}
	f := newConsole(t, editor, "A", "B")

	f.exec(t, CmdEditStandby)
	if got := f.cues[0].Properties().Float(cue.PropVolume); got != 0.25 {
		t.Errorf("expected volume 0.25, got %v", got)
	}

	f.exec(t, CmdEditSelected)
	var canUndo bool
	f.read(t, func() { canUndo = f.history.CanUndo() })
	if !canUndo {
		t.Error("edit should be undoable")
	}
}

func TestExecuteErrors(t *testing.T) {
	f := newConsole(t, nil, "A")

	if _, err := f.console.Execute(f.ctx, Command("dance")); err == nil {
		t.Error("expected error for unknown command")
	}
	if _, err := f.console.Execute(f.ctx, CmdEditStandby); !errors.Is(err, layout.ErrNoEditor) {
		t.Errorf("expected ErrNoEditor, got %v", err)
	}
	if quit, err := f.console.Execute(f.ctx, CmdQuit); !quit || err != nil {
		t.Errorf("quit = %v, %v", quit, err)
	}
}

func TestRunLoop(t *testing.T) {
	f := newConsole(t, nil, "A", "B")
	f.prompt.commands = []Command{CmdGo, Command("dance"), CmdQuit, CmdGo}

	if err := f.console.Run(f.ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(f.prompt.commands) != 1 {
		t.Errorf("run should stop at quit, %d commands left", len(f.prompt.commands))
	}
	if strings.Count(f.out.String(), "== Cue list (2) ==") != 3 {
		t.Errorf("expected the list before every prompt:\n%s", f.out.String())
	}
}

func TestRunStopsWhenAborted(t *testing.T) {
	f := newConsole(t, nil, "A")

	if err := f.console.Run(f.ctx); err != nil {
		t.Fatalf("abort should end the loop cleanly: %v", err)
	}
}
