package layout

import (
	"iter"
	"slices"

	"github.com/zenibako/cueplayer/action"
	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"
	"github.com/zenibako/cueplayer/model"

	"github.com/charmbracelet/log"
)

// KeyEditStandby opens the editor on the standby cue.
const KeyEditStandby = "shift+space"

// Policy controls cursor movement after go and after chained triggers.
type Policy struct {
	AutoContinue bool
	Advance      int // Positions to move the standby cursor, at least 1
}

// DefaultPolicy returns auto-continue on with a step of one.
func DefaultPolicy() Policy {
	return Policy{AutoContinue: true, Advance: 1}
}

// Panels are visibility toggles for auxiliary views. The layout only stores
// them for the shell.
type Panels struct {
	PlayingCues  bool
	DBMeters     bool
	SeekSliders  bool
	AccurateTime bool
}

// Options configure a ListLayout
type Options struct {
	Policy        Policy
	Panels        Panels
	GoKey         string
	SelectionMode bool
	Editor        Editor
	Actions       ActionHandler
}

// ListLayout presents cues as an ordered list with a standby cursor.
//
// The standby cursor is an index in [0, N]. Position N means nothing is on
// standby; go is a no-op there until the cursor is moved back into the list.
//
// All methods must be called from the goroutine running queue.
type ListLayout struct {
	Base

	queue         *dispatch.Queue
	policy        Policy
	panels        Panels
	goKey         string
	selectionMode bool

	standby    int
	selected   map[*cue.Cue]struct{}
	contextCue *cue.Cue

	cueConns    map[*cue.Cue]dispatch.Connection
	modelConns  []dispatch.Connection
	unreconcile func()
	finalized   bool

	// StandbyChanged fires with the new cursor position after it moves.
	StandbyChanged *dispatch.Signal[int]
}

var _ Layout = (*ListLayout)(nil)

// NewListLayout builds a layout over m. Cue completions are delivered through q.
func NewListLayout(m *model.ListModel, q *dispatch.Queue, opts Options) *ListLayout {
	if opts.Policy.Advance < 1 {
		opts.Policy.Advance = 1
	}

	l := &ListLayout{
		Base:           NewBase(m, opts.Editor, opts.Actions),
		queue:          q,
		policy:         opts.Policy,
		panels:         opts.Panels,
		goKey:          opts.GoKey,
		selectionMode:  opts.SelectionMode,
		selected:       make(map[*cue.Cue]struct{}),
		cueConns:       make(map[*cue.Cue]dispatch.Connection),
		StandbyChanged: dispatch.NewSignal[int](),
	}

	l.unreconcile = m.Reconcile(l.reconcile)
	l.modelConns = append(l.modelConns,
		m.ItemAdded.Connect(l.cueAdded),
		m.ItemRemoved.Connect(l.cueRemoved),
	)
	for c := range m.Iter(cue.KindCue) {
		l.cueAdded(c)
	}

	return l
}

// Cues yields every cue of kind in list order.
func (l *ListLayout) Cues(kind cue.Kind) iter.Seq[*cue.Cue] {
	return l.model.Iter(kind)
}

// CueAt returns the cue at index; out-of-range indices are an error.
func (l *ListLayout) CueAt(index int) (*cue.Cue, error) {
	return l.model.Item(index)
}

// StandbyIndex returns the cursor position in [0, N].
func (l *ListLayout) StandbyIndex() int {
	return l.standby
}

// StandbyCue returns the cue on standby, if any.
func (l *ListLayout) StandbyCue() (*cue.Cue, bool) {
	return l.model.Lookup(l.standby)
}

// SetStandbyIndex moves the cursor. Requests outside [0, N] are clamped.
func (l *ListLayout) SetStandbyIndex(index int) {
	if clamped := l.clamp(index); clamped != index {
		log.Debug("Standby index clamped", "requested", index, "index", clamped, "cues", l.model.Len())
		index = clamped
	}
	l.moveStandby(index)
}

// Go executes the standby cue with action and, when auto-continue is on,
// moves the cursor forward by advance.
func (l *ListLayout) Go(act cue.Action, advance int) {
	standby, ok := l.StandbyCue()
	if !ok {
		log.Debug("Go ignored, nothing on standby", "standby", l.standby, "cues", l.model.Len())
		return
	}

	standby.Execute(act)
	l.CueExecuted.Emit(standby)

	if l.policy.AutoContinue {
		l.moveStandby(l.clamp(l.standby + advance))
	}
}

// GoDefault runs Go with the default action and the policy's step.
func (l *ListLayout) GoDefault() {
	l.Go(cue.ActionDefault, l.policy.Advance)
}

func (l *ListLayout) clamp(index int) int {
	return max(0, min(index, l.model.Len()))
}

func (l *ListLayout) moveStandby(index int) {
	if index == l.standby {
		return
	}
	l.standby = index
	l.StandbyChanged.Emit(index)
}

// Policy returns the auto-continue policy in effect
func (l *ListLayout) Policy() Policy {
	return l.policy
}

// SetPolicy replaces the auto-continue policy.
func (l *ListLayout) SetPolicy(p Policy) {
	if p.Advance < 1 {
		p.Advance = 1
	}
	l.policy = p
}

// SetAutoContinue toggles auto-continue
func (l *ListLayout) SetAutoContinue(enable bool) {
	if l.policy.AutoContinue != enable {
		log.Info("Auto-continue changed", "enabled", enable)
	}
	l.policy.AutoContinue = enable
}

func (l *ListLayout) Panels() Panels { return l.panels }

func (l *ListLayout) SetPanels(p Panels) { l.panels = p }

// cueAdded subscribes the chain reaction to the new cue's completion.
func (l *ListLayout) cueAdded(c *cue.Cue) {
	if _, ok := l.cueConns[c]; ok {
		return
	}
	l.cueConns[c] = c.Next.ConnectQueued(l.queue, l.cueFinished)
}

func (l *ListLayout) cueRemoved(c *cue.Cue) {
	if conn, ok := l.cueConns[c]; ok {
		conn.Disconnect()
		delete(l.cueConns, c)
	}
}

// cueFinished triggers the cue after the one that just finished. Completions
// are queued, so either cue may have left the list in the meantime; that ends
// the chain.
func (l *ListLayout) cueFinished(c *cue.Cue) {
	if l.finalized {
		return
	}

	index, ok := l.model.Find(c)
	if !ok {
		log.Debug("Chain ended, finished cue no longer listed", "cue", c.Label())
		return
	}
	next, ok := l.model.Lookup(index + 1)
	if !ok {
		log.Debug("Chain ended, no cue after", "cue", c.Label(), "index", index)
		return
	}

	log.Debug("Chain triggering next cue", "finished", c.Label(), "next", next.Label())
	next.Execute(cue.ActionDefault)

	if standby, ok := l.StandbyCue(); l.policy.AutoContinue && ok && standby == next {
		l.moveStandby(l.clamp(index + 1 + l.policy.Advance))
	}
}

// reconcile runs before any other observer sees a structural change.
func (l *ListLayout) reconcile(ch model.Change) {
	if ch.Type != model.ChangeRemoved {
		return
	}

	delete(l.selected, ch.Cue)
	if l.contextCue == ch.Cue {
		l.contextCue = nil
	}
	if l.standby > ch.Len {
		l.moveStandby(ch.Len)
	}
}

// SelectAll selects every cue of kind.
func (l *ListLayout) SelectAll(kind cue.Kind) {
	for c := range l.model.Iter(kind) {
		l.selected[c] = struct{}{}
	}
}

// DeselectAll deselects every cue of kind.
func (l *ListLayout) DeselectAll(kind cue.Kind) {
	for c := range l.model.Iter(kind) {
		delete(l.selected, c)
	}
}

// InvertSelection flips the selection of every cue regardless of kind.
func (l *ListLayout) InvertSelection() {
	for c := range l.model.Iter(cue.KindCue) {
		if _, ok := l.selected[c]; ok {
			delete(l.selected, c)
		} else {
			l.selected[c] = struct{}{}
		}
	}
}

// SelectedCues yields the selected cues of kind in list order. The sequence
// reads live state each time it is iterated.
func (l *ListLayout) SelectedCues(kind cue.Kind) iter.Seq[*cue.Cue] {
	return func(yield func(*cue.Cue) bool) {
		for c := range l.model.Iter(kind) {
			if _, ok := l.selected[c]; !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// IsSelected reports whether c is selected
func (l *ListLayout) IsSelected(c *cue.Cue) bool {
	_, ok := l.selected[c]
	return ok
}

// SetSelected changes the selection of one cue. It is ignored while selection
// mode is off or when c is not listed.
func (l *ListLayout) SetSelected(c *cue.Cue, selected bool) {
	if !l.selectionMode {
		log.Debug("Selection ignored, selection mode is off", "cue", c.Label())
		return
	}
	if !l.model.Contains(c) {
		log.Debug("Selection ignored, cue not listed", "cue", c.Label())
		return
	}
	if selected {
		l.selected[c] = struct{}{}
	} else {
		delete(l.selected, c)
	}
}

// ToggleSelected flips the selection of one cue
func (l *ListLayout) ToggleSelected(c *cue.Cue) {
	l.SetSelected(c, !l.IsSelected(c))
}

func (l *ListLayout) SelectionMode() bool { return l.selectionMode }

// SetSelectionMode enables per-cue selection. Turning it off clears the selection.
func (l *ListLayout) SetSelectionMode(enable bool) {
	l.selectionMode = enable
	if !enable {
		l.DeselectAll(cue.KindCue)
	}
}

// ContextCue returns the cue the context menu acts on, falling back to the
// standby cue.
func (l *ListLayout) ContextCue() (*cue.Cue, bool) {
	if l.contextCue != nil {
		return l.contextCue, true
	}
	return l.StandbyCue()
}

// SetContextCue focuses c, or clears the focus when c is nil.
func (l *ListLayout) SetContextCue(c *cue.Cue) {
	if c != nil && !l.model.Contains(c) {
		return
	}
	if l.contextCue == c {
		return
	}
	l.contextCue = c
	l.FocusChanged.Emit(c)
}

// EditSelectedCues edits every selected cue in one transaction. An empty
// selection does nothing.
func (l *ListLayout) EditSelectedCues() error {
	return l.editCues(slices.Collect(l.SelectedCues(cue.KindCue)))
}

// EditStandbyCue opens the editor on the standby cue, if any.
func (l *ListLayout) EditStandbyCue() error {
	standby, ok := l.StandbyCue()
	if !ok {
		return nil
	}
	return l.EditCue(standby)
}

// RemoveSelectedCues removes every selected cue in one transaction.
func (l *ListLayout) RemoveSelectedCues() {
	cues := slices.Collect(l.SelectedCues(cue.KindCue))
	if len(cues) == 0 {
		return
	}
	l.do(action.NewRemove(l.model, cues))
}

// ExecuteAll sends act to every cue. The cursor does not move.
func (l *ListLayout) ExecuteAll(act cue.Action) {
	log.Info("Executing on all cues", "action", act, "cues", l.model.Len())
	for c := range l.model.Iter(cue.KindCue) {
		c.Execute(act)
	}
}

func (l *ListLayout) StopAll()      { l.ExecuteAll(cue.ActionStop) }
func (l *ListLayout) PauseAll()     { l.ExecuteAll(cue.ActionPause) }
func (l *ListLayout) ResumeAll()    { l.ExecuteAll(cue.ActionResume) }
func (l *ListLayout) InterruptAll() { l.ExecuteAll(cue.ActionInterrupt) }
func (l *ListLayout) FadeInAll()    { l.ExecuteAll(cue.ActionFadeIn) }
func (l *ListLayout) FadeOutAll()   { l.ExecuteAll(cue.ActionFadeOut) }

// HandleKey reports key to KeyPressed listeners and runs the bound command:
// the go key triggers go, shift+space edits the standby cue.
func (l *ListLayout) HandleKey(key string) {
	l.KeyPressed.Emit(key)

	switch {
	case l.goKey != "" && key == l.goKey:
		l.GoDefault()
	case key == KeyEditStandby:
		if err := l.EditStandbyCue(); err != nil {
			log.Warn("Failed to edit standby cue", "error", err)
		}
	}
}

// Finalize detaches the layout from the list and its cues.
func (l *ListLayout) Finalize() {
	if l.finalized {
		return
	}
	l.finalized = true

	for c, conn := range l.cueConns {
		conn.Disconnect()
		delete(l.cueConns, c)
	}
	for _, conn := range l.modelConns {
		conn.Disconnect()
	}
	l.modelConns = nil
	l.unreconcile()

	l.CueExecuted.DisconnectAll()
	l.FocusChanged.DisconnectAll()
	l.KeyPressed.DisconnectAll()
	l.StandbyChanged.DisconnectAll()
	log.Debug("List layout finalized")
}
