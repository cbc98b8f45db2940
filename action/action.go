package action

import (
	"fmt"
	"slices"
	"sort"

	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/model"

	"github.com/charmbracelet/log"
)

// Action is one undoable step.
type Action interface {
	Do()
	Undo()
	Redo()
	Log() string
}

// ConfigureAction applies a settings change to a single cue.
type ConfigureAction struct {
	cue    *cue.Cue
	apply  cue.Properties
	before cue.Properties
	after  cue.Properties
}

// NewConfigure creates an action that merges settings into c
func NewConfigure(settings cue.Properties, c *cue.Cue) *ConfigureAction {
	return &ConfigureAction{cue: c, apply: settings.Clone()}
}

func (a *ConfigureAction) Do() {
	a.before = a.cue.Properties()
	a.cue.Update(a.apply)
	a.after = a.cue.Properties()
}

func (a *ConfigureAction) Undo() { a.cue.Replace(a.before) }

func (a *ConfigureAction) Redo() { a.cue.Replace(a.after) }

func (a *ConfigureAction) Log() string {
	return fmt.Sprintf("Cue configuration changed: %s", a.cue.Label())
}

// MultiConfigureAction applies one settings change to many cues as a single
// undo step.
type MultiConfigureAction struct {
	cues   []*cue.Cue
	apply  cue.Properties
	before []cue.Properties
	after  []cue.Properties
}

// NewMultiConfigure creates an action that merges settings into every cue
func NewMultiConfigure(settings cue.Properties, cues []*cue.Cue) *MultiConfigureAction {
	return &MultiConfigureAction{cues: slices.Clone(cues), apply: settings.Clone()}
}

func (a *MultiConfigureAction) Do() {
	a.before = make([]cue.Properties, len(a.cues))
	a.after = make([]cue.Properties, len(a.cues))
	for i, c := range a.cues {
		a.before[i] = c.Properties()
		c.Update(a.apply)
		a.after[i] = c.Properties()
	}
}

func (a *MultiConfigureAction) Undo() {
	for i, c := range a.cues {
		c.Replace(a.before[i])
	}
}

func (a *MultiConfigureAction) Redo() {
	for i, c := range a.cues {
		c.Replace(a.after[i])
	}
}

func (a *MultiConfigureAction) Log() string {
	return fmt.Sprintf("Cues configuration changed: %d cues", len(a.cues))
}

// Cues returns the cues the action touches
func (a *MultiConfigureAction) Cues() []*cue.Cue {
	return slices.Clone(a.cues)
}

// RemoveAction removes several cues from a list as one step.
type RemoveAction struct {
	list    *model.ListModel
	cues    []*cue.Cue
	removed []placement
}

type placement struct {
	cue   *cue.Cue
	index int
}

// NewRemove creates an action removing cues from list
func NewRemove(list *model.ListModel, cues []*cue.Cue) *RemoveAction {
	return &RemoveAction{list: list, cues: slices.Clone(cues)}
}

func (a *RemoveAction) Do() {
	a.removed = a.removed[:0]
	for _, c := range a.cues {
		if i, ok := a.list.Find(c); ok {
			a.removed = append(a.removed, placement{cue: c, index: i})
		}
	}
	sort.Slice(a.removed, func(i, j int) bool { return a.removed[i].index < a.removed[j].index })

	// Highest index first so the recorded positions stay valid.
	for i := len(a.removed) - 1; i >= 0; i-- {
		if _, err := a.list.RemoveAt(a.removed[i].index); err != nil {
			log.Warn("Failed to remove cue", "cue", a.removed[i].cue.Label(), "error", err)
		}
	}
}

func (a *RemoveAction) Undo() {
	for _, p := range a.removed {
		at := min(p.index, a.list.Len())
		if err := a.list.Insert(p.cue, at); err != nil {
			log.Warn("Failed to restore cue", "cue", p.cue.Label(), "error", err)
		}
	}
}

func (a *RemoveAction) Redo() { a.Do() }

func (a *RemoveAction) Log() string {
	return fmt.Sprintf("Cues removed: %d", len(a.removed))
}

// AddAction inserts a new cue into a list.
type AddAction struct {
	list  *model.ListModel
	cue   *cue.Cue
	index int
}

// NewAdd creates an action inserting c at index, clamped to the list bounds.
func NewAdd(list *model.ListModel, c *cue.Cue, index int) *AddAction {
	return &AddAction{list: list, cue: c, index: index}
}

func (a *AddAction) Do() {
	at := max(0, min(a.index, a.list.Len()))
	if err := a.list.Insert(a.cue, at); err != nil {
		log.Warn("Failed to add cue", "cue", a.cue.Label(), "error", err)
	}
}

func (a *AddAction) Undo() {
	if err := a.list.Remove(a.cue); err != nil {
		log.Warn("Failed to remove added cue", "cue", a.cue.Label(), "error", err)
	}
}

func (a *AddAction) Redo() { a.Do() }

func (a *AddAction) Log() string {
	return fmt.Sprintf("Cue added: %s", a.cue.Label())
}
