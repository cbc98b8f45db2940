package layout

import (
	"errors"
	"iter"

	"github.com/zenibako/cueplayer/action"
	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"
	"github.com/zenibako/cueplayer/model"

	"github.com/charmbracelet/log"
)

// ErrNoEditor is returned by edit operations when no editor is configured.
var ErrNoEditor = errors.New("no cue editor configured")

// Layout is the capability set a concrete cue layout provides. Sequencing
// code depends only on this interface.
type Layout interface {
	Model() *model.ListModel
	DeselectAll(kind cue.Kind)
	Finalize()
	ContextCue() (*cue.Cue, bool)
	SelectedCues(kind cue.Kind) iter.Seq[*cue.Cue]
	InvertSelection()
	SelectAll(kind cue.Kind)
}

// Editor is the settings dialog. Both methods return the settings to apply
// and false if the user cancelled.
type Editor interface {
	// EditCue edits a single cue.
	EditCue(c *cue.Cue) (cue.Properties, bool, error)
	// EditKind edits the settings shared by cues, offering the fields of kind.
	EditKind(kind cue.Kind, cues []*cue.Cue) (cue.Properties, bool, error)
}

// ActionHandler accepts one undoable transaction per edit.
type ActionHandler interface {
	Do(a action.Action)
}

// Base holds what every layout shares: the cue list, the notifications and
// the edit workflow.
type Base struct {
	model   *model.ListModel
	editor  Editor
	actions ActionHandler

	CueExecuted  *dispatch.Signal[*cue.Cue] // After a cue is executed by go
	FocusChanged *dispatch.Signal[*cue.Cue] // After the focused cue is changed
	KeyPressed   *dispatch.Signal[string]   // After a key is pressed
}

// NewBase creates the shared layout state. editor and actions may be nil.
func NewBase(m *model.ListModel, editor Editor, actions ActionHandler) Base {
	return Base{
		model:        m,
		editor:       editor,
		actions:      actions,
		CueExecuted:  dispatch.NewSignal[*cue.Cue](),
		FocusChanged: dispatch.NewSignal[*cue.Cue](),
		KeyPressed:   dispatch.NewSignal[string](),
	}
}

// Model returns the cue list the layout presents.
func (b *Base) Model() *model.ListModel {
	return b.model
}

// SetEditor replaces the settings dialog
func (b *Base) SetEditor(e Editor) {
	b.editor = e
}

// EditCue opens the editor for c and submits one configure action.
func (b *Base) EditCue(c *cue.Cue) error {
	if b.editor == nil {
		return ErrNoEditor
	}
	settings, ok, err := b.editor.EditCue(c)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("Cue edit cancelled", "cue", c.Label())
		return nil
	}
	b.do(action.NewConfigure(settings, c))
	return nil
}

// editCues opens the editor for the most specific kind shared by cues and
// submits a single multi-cue configure action.
func (b *Base) editCues(cues []*cue.Cue) error {
	if len(cues) == 0 {
		return nil
	}
	if b.editor == nil {
		return ErrNoEditor
	}

	kind := cue.CommonKindOf(cues)
	settings, ok, err := b.editor.EditKind(kind, cues)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("Multi-cue edit cancelled", "count", len(cues), "kind", kind)
		return nil
	}
	b.do(action.NewMultiConfigure(settings, cues))
	return nil
}

// do routes a through the action handler, or applies it directly without one.
func (b *Base) do(a action.Action) {
	if b.actions == nil {
		a.Do()
		return
	}
	b.actions.Do(a)
}
