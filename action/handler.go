package action

import (
	"github.com/zenibako/cueplayer/dispatch"

	"github.com/charmbracelet/log"
)

// DefaultHistoryLimit bounds the undo history
const DefaultHistoryLimit = 100

// Handler runs actions and keeps the undo/redo history.
type Handler struct {
	undo  []Action
	redo  []Action
	limit int

	// Done fires after an action is done, undone or redone.
	Done *dispatch.Signal[Action]
}

// NewHandler creates a handler keeping at most limit undo steps
func NewHandler(limit int) *Handler {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Handler{
		limit: limit,
		Done:  dispatch.NewSignal[Action](),
	}
}

// Do runs a and records it. Any redo history is discarded.
func (h *Handler) Do(a Action) {
	a.Do()
	h.undo = append(h.undo, a)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil

	log.Info(a.Log())
	h.Done.Emit(a)
}

// Undo reverts the most recent action. It returns false when there is nothing to undo.
func (h *Handler) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	a := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	a.Undo()
	h.redo = append(h.redo, a)

	log.Info("Undo: " + a.Log())
	h.Done.Emit(a)
	return true
}

// Redo re-applies the most recently undone action.
func (h *Handler) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	a := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	a.Redo()
	h.undo = append(h.undo, a)

	log.Info("Redo: " + a.Log())
	h.Done.Emit(a)
	return true
}

func (h *Handler) CanUndo() bool { return len(h.undo) > 0 }

func (h *Handler) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops all history
func (h *Handler) Clear() {
	h.undo = nil
	h.redo = nil
}
