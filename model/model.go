package model

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"

	"github.com/charmbracelet/log"
)

var (
	// ErrIndexOutOfRange is returned for a position outside the list.
	ErrIndexOutOfRange = errors.New("cue index out of range")
	// ErrCueNotFound is returned when a cue is not in the list.
	ErrCueNotFound = errors.New("cue not found in list")
	// ErrDuplicateCue is returned when adding a cue that is already listed.
	ErrDuplicateCue = errors.New("cue already in list")
)

// ChangeType is the kind of structural change
type ChangeType int

const (
	ChangeAdded ChangeType = iota
	ChangeRemoved
	ChangeMoved
)

// Change describes one structural mutation. Len is the list length after it.
type Change struct {
	Type ChangeType
	Cue  *cue.Cue
	From int
	To   int
	Len  int
}

// Move is the payload of ItemMoved
type Move struct {
	Cue  *cue.Cue
	From int
	To   int
}

// ListModel is the ordered cue collection. Insertion order is execution
// order and each cue's Index always equals its position.
//
// Reconcilers registered with Reconcile run synchronously after every
// structural change and before any signal is emitted, so state derived from
// the list can be fixed up before other observers see it.
//
// ListModel is not safe for concurrent use; drive it from the dispatch queue.
type ListModel struct {
	items       []*cue.Cue
	reconcilers []*reconciler

	ItemAdded   *dispatch.Signal[*cue.Cue]
	ItemRemoved *dispatch.Signal[*cue.Cue]
	ItemMoved   *dispatch.Signal[Move]
}

type reconciler struct {
	fn func(Change)
}

// New creates an empty list
func New() *ListModel {
	return &ListModel{
		ItemAdded:   dispatch.NewSignal[*cue.Cue](),
		ItemRemoved: dispatch.NewSignal[*cue.Cue](),
		ItemMoved:   dispatch.NewSignal[Move](),
	}
}

// Reconcile registers fn to run on every structural change ahead of the
// change signals. The returned function unregisters it.
func (m *ListModel) Reconcile(fn func(Change)) func() {
	r := &reconciler{fn: fn}
	m.reconcilers = append(m.reconcilers, r)
	return func() {
		m.reconcilers = slices.DeleteFunc(m.reconcilers, func(x *reconciler) bool { return x == r })
	}
}

// Len returns the number of cues
func (m *ListModel) Len() int {
	return len(m.items)
}

// Item returns the cue at index.
func (m *ListModel) Item(index int) (*cue.Cue, error) {
	if index < 0 || index >= len(m.items) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(m.items))
	}
	return m.items[index], nil
}

// Lookup returns the cue at index and whether there is one.
func (m *ListModel) Lookup(index int) (*cue.Cue, bool) {
	if index < 0 || index >= len(m.items) {
		return nil, false
	}
	return m.items[index], true
}

// IndexOf returns the position of c.
func (m *ListModel) IndexOf(c *cue.Cue) (int, error) {
	if i, ok := m.Find(c); ok {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %s", ErrCueNotFound, describe(c))
}

// Find returns the position of c and whether it is in the list.
func (m *ListModel) Find(c *cue.Cue) (int, bool) {
	if c == nil {
		return -1, false
	}
	// Index is kept current, so check it before scanning.
	if i := c.Index(); i >= 0 && i < len(m.items) && m.items[i] == c {
		return i, true
	}
	i := slices.Index(m.items, c)
	return i, i >= 0
}

// Contains reports whether c is in the list
func (m *ListModel) Contains(c *cue.Cue) bool {
	_, ok := m.Find(c)
	return ok
}

// ByID returns the cue with the given ID.
func (m *ListModel) ByID(id string) (*cue.Cue, bool) {
	for _, c := range m.items {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Add appends c at the end of the list.
func (m *ListModel) Add(c *cue.Cue) error {
	return m.Insert(c, len(m.items))
}

// Insert places c at position at, shifting later cues down.
func (m *ListModel) Insert(c *cue.Cue, at int) error {
	if c == nil {
		return errors.New("insert nil cue")
	}
	if m.Contains(c) {
		return fmt.Errorf("%w: %s", ErrDuplicateCue, describe(c))
	}
	if at < 0 || at > len(m.items) {
		return fmt.Errorf("insert %s: %w: %d (len %d)", describe(c), ErrIndexOutOfRange, at, len(m.items))
	}

	m.items = slices.Insert(m.items, at, c)
	m.reindex(at, len(m.items))
	log.Debug("Cue added", "cue", c.Label(), "index", at)

	m.reconcile(Change{Type: ChangeAdded, Cue: c, From: at, To: at, Len: len(m.items)})
	m.ItemAdded.Emit(c)
	return nil
}

// Remove takes c out of the list.
func (m *ListModel) Remove(c *cue.Cue) error {
	i, err := m.IndexOf(c)
	if err != nil {
		return err
	}
	_, err = m.RemoveAt(i)
	return err
}

// RemoveAt removes and returns the cue at index.
func (m *ListModel) RemoveAt(index int) (*cue.Cue, error) {
	c, err := m.Item(index)
	if err != nil {
		return nil, err
	}

	m.items = slices.Delete(m.items, index, index+1)
	c.SetIndex(-1)
	m.reindex(index, len(m.items))
	log.Debug("Cue removed", "cue", c.Label(), "index", index)

	m.reconcile(Change{Type: ChangeRemoved, Cue: c, From: index, To: index, Len: len(m.items)})
	m.ItemRemoved.Emit(c)
	return c, nil
}

// Move relocates the cue at from to position to.
func (m *ListModel) Move(from, to int) error {
	c, err := m.Item(from)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(m.items) {
		return fmt.Errorf("move %s: %w: %d (len %d)", describe(c), ErrIndexOutOfRange, to, len(m.items))
	}
	if from == to {
		return nil
	}

	m.items = slices.Delete(m.items, from, from+1)
	m.items = slices.Insert(m.items, to, c)
	m.reindex(min(from, to), max(from, to)+1)
	log.Debug("Cue moved", "cue", c.Label(), "from", from, "to", to)

	m.reconcile(Change{Type: ChangeMoved, Cue: c, From: from, To: to, Len: len(m.items)})
	m.ItemMoved.Emit(Move{Cue: c, From: from, To: to})
	return nil
}

// Reset removes every cue, last first.
func (m *ListModel) Reset() {
	for len(m.items) > 0 {
		_, _ = m.RemoveAt(len(m.items) - 1)
	}
}

// Iter yields the cues whose kind is kind or descends from it, in list order.
// The sequence reads the live list and can be iterated again.
func (m *ListModel) Iter(kind cue.Kind) iter.Seq[*cue.Cue] {
	return func(yield func(*cue.Cue) bool) {
		for i := 0; i < len(m.items); i++ {
			c := m.items[i]
			if !c.Kind().Is(kind) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Items returns a snapshot of the list
func (m *ListModel) Items() []*cue.Cue {
	return slices.Clone(m.items)
}

func (m *ListModel) reindex(from, to int) {
	for i := from; i < to && i < len(m.items); i++ {
		m.items[i].SetIndex(i)
	}
}

func (m *ListModel) reconcile(ch Change) {
	for _, r := range slices.Clone(m.reconcilers) {
		r.fn(ch)
	}
}

func describe(c *cue.Cue) string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", c.Label())
}
