package cue

import (
	"fmt"
	"maps"
	"sync"

	"github.com/zenibako/cueplayer/dispatch"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Property keys shared by every cue kind
const (
	PropName     = "name"
	PropNumber   = "number"
	PropNotes    = "notes"
	PropPreWait  = "preWait"  // Seconds before the cue body starts
	PropPostWait = "postWait" // Seconds after the body before completion is reported
	PropDuration = "duration" // Seconds
)

// Properties holds a cue's configurable settings keyed by property name.
type Properties map[string]any

// Clone returns a shallow copy
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	return maps.Clone(p)
}

// String returns a string property, or "" when unset or not a string.
func (p Properties) String(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Float returns a numeric property as float64.
func (p Properties) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// Bool returns a boolean property
func (p Properties) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Cue is an executable show-control action. The owning list keeps Index in
// sync with the cue's position; a cue that is not in a list has index -1.
type Cue struct {
	id   string
	kind Kind

	mu         sync.Mutex
	index      int
	props      Properties
	runner     Runner
	state      State
	generation uint64

	// Next fires once each time an execution reaches its end.
	Next *dispatch.Signal[*Cue]
	// StateChanged fires after every run-state transition.
	StateChanged *dispatch.Signal[*Cue]
}

// New creates a cue of the given kind with a fresh unique ID.
func New(kind Kind, props Properties) *Cue {
	return NewWithID(uuid.NewString(), kind, props)
}

// NewWithID creates a cue with a caller-supplied ID
func NewWithID(id string, kind Kind, props Properties) *Cue {
	return &Cue{
		id:           id,
		kind:         kind,
		index:        -1,
		props:        props.Clone(),
		Next:         dispatch.NewSignal[*Cue](),
		StateChanged: dispatch.NewSignal[*Cue](),
	}
}

func (c *Cue) ID() string { return c.id }

func (c *Cue) Kind() Kind { return c.kind }

// Index returns the cue's position in its list, or -1.
func (c *Cue) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// SetIndex is maintained by the owning list.
func (c *Cue) SetIndex(i int) {
	c.mu.Lock()
	c.index = i
	c.mu.Unlock()
}

func (c *Cue) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props.String(PropName)
}

func (c *Cue) Number() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props.String(PropNumber)
}

// Label returns a human readable identifier for logs and lists.
func (c *Cue) Label() string {
	number, name := c.Number(), c.Name()
	switch {
	case number != "" && name != "":
		return fmt.Sprintf("%s %s", number, name)
	case number != "":
		return number
	case name != "":
		return name
	default:
		return fmt.Sprintf("%s %s", c.kind, c.id[:min(8, len(c.id))])
	}
}

// Property returns a single property value
func (c *Cue) Property(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.props[key]
	return v, ok
}

// Properties returns a copy of all properties.
func (c *Cue) Properties() Properties {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props.Clone()
}

// Update merges props into the cue's properties.
func (c *Cue) Update(props Properties) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.props, props)
}

// Replace swaps the whole property set.
func (c *Cue) Replace(props Properties) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.props = props.Clone()
}

// SetRunner installs the runner that performs the cue's work. A cue without a
// runner completes instantly.
func (c *Cue) SetRunner(r Runner) {
	c.mu.Lock()
	c.runner = r
	c.mu.Unlock()
}

func (c *Cue) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Execute applies action to the cue. Completion of a started execution is
// reported later through Next.
func (c *Cue) Execute(action Action) {
	c.mu.Lock()
	runner := c.runner
	if runner == nil {
		runner = Instant{}
	}
	prev := c.state

	switch action {
	case ActionDefault, ActionStart, ActionFadeIn:
		c.generation++
		c.state = StateRunning
		gen := c.generation
		c.mu.Unlock()

		log.Debug("Cue started", "cue", c.Label(), "action", action)
		c.StateChanged.Emit(c)
		runner.Start(c, func() { c.finish(gen) })
		return

	case ActionStop, ActionInterrupt, ActionFadeOut:
		if prev != StateRunning && prev != StatePaused {
			c.mu.Unlock()
			return
		}
		c.generation++
		c.state = StateStopped
		c.mu.Unlock()

		runner.Stop(c)

	case ActionPause:
		if prev != StateRunning {
			c.mu.Unlock()
			return
		}
		c.state = StatePaused
		c.mu.Unlock()

		runner.Pause(c)

	case ActionResume:
		if prev != StatePaused {
			c.mu.Unlock()
			return
		}
		c.state = StateRunning
		c.mu.Unlock()

		runner.Resume(c)

	default:
		c.mu.Unlock()
		log.Warn("Ignoring unknown cue action", "cue", c.Label(), "action", action)
		return
	}

	log.Debug("Cue state changed", "cue", c.Label(), "action", action, "from", prev)
	c.StateChanged.Emit(c)
}

// finish ends the execution identified by gen. Completions belonging to an
// execution that was since stopped or restarted are dropped. A paused cue
// still finishes when its runner completed before the pause took hold.
func (c *Cue) finish(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || (c.state != StateRunning && c.state != StatePaused) {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.mu.Unlock()

	log.Debug("Cue finished", "cue", c.Label())
	c.StateChanged.Emit(c)
	c.Next.Emit(c)
}
