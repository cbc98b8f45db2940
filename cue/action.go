package cue

import (
	"fmt"
	"strings"
)

// Action is a request sent to a cue's Execute method.
type Action string

// Action constants
const (
	ActionDefault   Action = "default" // Cue-defined default, currently the same as start
	ActionStart     Action = "start"
	ActionStop      Action = "stop"
	ActionPause     Action = "pause"
	ActionResume    Action = "resume"
	ActionInterrupt Action = "interrupt" // Stop immediately, skipping any fade
	ActionFadeIn    Action = "fade_in"
	ActionFadeOut   Action = "fade_out"
)

var actions = []Action{
	ActionDefault,
	ActionStart,
	ActionStop,
	ActionPause,
	ActionResume,
	ActionInterrupt,
	ActionFadeIn,
	ActionFadeOut,
}

// ParseAction maps an action name to its Action. An empty name is the default action.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ActionDefault, nil
	}
	for _, a := range actions {
		if string(a) == name {
			return a, nil
		}
	}
	return ActionDefault, fmt.Errorf("unknown cue action %q", name)
}

// State is the run state of a cue
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}
