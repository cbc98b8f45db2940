package templates

import (
	"maps"
	"slices"

	"github.com/zenibako/cueplayer/cue"
)

// CueTemplate represents the defaults a new cue of one kind starts from
type CueTemplate struct {
	Type       string         `json:"type"`       // Cue kind: "audio", "light", "osc", etc.
	Name       string         `json:"name"`       // Name given to new cues
	Properties map[string]any `json:"properties"` // Default property values
}

// Per-kind defaults. Inherited kinds contribute their properties first.
var builtin = map[cue.Kind]CueTemplate{
	cue.KindCue: {
		Type: "cue",
		Name: "Cue",
		Properties: map[string]any{
			cue.PropPreWait:  0.0,
			cue.PropPostWait: 0.0,
			cue.PropDuration: 0.0,
		},
	},
	cue.KindMedia: {
		Type: "media",
		Name: "Media Cue",
		Properties: map[string]any{
			cue.PropFadeIn:  0.0,
			cue.PropFadeOut: 0.0,
		},
	},
	cue.KindAudio: {
		Type:       "audio",
		Name:       "Audio Cue",
		Properties: map[string]any{cue.PropVolume: 1.0},
	},
	cue.KindVideo: {
		Type: "video",
		Name: "Video Cue",
		Properties: map[string]any{
			cue.PropOpacity:   1.0,
			cue.PropStageName: "Main",
		},
	},
	cue.KindLight: {
		Type: "light",
		Name: "Light Cue",
		Properties: map[string]any{
			cue.PropUniverse: 1.0,
			cue.PropLevel:    100.0,
		},
	},
	cue.KindMIDI: {
		Type:       "midi",
		Name:       "MIDI Cue",
		Properties: map[string]any{cue.PropMIDIMsg: "note_on channel=0 note=60 velocity=127"},
	},
	cue.KindOSC: {
		Type: "osc",
		Name: "OSC Cue",
		Properties: map[string]any{
			cue.PropOSCHost:    "127.0.0.1",
			cue.PropOSCPort:    53000.0,
			cue.PropOSCAddress: "/",
			cue.PropOSCArgs:    "",
		},
	},
	cue.KindMemo: {
		Type:       "memo",
		Name:       "Memo",
		Properties: map[string]any{cue.PropText: ""},
	},
}

// For returns the template for kind with inherited defaults merged in.
func For(kind cue.Kind) CueTemplate {
	var chain []cue.Kind
	for k := kind; ; k = k.Parent() {
		chain = append(chain, k)
		if k == cue.KindCue {
			break
		}
	}

	own := builtin[chain[0]]
	t := CueTemplate{Type: kind.String(), Name: own.Name, Properties: map[string]any{}}
	if t.Name == "" {
		t.Name = builtin[cue.KindCue].Name
	}
	for _, k := range slices.Backward(chain) {
		maps.Copy(t.Properties, builtin[k].Properties)
	}
	return t
}

// Apply fills every property missing from props with the template default.
// Explicit values, including zero values, are kept.
func (t CueTemplate) Apply(props cue.Properties) cue.Properties {
	out := make(cue.Properties, len(t.Properties)+len(props))
	maps.Copy(out, t.Properties)
	maps.Copy(out, props)
	if _, ok := out[cue.PropName]; !ok {
		out[cue.PropName] = t.Name
	}
	return out
}

// NewCue creates a cue of kind from its template, overridden by props.
func NewCue(kind cue.Kind, props cue.Properties) *cue.Cue {
	return cue.New(kind, For(kind).Apply(props))
}
