package show

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/model"
	"github.com/zenibako/cueplayer/templates"

	"github.com/charmbracelet/log"
)

var (
	// ErrUnknownKind is returned for entries whose type names no cue kind
	ErrUnknownKind = errors.New("unknown cue type")
	// ErrDuplicateID is returned when two entries share an id.
	ErrDuplicateID = errors.New("duplicate cue id")
)

// Entry represents one cue in a show file with all possible properties.
// Different cue kinds use different subsets of these fields.
type Entry struct {
	// Common properties (all cue kinds)
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Number string `json:"number,omitempty"`
	Notes  string `json:"notes,omitempty"`

	// Timing properties
	PreWait  float64 `json:"preWait,omitempty"`
	PostWait float64 `json:"postWait,omitempty"`
	Duration float64 `json:"duration,omitempty"`

	// Media properties
	FileTarget string   `json:"fileTarget,omitempty"`
	FadeIn     float64  `json:"fadeIn,omitempty"`
	FadeOut    float64  `json:"fadeOut,omitempty"`
	Volume     *float64 `json:"volume,omitempty"`  // 0.0 to 1.0
	Opacity    *float64 `json:"opacity,omitempty"` // 0.0 to 1.0
	StageName  string   `json:"stageName,omitempty"`

	// Light properties
	Universe int      `json:"universe,omitempty"`
	Level    *float64 `json:"level,omitempty"` // 0 to 100

	// MIDI properties
	MIDIMessage string `json:"midiMessage,omitempty"`

	// OSC properties
	OSCHost    string `json:"oscHost,omitempty"`
	OSCPort    int    `json:"oscPort,omitempty"`
	OSCAddress string `json:"oscAddress,omitempty"`
	OSCArgs    string `json:"oscArgs,omitempty"`

	// Memo properties
	Text string `json:"text,omitempty"`
}

// Data represents the parsed show structure
type Data struct {
	Name string  `json:"name"`
	Cues []Entry `json:"cues"`
}

// RunnerFunc picks the runner for cues of a kind. A nil runner leaves the
// cue's default in place.
type RunnerFunc func(kind cue.Kind) cue.Runner

// Load reads a show file from path.
func Load(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open show: %w", err)
	}
	defer f.Close()

	data, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Parse decodes a show and normalizes its entries.
func Parse(r io.Reader) (*Data, error) {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("parse show: %w", err)
	}
	for i := range data.Cues {
		NormalizeEntry(&data.Cues[i])
	}
	return &data, nil
}

// BuildCues creates a cue for every entry, in order. Entry ids must be unique.
func (d *Data) BuildCues(runners RunnerFunc) ([]*cue.Cue, error) {
	cues := make([]*cue.Cue, 0, len(d.Cues))
	seen := make(map[string]int, len(d.Cues))
	for i, e := range d.Cues {
		c, err := e.Cue()
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", i, err)
		}
		if first, ok := seen[c.ID()]; ok {
			return nil, fmt.Errorf("cue %d: %w: id %q also used by cue %d", i, ErrDuplicateID, c.ID(), first)
		}
		seen[c.ID()] = i
		if runners != nil {
			if r := runners(c.Kind()); r != nil {
				c.SetRunner(r)
			}
		}
		cues = append(cues, c)
	}
	return cues, nil
}

// Build appends the show's cues to list. Nothing is added if any entry is invalid.
func (d *Data) Build(list *model.ListModel, runners RunnerFunc) error {
	cues, err := d.BuildCues(runners)
	if err != nil {
		return err
	}
	for _, c := range cues {
		if err := list.Add(c); err != nil {
			return err
		}
	}
	log.Info("Show loaded", "name", d.Name, "cues", len(cues))
	return nil
}

// Cue creates the cue described by e, filling unset properties from the
// kind's template.
func (e Entry) Cue() (*cue.Cue, error) {
	kind, err := cue.ParseKind(e.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Type)
	}

	props := templates.For(kind).Apply(e.properties())
	if e.ID == "" {
		return cue.New(kind, props), nil
	}
	return cue.NewWithID(e.ID, kind, props), nil
}

func (e Entry) properties() cue.Properties {
	p := cue.Properties{}
	setString := func(key, v string) {
		if v != "" {
			p[key] = v
		}
	}
	setFloat := func(key string, v float64) {
		if v != 0 {
			p[key] = v
		}
	}

	setString(cue.PropName, e.Name)
	setString(cue.PropNumber, e.Number)
	setString(cue.PropNotes, e.Notes)
	setFloat(cue.PropPreWait, e.PreWait)
	setFloat(cue.PropPostWait, e.PostWait)
	setFloat(cue.PropDuration, e.Duration)
	setString(cue.PropFileTarget, e.FileTarget)
	setFloat(cue.PropFadeIn, e.FadeIn)
	setFloat(cue.PropFadeOut, e.FadeOut)
	setString(cue.PropStageName, e.StageName)
	setFloat(cue.PropUniverse, float64(e.Universe))
	setString(cue.PropMIDIMsg, e.MIDIMessage)
	setString(cue.PropOSCHost, e.OSCHost)
	setFloat(cue.PropOSCPort, float64(e.OSCPort))
	setString(cue.PropOSCAddress, e.OSCAddress)
	setString(cue.PropOSCArgs, e.OSCArgs)
	setString(cue.PropText, e.Text)
	if e.Volume != nil {
		p[cue.PropVolume] = *e.Volume
	}
	if e.Opacity != nil {
		p[cue.PropOpacity] = *e.Opacity
	}
	if e.Level != nil {
		p[cue.PropLevel] = *e.Level
	}
	return p
}

// EntryOf describes c as a show file entry.
func EntryOf(c *cue.Cue) Entry {
	p := c.Properties()
	e := Entry{
		Type:        c.Kind().String(),
		ID:          c.ID(),
		Name:        p.String(cue.PropName),
		Number:      p.String(cue.PropNumber),
		Notes:       p.String(cue.PropNotes),
		PreWait:     p.Float(cue.PropPreWait),
		PostWait:    p.Float(cue.PropPostWait),
		Duration:    p.Float(cue.PropDuration),
		FileTarget:  p.String(cue.PropFileTarget),
		FadeIn:      p.Float(cue.PropFadeIn),
		FadeOut:     p.Float(cue.PropFadeOut),
		StageName:   p.String(cue.PropStageName),
		Universe:    int(p.Float(cue.PropUniverse)),
		MIDIMessage: p.String(cue.PropMIDIMsg),
		OSCHost:     p.String(cue.PropOSCHost),
		OSCPort:     int(p.Float(cue.PropOSCPort)),
		OSCAddress:  p.String(cue.PropOSCAddress),
		OSCArgs:     p.String(cue.PropOSCArgs),
		Text:        p.String(cue.PropText),
	}
	if _, ok := p[cue.PropVolume]; ok {
		v := p.Float(cue.PropVolume)
		e.Volume = &v
	}
	if _, ok := p[cue.PropOpacity]; ok {
		v := p.Float(cue.PropOpacity)
		e.Opacity = &v
	}
	if _, ok := p[cue.PropLevel]; ok {
		v := p.Float(cue.PropLevel)
		e.Level = &v
	}
	return e
}

// FromModel describes every cue in list, in order.
func FromModel(name string, list *model.ListModel) Data {
	entries := make([]Entry, 0, list.Len())
	for c := range list.Iter(cue.KindCue) {
		entries = append(entries, EntryOf(c))
	}
	return Data{Name: name, Cues: entries}
}

// NormalizeEntry ensures an entry has proper defaults.
func NormalizeEntry(e *Entry) {
	e.Type = strings.ToLower(strings.TrimSpace(e.Type))
	// Type is required; untyped entries are memos
	if e.Type == "" {
		e.Type = "memo"
	}
	e.Name = strings.TrimSpace(e.Name)
	e.Number = strings.TrimSpace(e.Number)

	clamp := func(v *float64, hi float64) {
		if v != nil {
			*v = max(0, min(*v, hi))
		}
	}
	clamp(e.Volume, 1)
	clamp(e.Opacity, 1)
	clamp(e.Level, 100)

	for _, t := range []*float64{&e.PreWait, &e.PostWait, &e.Duration, &e.FadeIn, &e.FadeOut} {
		*t = max(0, *t)
	}
}
