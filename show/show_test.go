package show

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/model"

	"github.com/google/go-cmp/cmp"
)

const sampleShow = `{
  "name": "Act One",
  "cues": [
    {"type": "Audio", "id": "pre", "number": "1", "name": "Preshow", "fileTarget": "audio/pre.wav", "volume": 0},
    {"type": "light", "number": "2", "level": 140},
    {"type": "osc", "name": "Fly out", "oscAddress": "/fly/out", "oscArgs": "3"},
    {"name": "  Standby note  ", "text": "Check headsets"}
  ]
}`

func TestParseNormalizes(t *testing.T) {
	data, err := Parse(strings.NewReader(sampleShow))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	types := make([]string, 0, len(data.Cues))
	for _, e := range data.Cues {
		types = append(types, e.Type)
	}
	if diff := cmp.Diff([]string{"audio", "light", "osc", "memo"}, types); diff != "" {
		t.Errorf("types (-want +got):\n%s", diff)
	}
	if *data.Cues[1].Level != 100 {
		t.Errorf("expected level clamped to 100, got %v", *data.Cues[1].Level)
	}
	if data.Cues[3].Name != "Standby note" {
		t.Errorf("expected trimmed name, got %q", data.Cues[3].Name)
	}
}

func TestBuildFillsTemplates(t *testing.T) {
	data, err := Parse(strings.NewReader(sampleShow))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	list := model.New()
	var kinds []cue.Kind
	runner := cue.NewTimed()
	if err := data.Build(list, func(k cue.Kind) cue.Runner {
		kinds = append(kinds, k)
		if k == cue.KindMemo {
			return nil
		}
		return runner
	}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if list.Len() != 4 {
		t.Fatalf("expected 4 cues, got %d", list.Len())
	}
	if diff := cmp.Diff([]cue.Kind{cue.KindAudio, cue.KindLight, cue.KindOSC, cue.KindMemo}, kinds); diff != "" {
		t.Errorf("runner lookups (-want +got):\n%s", diff)
	}

	audio, _ := list.ByID("pre")
	if audio == nil {
		t.Fatal("expected cue with explicit id")
	}
	if v, ok := audio.Property(cue.PropVolume); !ok || v != 0.0 {
		t.Errorf("explicit zero volume lost: %v", v)
	}
	if audio.Properties().Float(cue.PropFadeIn) != 0 {
		t.Error("expected media defaults")
	}

	light, _ := list.Item(1)
	if light.Name() != "Light Cue" {
		t.Errorf("expected template name, got %q", light.Name())
	}
	osc, _ := list.Item(2)
	if osc.Properties().Float(cue.PropOSCPort) != 53000 {
		t.Errorf("expected default OSC port, got %v", osc.Properties()[cue.PropOSCPort])
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	data := &Data{Name: "Bad", Cues: []Entry{{Type: "memo"}, {Type: "laser"}}}
	list := model.New()

	err := data.Build(list, nil)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if list.Len() != 0 {
		t.Errorf("no cues should be added on error, got %d", list.Len())
	}
}

func TestFromModelRoundTrip(t *testing.T) {
	data, err := Parse(strings.NewReader(sampleShow))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	list := model.New()
	if err := data.Build(list, nil); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	exported := FromModel("Act One", list)
	out, err := ToJSON(exported.Name, exported.Cues, true)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	reparsed, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse(export) failed: %v", err)
	}
	if diff := cmp.Diff(exported, *reparsed); diff != "" {
		t.Errorf("export did not survive a round trip (-want +got):\n%s", diff)
	}
	if reparsed.Cues[0].ID != "pre" {
		t.Errorf("expected ids to be exported, got %q", reparsed.Cues[0].ID)
	}
}

func TestToJSONOmitsUnsetFields(t *testing.T) {
	out, err := ToJSON("Empty", []Entry{{Type: "memo", Name: "Note"}}, false)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var raw map[string][]map[string]any
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	entry := raw["cues"][0]
	for _, key := range []string{"volume", "oscPort", "preWait"} {
		if _, ok := entry[key]; ok {
			t.Errorf("expected %q to be omitted: %s", key, out)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.json")
	if err := os.WriteFile(path, []byte(sampleShow), 0o644); err != nil {
		t.Fatalf("write show: %v", err)
	}

	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if data.Name != "Act One" || len(data.Cues) != 4 {
		t.Errorf("unexpected show %q with %d cues", data.Name, len(data.Cues))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestSaveWritesReadableShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	d := Data{Name: " Act <Two> ", Cues: []Entry{{Type: "Audio", Name: "Rain & Wind"}}}

	if err := Save(path, d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read show: %v", err)
	}
	if !strings.Contains(string(raw), `"Rain & Wind"`) || !strings.Contains(string(raw), `"Act <Two>"`) {
		t.Errorf("expected unescaped names:\n%s", raw)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Cues[0].Type != "audio" {
		t.Errorf("expected normalized type, got %q", loaded.Cues[0].Type)
	}
	if d.Cues[0].Type != "Audio" {
		t.Error("Save should not modify its input")
	}
}

func TestBuildCues(t *testing.T) {
	data, err := Parse(strings.NewReader(sampleShow))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cues, err := data.BuildCues(nil)
	if err != nil {
		t.Fatalf("BuildCues failed: %v", err)
	}
	if len(cues) != len(data.Cues) {
		t.Fatalf("expected %d cues, got %d", len(data.Cues), len(cues))
	}
	if cues[0].ID() != "pre" || cues[0].Index() != -1 {
		t.Errorf("expected unlisted cue with id pre, got %q at %d", cues[0].ID(), cues[0].Index())
	}
	if cues[1].ID() == "" || cues[1].ID() == cues[2].ID() {
		t.Errorf("entries without an id need fresh ids, got %q and %q", cues[1].ID(), cues[2].ID())
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	data := &Data{Cues: []Entry{
		{Type: "audio", ID: "x"},
		{Type: "light", ID: "x"},
	}}
	list := model.New()

	err := data.Build(list, nil)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if list.Len() != 0 {
		t.Errorf("no cues should be added on error, got %d", list.Len())
	}
}
