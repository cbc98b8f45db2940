package show

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ToData normalizes entries into a show. entries is not modified.
func ToData(name string, entries []Entry) Data {
	cues := make([]Entry, len(entries))
	copy(cues, entries)
	for i := range cues {
		NormalizeEntry(&cues[i])
	}
	return Data{Name: strings.TrimSpace(name), Cues: cues}
}

// ToJSON encodes a show. Names and notes are written as typed, without
// HTML escaping.
func ToJSON(name string, entries []Entry, indent bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(ToData(name, entries)); err != nil {
		return "", fmt.Errorf("encode show: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Save writes d to path as indented JSON.
func Save(path string, d Data) error {
	text, err := ToJSON(d.Name, d.Cues, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write show: %w", err)
	}
	return nil
}
