package cue

import (
	"fmt"
	"iter"
	"strings"
)

// Kind identifies a cue subtype. The set of kinds is closed and forms a tree
// rooted at KindCue.
type Kind int

// Kind constants for type-safe cue kind checking
const (
	KindCue   Kind = iota // Root of the hierarchy, matches every cue
	KindMedia             // Cues that play a media file
	KindAudio
	KindVideo
	KindLight
	KindMIDI
	KindOSC
	KindMemo
)

type kindInfo struct {
	name   string
	parent Kind
}

var kindTable = [...]kindInfo{
	KindCue:   {name: "cue", parent: KindCue},
	KindMedia: {name: "media", parent: KindCue},
	KindAudio: {name: "audio", parent: KindMedia},
	KindVideo: {name: "video", parent: KindMedia},
	KindLight: {name: "light", parent: KindCue},
	KindMIDI:  {name: "midi", parent: KindCue},
	KindOSC:   {name: "osc", parent: KindCue},
	KindMemo:  {name: "memo", parent: KindCue},
}

// Kinds returns every known kind, root first.
func Kinds() []Kind {
	out := make([]Kind, len(kindTable))
	for i := range kindTable {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindTable)
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindTable[k].name
}

// Parent returns the direct supertype. The root is its own parent.
func (k Kind) Parent() Kind {
	if !k.Valid() {
		return KindCue
	}
	return kindTable[k].parent
}

// Is reports whether k equals ancestor or descends from it.
func (k Kind) Is(ancestor Kind) bool {
	for cur := range k.lineage() {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// lineage yields k and then each supertype up to the root.
func (k Kind) lineage() iter.Seq[Kind] {
	return func(yield func(Kind) bool) {
		cur := k
		if !cur.Valid() {
			cur = KindCue
		}
		for {
			if !yield(cur) {
				return
			}
			if cur == KindCue {
				return
			}
			cur = cur.Parent()
		}
	}
}

// ParseKind maps a kind name ("audio", "light", ...) to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, info := range kindTable {
		if info.name == name {
			return Kind(i), nil
		}
	}
	return KindCue, fmt.Errorf("unknown cue kind %q", name)
}

// CommonKind returns the most specific kind every argument descends from.
// With no arguments it returns KindCue.
func CommonKind(kinds ...Kind) Kind {
	if len(kinds) == 0 {
		return KindCue
	}

	common := kinds[0]
	for _, k := range kinds[1:] {
		for !k.Is(common) {
			common = common.Parent()
		}
	}
	return common
}

// CommonKindOf returns the most specific kind shared by all cues.
func CommonKindOf(cues []*Cue) Kind {
	kinds := make([]Kind, 0, len(cues))
	for _, c := range cues {
		kinds = append(kinds, c.Kind())
	}
	return CommonKind(kinds...)
}
