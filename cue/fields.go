package cue

// Kind-specific property keys
const (
	PropFileTarget = "fileTarget"
	PropFadeIn     = "fadeIn"
	PropFadeOut    = "fadeOut"
	PropVolume     = "volume"  // 0.0 to 1.0
	PropOpacity    = "opacity" // 0.0 to 1.0
	PropStageName  = "stageName"
	PropUniverse   = "universe"
	PropLevel      = "level" // 0 to 100 percent
	PropMIDIMsg    = "midiMessage"
	PropOSCHost    = "oscHost"
	PropOSCPort    = "oscPort"
	PropOSCAddress = "oscAddress"
	PropOSCArgs    = "oscArgs" // Whitespace separated arguments
	PropText       = "text"
)

// FieldType describes how an editable property is entered and stored.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldBool
)

// Field is one editable setting of a cue kind.
type Field struct {
	Key   string
	Label string
	Type  FieldType
}

var kindFields = map[Kind][]Field{
	KindCue: {
		{Key: PropName, Label: "Name", Type: FieldText},
		{Key: PropNumber, Label: "Number", Type: FieldText},
		{Key: PropNotes, Label: "Notes", Type: FieldText},
		{Key: PropPreWait, Label: "Pre-wait (s)", Type: FieldNumber},
		{Key: PropPostWait, Label: "Post-wait (s)", Type: FieldNumber},
		{Key: PropDuration, Label: "Duration (s)", Type: FieldNumber},
	},
	KindMedia: {
		{Key: PropFileTarget, Label: "File", Type: FieldText},
		{Key: PropFadeIn, Label: "Fade in (s)", Type: FieldNumber},
		{Key: PropFadeOut, Label: "Fade out (s)", Type: FieldNumber},
	},
	KindAudio: {
		{Key: PropVolume, Label: "Volume", Type: FieldNumber},
	},
	KindVideo: {
		{Key: PropStageName, Label: "Stage", Type: FieldText},
		{Key: PropOpacity, Label: "Opacity", Type: FieldNumber},
	},
	KindLight: {
		{Key: PropUniverse, Label: "Universe", Type: FieldNumber},
		{Key: PropLevel, Label: "Level (%)", Type: FieldNumber},
	},
	KindMIDI: {
		{Key: PropMIDIMsg, Label: "MIDI message", Type: FieldText},
	},
	KindOSC: {
		{Key: PropOSCHost, Label: "Host", Type: FieldText},
		{Key: PropOSCPort, Label: "Port", Type: FieldNumber},
		{Key: PropOSCAddress, Label: "Address", Type: FieldText},
		{Key: PropOSCArgs, Label: "Arguments", Type: FieldText},
	},
	KindMemo: {
		{Key: PropText, Label: "Text", Type: FieldText},
	},
}

// Fields returns the editable settings of kind, inherited fields first.
func Fields(kind Kind) []Field {
	var chain []Kind
	for k := range kind.lineage() {
		chain = append(chain, k)
	}

	var fields []Field
	for i := len(chain) - 1; i >= 0; i-- {
		fields = append(fields, kindFields[chain[i]]...)
	}
	return fields
}
