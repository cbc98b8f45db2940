package messages

import (
	"fmt"
	"strconv"
	"strings"
)

// OSC control surface for the list layout

// Message types
type MessageType string

const (
	// Transport messages
	MsgGo        MessageType = "go"
	MsgStop      MessageType = "stop"
	MsgPause     MessageType = "pause"
	MsgResume    MessageType = "resume"
	MsgInterrupt MessageType = "interrupt"
	MsgFadeIn    MessageType = "fade_in"
	MsgFadeOut   MessageType = "fade_out"

	// Cursor messages
	MsgStandby         MessageType = "standby"
	MsgStandbyNext     MessageType = "standby_next"
	MsgStandbyPrevious MessageType = "standby_previous"

	// Selection messages
	MsgSelectAll    MessageType = "select_all"
	MsgSelectNone   MessageType = "select_none"
	MsgSelectInvert MessageType = "select_invert"

	// Cue messages
	MsgCueStart  MessageType = "cue_start"
	MsgCueStop   MessageType = "cue_stop"
	MsgCueSelect MessageType = "cue_select"

	// Feedback messages
	MsgUpdateExecuted MessageType = "update_executed"
	MsgUpdateStandby  MessageType = "update_standby"
	MsgUpdateState    MessageType = "update_state"
)

// OSC Address patterns
const (
	// Transport
	AddrGo        = "/go"
	AddrStop      = "/stop"
	AddrPause     = "/pause"
	AddrResume    = "/resume"
	AddrInterrupt = "/panic"
	AddrFadeIn    = "/fadeIn"
	AddrFadeOut   = "/fadeOut"

	// Standby cursor
	AddrStandby         = "/standby"
	AddrStandbyNext     = "/standby/next"
	AddrStandbyPrevious = "/standby/previous"

	// Selection, optionally followed by a kind name argument
	AddrSelectAll    = "/select/all"
	AddrSelectNone   = "/select/none"
	AddrSelectInvert = "/select/invert"

	// Cue level (by list index)
	AddrCueStart  = "/cue/{index}/start"
	AddrCueStop   = "/cue/{index}/stop"
	AddrCueSelect = "/cue/{index}/select"

	// Feedback sent to the control surface
	AddrUpdateExecuted = "/update/executed"
	AddrUpdateStandby  = "/update/standby"
	AddrUpdateState    = "/update/cue/{index}/state"
)

var addresses = map[MessageType]string{
	MsgGo:              AddrGo,
	MsgStop:            AddrStop,
	MsgPause:           AddrPause,
	MsgResume:          AddrResume,
	MsgInterrupt:       AddrInterrupt,
	MsgFadeIn:          AddrFadeIn,
	MsgFadeOut:         AddrFadeOut,
	MsgStandby:         AddrStandby,
	MsgStandbyNext:     AddrStandbyNext,
	MsgStandbyPrevious: AddrStandbyPrevious,
	MsgSelectAll:       AddrSelectAll,
	MsgSelectNone:      AddrSelectNone,
	MsgSelectInvert:    AddrSelectInvert,
	MsgCueStart:        AddrCueStart,
	MsgCueStop:         AddrCueStop,
	MsgCueSelect:       AddrCueSelect,
	MsgUpdateExecuted:  AddrUpdateExecuted,
	MsgUpdateStandby:   AddrUpdateStandby,
	MsgUpdateState:     AddrUpdateState,
}

// Address is a parsed incoming address.
type Address struct {
	Type  MessageType
	Index int // Only set for cue level messages
}

// OSCAddressBuilder builds and parses addresses under an optional prefix
type OSCAddressBuilder struct {
	prefix string
}

// NewOSCAddressBuilder creates a new address builder. prefix may be empty;
// otherwise it is normalized to a leading slash and no trailing slash.
func NewOSCAddressBuilder(prefix string) *OSCAddressBuilder {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix = "/" + prefix
	}
	return &OSCAddressBuilder{prefix: prefix}
}

// Prefix returns the normalized prefix
func (b *OSCAddressBuilder) Prefix() string {
	return b.prefix
}

// BuildAddress builds an OSC address from a message type and parameters
func (b *OSCAddressBuilder) BuildAddress(msgType MessageType, params map[string]string) string {
	address, ok := addresses[msgType]
	if !ok {
		return ""
	}

	for key, value := range params {
		placeholder := fmt.Sprintf("{%s}", key)
		address = strings.ReplaceAll(address, placeholder, value)
	}

	return b.prefix + address
}

// BuildCueAddress builds a cue level address for the cue at index
func (b *OSCAddressBuilder) BuildCueAddress(msgType MessageType, index int) string {
	return b.BuildAddress(msgType, map[string]string{"index": strconv.Itoa(index)})
}

// Parse resolves an incoming address. Addresses outside the prefix or not
// part of the control surface are rejected.
func (b *OSCAddressBuilder) Parse(address string) (Address, bool) {
	if b.prefix != "" {
		rest, ok := strings.CutPrefix(address, b.prefix)
		if !ok || !strings.HasPrefix(rest, "/") {
			return Address{}, false
		}
		address = rest
	}

	for msgType, pattern := range addresses {
		if !strings.Contains(pattern, "{index}") {
			if pattern == address {
				return Address{Type: msgType}, true
			}
			continue
		}

		head, tail, _ := strings.Cut(pattern, "{index}")
		if !strings.HasPrefix(address, head) || !strings.HasSuffix(address, tail) {
			continue
		}
		if len(head)+len(tail) >= len(address) {
			continue
		}
		raw := address[len(head) : len(address)-len(tail)]
		index, err := strconv.Atoi(raw)
		if err != nil || index < 0 {
			continue
		}
		return Address{Type: msgType, Index: index}, true
	}
	return Address{}, false
}

// IsFeedback reports whether msgType is sent by the player rather than received
func IsFeedback(msgType MessageType) bool {
	switch msgType {
	case MsgUpdateExecuted, MsgUpdateStandby, MsgUpdateState:
		return true
	}
	return false
}
