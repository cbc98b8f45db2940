package remote

import (
	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"
	"github.com/zenibako/cueplayer/layout"
	"github.com/zenibako/cueplayer/messages"

	"github.com/charmbracelet/log"
	"github.com/hypebeast/go-osc/osc"
)

// Sender delivers OSC packets. *osc.Client satisfies it.
type Sender interface {
	Send(packet osc.Packet) error
}

// Feedback mirrors layout notifications to a control surface.
type Feedback struct {
	sender   Sender
	builder  *messages.OSCAddressBuilder
	conns    []dispatch.Connection
	cueConns map[*cue.Cue]dispatch.Connection
}

// NewFeedback sends feedback to host:port.
func NewFeedback(host string, port int, prefix string) *Feedback {
	return NewFeedbackWithSender(osc.NewClient(host, port), prefix)
}

// NewFeedbackWithSender sends feedback through s.
func NewFeedbackWithSender(s Sender, prefix string) *Feedback {
	return &Feedback{
		sender:   s,
		builder:  messages.NewOSCAddressBuilder(prefix),
		cueConns: make(map[*cue.Cue]dispatch.Connection),
	}
}

// Attach starts publishing notifications of l until Detach. Cues added to
// the list later are followed as well.
func (f *Feedback) Attach(l *layout.ListLayout) {
	m := l.Model()
	f.conns = append(f.conns,
		l.CueExecuted.Connect(f.cueExecuted),
		l.StandbyChanged.Connect(f.standbyChanged),
		m.ItemAdded.Connect(f.track),
		m.ItemRemoved.Connect(f.untrack),
	)
	for c := range m.Iter(cue.KindCue) {
		f.track(c)
	}
}

// Detach stops publishing
func (f *Feedback) Detach() {
	for _, conn := range f.conns {
		conn.Disconnect()
	}
	f.conns = nil
	for c, conn := range f.cueConns {
		conn.Disconnect()
		delete(f.cueConns, c)
	}
}

func (f *Feedback) track(c *cue.Cue) {
	if _, ok := f.cueConns[c]; ok {
		return
	}
	f.cueConns[c] = c.StateChanged.Connect(f.stateChanged)
}

func (f *Feedback) untrack(c *cue.Cue) {
	if conn, ok := f.cueConns[c]; ok {
		conn.Disconnect()
		delete(f.cueConns, c)
	}
}

// stateChanged may run on a runner goroutine.
func (f *Feedback) stateChanged(c *cue.Cue) {
	index := c.Index()
	if index < 0 {
		return
	}
	msg := osc.NewMessage(f.builder.BuildCueAddress(messages.MsgUpdateState, index))
	msg.Append(c.State().String())
	msg.Append(c.ID())
	f.send(msg)
}

func (f *Feedback) cueExecuted(c *cue.Cue) {
	msg := osc.NewMessage(f.builder.BuildAddress(messages.MsgUpdateExecuted, nil))
	msg.Append(int32(c.Index()))
	msg.Append(c.ID())
	msg.Append(c.Label())
	f.send(msg)
}

func (f *Feedback) standbyChanged(index int) {
	msg := osc.NewMessage(f.builder.BuildAddress(messages.MsgUpdateStandby, nil))
	msg.Append(int32(index))
	f.send(msg)
}

func (f *Feedback) send(msg *osc.Message) {
	log.Debugf("Sending feedback: %s %v", msg.Address, msg.Arguments)
	if err := f.sender.Send(msg); err != nil {
		log.Warn("Failed to send feedback", "address", msg.Address, "error", err)
	}
}
