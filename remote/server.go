package remote

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"
	"github.com/zenibako/cueplayer/layout"
	"github.com/zenibako/cueplayer/messages"

	"github.com/charmbracelet/log"
	"github.com/hypebeast/go-osc/osc"
)

// Server accepts OSC control messages and applies them to a list layout.
// Messages arrive on the network goroutine and are posted to the layout's
// queue, so the layout is only ever touched from its own goroutine.
type Server struct {
	layout  *layout.ListLayout
	queue   *dispatch.Queue
	builder *messages.OSCAddressBuilder
	addr    string

	dispatcher *osc.StandardDispatcher
}

// NewServer creates a control server listening on host:port once served.
func NewServer(l *layout.ListLayout, q *dispatch.Queue, host string, port int, prefix string) *Server {
	s := &Server{
		layout:     l,
		queue:      q,
		builder:    messages.NewOSCAddressBuilder(prefix),
		addr:       fmt.Sprintf("%s:%d", host, port),
		dispatcher: osc.NewStandardDispatcher(),
	}
	_ = s.dispatcher.AddMsgHandler("*", s.HandleMessage)
	return s
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.addr
}

// Serve listens for OSC packets until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeConn(ctx, conn)
}

// ServeConn serves on an existing connection, closing it when ctx is done.
func (s *Server) ServeConn(ctx context.Context, conn net.PacketConn) error {
	server := &osc.Server{Addr: conn.LocalAddr().String(), Dispatcher: s.dispatcher}
	log.Infof("OSC control listening on %s", conn.LocalAddr())

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	err := server.Serve(conn)
	if ctx.Err() != nil {
		log.Debug("OSC control stopped", "addr", conn.LocalAddr())
		return nil
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// HandleMessage routes one incoming message onto the layout's queue.
func (s *Server) HandleMessage(msg *osc.Message) {
	log.Debugf("Received OSC message: %s %v", msg.Address, msg.Arguments)

	addr, ok := s.builder.Parse(msg.Address)
	if !ok || messages.IsFeedback(addr.Type) {
		log.Debugf("Ignoring OSC message: %s", msg.Address)
		return
	}

	args := msg.Arguments
	if !s.queue.Post(func() { s.apply(addr, args) }) {
		log.Warn("Dropping OSC message, queue closed", "address", msg.Address)
	}
}

// apply runs on the queue goroutine.
func (s *Server) apply(addr messages.Address, args []any) {
	l := s.layout

	switch addr.Type {
	case messages.MsgGo:
		act := cue.ActionDefault
		if name, ok := stringArg(args, 0); ok {
			parsed, err := cue.ParseAction(name)
			if err != nil {
				log.Warn("Ignoring go with unknown action", "action", name)
				return
			}
			act = parsed
		}
		advance := l.Policy().Advance
		if n, ok := intArg(args, 1); ok && n >= 1 {
			advance = n
		}
		l.Go(act, advance)
	case messages.MsgStop:
		l.StopAll()
	case messages.MsgPause:
		l.PauseAll()
	case messages.MsgResume:
		l.ResumeAll()
	case messages.MsgInterrupt:
		l.InterruptAll()
	case messages.MsgFadeIn:
		l.FadeInAll()
	case messages.MsgFadeOut:
		l.FadeOutAll()

	case messages.MsgStandby:
		index, ok := intArg(args, 0)
		if !ok {
			log.Warn("Standby message needs an index argument", "args", args)
			return
		}
		l.SetStandbyIndex(index)
	case messages.MsgStandbyNext:
		l.SetStandbyIndex(l.StandbyIndex() + 1)
	case messages.MsgStandbyPrevious:
		l.SetStandbyIndex(l.StandbyIndex() - 1)

	case messages.MsgSelectAll, messages.MsgSelectNone:
		kind := cue.KindCue
		if name, ok := stringArg(args, 0); ok {
			parsed, err := cue.ParseKind(name)
			if err != nil {
				log.Warn("Ignoring selection with unknown kind", "kind", name)
				return
			}
			kind = parsed
		}
		if addr.Type == messages.MsgSelectAll {
			l.SelectAll(kind)
		} else {
			l.DeselectAll(kind)
		}
	case messages.MsgSelectInvert:
		l.InvertSelection()

	case messages.MsgCueStart, messages.MsgCueStop, messages.MsgCueSelect:
		c, err := l.CueAt(addr.Index)
		if err != nil {
			log.Warn("Ignoring cue message", "index", addr.Index, "error", err)
			return
		}
		switch addr.Type {
		case messages.MsgCueStart:
			c.Execute(cue.ActionStart)
		case messages.MsgCueStop:
			c.Execute(cue.ActionStop)
		default:
			selected := true
			if b, ok := boolArg(args, 0); ok {
				selected = b
			}
			l.SetSelected(c, selected)
		}
	}
}

func stringArg(args []any, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok && s != ""
}

func intArg(args []any, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func boolArg(args []any, i int) (bool, bool) {
	if i >= len(args) {
		return false, false
	}
	switch v := args[i].(type) {
	case bool:
		return v, true
	case int32:
		return v != 0, true
	}
	return false, false
}
