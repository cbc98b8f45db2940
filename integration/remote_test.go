package integration

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"
	"github.com/zenibako/cueplayer/layout"
	"github.com/zenibako/cueplayer/model"
	"github.com/zenibako/cueplayer/remote"
	"github.com/zenibako/cueplayer/show"
)

const showJSON = `{
  "name": "Loopback",
  "cues": [
    {"type": "osc", "id": "lights", "name": "Lights go", "oscHost": "127.0.0.1", "oscAddress": "/lights/go", "oscArgs": "3 full"},
    {"type": "memo", "id": "hold", "name": "Hold", "duration": 3600},
    {"type": "memo", "id": "bows", "name": "Bows", "duration": 3600}
  ]
}`

// listener collects OSC messages arriving on a loopback UDP port.
type listener struct {
	conn     net.PacketConn
	mu       sync.Mutex
	messages []*osc.Message
}

func listen(t *testing.T) *listener {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	l := &listener{conn: conn}

	d := osc.NewStandardDispatcher()
	_ = d.AddMsgHandler("*", func(msg *osc.Message) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.messages = append(l.messages, msg)
	})
	server := &osc.Server{Addr: conn.LocalAddr().String(), Dispatcher: d}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(conn)
	}()
	t.Cleanup(func() {
		_ = conn.Close()
		<-done
	})
	return l
}

func (l *listener) port() int {
	return l.conn.LocalAddr().(*net.UDPAddr).Port
}

// waitFor polls until a message with address arrives and match accepts it.
func (l *listener) waitFor(t *testing.T, address string, match func(*osc.Message) bool) *osc.Message {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		l.mu.Lock()
		for _, msg := range l.messages {
			if msg.Address == address && (match == nil || match(msg)) {
				l.mu.Unlock()
				return msg
			}
		}
		l.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no %s message arrived", address)
	return nil
}

// TestRemoteControlLoopback drives a show over real UDP sockets: a control
// message starts the first cue, the OSC cue reaches its target, and the
// chained memo moves the cursor, with feedback published for each step.
func TestRemoteControlLoopback(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping UDP loopback test in short mode")
	}

	target := listen(t)
	watcher := listen(t)

	data, err := show.Parse(strings.NewReader(showJSON))
	if err != nil {
		t.Fatalf("parse show: %v", err)
	}
	data.Cues[0].OSCPort = target.port()

	timed := cue.NewTimed()
	oscRunner := remote.NewOSCRunner(timed)
	list := model.New()
	err = data.Build(list, func(kind cue.Kind) cue.Runner {
		if kind == cue.KindOSC {
			return oscRunner
		}
		return timed
	})
	if err != nil {
		t.Fatalf("build show: %v", err)
	}

	q := dispatch.NewQueue()
	l := layout.NewListLayout(list, q, layout.Options{Policy: layout.DefaultPolicy()})
	feedback := remote.NewFeedback("127.0.0.1", watcher.port(), "/show")
	feedback.Attach(l)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = q.Run(ctx)
	}()

	control, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen control: %v", err)
	}
	server := remote.NewServer(l, q, "127.0.0.1", 0, "/show")
	go func() {
		defer wg.Done()
		if err := server.ServeConn(ctx, control); err != nil {
			t.Errorf("ServeConn: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
		feedback.Detach()
		l.StopAll()
		l.Finalize()
	})

	client := osc.NewClient("127.0.0.1", control.LocalAddr().(*net.UDPAddr).Port)
	if err := client.Send(osc.NewMessage("/show/go")); err != nil {
		t.Fatalf("send go: %v", err)
	}

	sent := target.waitFor(t, "/lights/go", nil)
	if len(sent.Arguments) != 2 || sent.Arguments[0] != int32(3) || sent.Arguments[1] != "full" {
		t.Errorf("unexpected cue arguments %v", sent.Arguments)
	}

	executed := watcher.waitFor(t, "/show/update/executed", nil)
	if executed.Arguments[0] != int32(0) || executed.Arguments[1] != "lights" {
		t.Errorf("unexpected executed feedback %v", executed.Arguments)
	}
	watcher.waitFor(t, "/show/update/standby", func(msg *osc.Message) bool {
		return len(msg.Arguments) == 1 && msg.Arguments[0] == int32(2)
	})
	watcher.waitFor(t, "/show/update/cue/1/state", func(msg *osc.Message) bool {
		return len(msg.Arguments) > 0 && msg.Arguments[0] == "running"
	})

	var standby int
	var states []cue.State
	if err := q.Call(ctx, func() {
		standby = l.StandbyIndex()
		for _, c := range list.Items() {
			states = append(states, c.State())
		}
	}); err != nil {
		t.Fatalf("queue call: %v", err)
	}
	if standby != 2 {
		t.Errorf("expected standby 2 after the chain, got %d", standby)
	}
	if states[1] != cue.StateRunning || states[2] == cue.StateRunning {
		t.Errorf("expected only the held memo running, got %v", states)
	}

	// Feedback addresses sent back at the server are ignored.
	_ = client.Send(osc.NewMessage("/show/update/standby", int32(0)))
	if err := client.Send(osc.NewMessage("/show/stop")); err != nil {
		t.Fatalf("send stop: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		var running bool
		_ = q.Call(ctx, func() {
			for _, c := range list.Items() {
				running = running || c.State() == cue.StateRunning
			}
			standby = l.StandbyIndex()
		})
		if !running {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cues still running after /stop")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if standby != 2 {
		t.Errorf("feedback address moved the cursor to %d", standby)
	}
}
