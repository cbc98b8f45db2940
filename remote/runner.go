package remote

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/zenibako/cueplayer/cue"

	"github.com/charmbracelet/log"
	"github.com/hypebeast/go-osc/osc"
)

// DefaultCuePort is used by OSC cues that do not set a port
const DefaultCuePort = 53000

// OSCRunner plays OSC cues: it sends the cue's message when started and then
// lets body time the rest of the execution.
type OSCRunner struct {
	body cue.Runner
	dial func(host string, port int) Sender

	mu      sync.Mutex
	clients map[string]Sender
}

// NewOSCRunner creates a runner that times cues with body after sending.
func NewOSCRunner(body cue.Runner) *OSCRunner {
	return NewOSCRunnerWithDialer(body, func(host string, port int) Sender {
		return osc.NewClient(host, port)
	})
}

// NewOSCRunnerWithDialer is NewOSCRunner with a custom client factory.
func NewOSCRunnerWithDialer(body cue.Runner, dial func(host string, port int) Sender) *OSCRunner {
	if body == nil {
		body = cue.Instant{}
	}
	return &OSCRunner{body: body, dial: dial, clients: make(map[string]Sender)}
}

func (r *OSCRunner) Start(c *cue.Cue, done func()) {
	if err := r.send(c); err != nil {
		log.Warn("Failed to send OSC cue", "cue", c.Label(), "error", err)
	}
	r.body.Start(c, done)
}

func (r *OSCRunner) Stop(c *cue.Cue)   { r.body.Stop(c) }
func (r *OSCRunner) Pause(c *cue.Cue)  { r.body.Pause(c) }
func (r *OSCRunner) Resume(c *cue.Cue) { r.body.Resume(c) }

func (r *OSCRunner) send(c *cue.Cue) error {
	p := c.Properties()

	address := p.String(cue.PropOSCAddress)
	if !strings.HasPrefix(address, "/") {
		return fmt.Errorf("invalid OSC address %q", address)
	}
	host := p.String(cue.PropOSCHost)
	if host == "" {
		host = "127.0.0.1"
	}
	port := int(p.Float(cue.PropOSCPort))
	if port == 0 {
		port = DefaultCuePort
	}

	msg := osc.NewMessage(address)
	for _, arg := range ParseArgs(p.String(cue.PropOSCArgs)) {
		msg.Append(arg)
	}

	log.Debugf("Sending OSC cue %s to %s:%d: %s %v", c.Label(), host, port, address, msg.Arguments)
	return r.client(host, port).Send(msg)
}

func (r *OSCRunner) client(host string, port int) Sender {
	key := fmt.Sprintf("%s:%d", host, port)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.clients[key]; ok {
		return s
	}
	s := r.dial(host, port)
	r.clients[key] = s
	return s
}

// ParseArgs converts whitespace separated text into typed OSC arguments:
// integers become int32, other numbers float32, true/false bool, the rest
// strings.
func ParseArgs(text string) []any {
	var args []any
	for _, field := range strings.Fields(text) {
		if i, err := strconv.ParseInt(field, 10, 32); err == nil {
			args = append(args, int32(i))
			continue
		}
		if f, err := strconv.ParseFloat(field, 32); err == nil {
			args = append(args, float32(f))
			continue
		}
		if b, err := strconv.ParseBool(field); err == nil && (field == "true" || field == "false") {
			args = append(args, b)
			continue
		}
		args = append(args, field)
	}
	return args
}
