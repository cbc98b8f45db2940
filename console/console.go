package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zenibako/cueplayer/action"
	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"
	"github.com/zenibako/cueplayer/layout"
	"github.com/zenibako/cueplayer/templates"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
)

// ErrNotTerminal is returned when the console is started without a terminal.
var ErrNotTerminal = errors.New("interactive console requires a terminal")

// Command is one entry of the console menu
type Command string

const (
	CmdGo              Command = "go"
	CmdStandbyNext     Command = "standby_next"
	CmdStandbyPrevious Command = "standby_previous"
	CmdStandby         Command = "standby"
	CmdToggleSelect    Command = "toggle_select"
	CmdSelectAll       Command = "select_all"
	CmdSelectNone      Command = "select_none"
	CmdSelectInvert    Command = "select_invert"
	CmdEditStandby     Command = "edit_standby"
	CmdEditSelected    Command = "edit_selected"
	CmdRemoveSelected  Command = "remove_selected"
	CmdAddCue          Command = "add_cue"
	CmdUndo            Command = "undo"
	CmdRedo            Command = "redo"
	CmdStopAll         Command = "stop_all"
	CmdPauseAll        Command = "pause_all"
	CmdResumeAll       Command = "resume_all"
	CmdInterruptAll    Command = "interrupt_all"
	CmdFadeInAll       Command = "fade_in_all"
	CmdFadeOutAll      Command = "fade_out_all"
	CmdAutoContinue    Command = "auto_continue"
	CmdSelectionMode   Command = "selection_mode"
	CmdQuit            Command = "quit"
)

type menuEntry struct {
	label   string
	command Command
}

var menu = []menuEntry{
	{"Go", CmdGo},
	{"Standby next", CmdStandbyNext},
	{"Standby previous", CmdStandbyPrevious},
	{"Set standby...", CmdStandby},
	{"Toggle cue selection...", CmdToggleSelect},
	{"Select all", CmdSelectAll},
	{"Select none", CmdSelectNone},
	{"Invert selection", CmdSelectInvert},
	{"Edit standby cue", CmdEditStandby},
	{"Edit selected cues", CmdEditSelected},
	{"Remove selected cues", CmdRemoveSelected},
	{"Add cue...", CmdAddCue},
	{"Undo", CmdUndo},
	{"Redo", CmdRedo},
	{"Stop all", CmdStopAll},
	{"Pause all", CmdPauseAll},
	{"Resume all", CmdResumeAll},
	{"Interrupt all", CmdInterruptAll},
	{"Fade in all", CmdFadeInAll},
	{"Fade out all", CmdFadeOutAll},
	{"Toggle auto-continue", CmdAutoContinue},
	{"Toggle selection mode", CmdSelectionMode},
	{"Quit", CmdQuit},
}

// Prompter asks the operator for input. The huh implementation is used
// unless another one is supplied.
type Prompter interface {
	Command(ctx context.Context) (Command, error)
	Index(ctx context.Context, title string, count int) (int, error)
	Kind(ctx context.Context) (cue.Kind, error)
}

// Options configure a Console
type Options struct {
	Out      io.Writer
	Prompter Prompter
	History  *action.Handler
	// Runners picks the runner for cues added from the console
	Runners func(kind cue.Kind) cue.Runner
	// GoKey is sent through the layout's key handling for CmdGo
	GoKey string
}

// Console is an interactive shell around a list layout.
type Console struct {
	layout   *layout.ListLayout
	queue    *dispatch.Queue
	out      io.Writer
	prompt   Prompter
	history  *action.Handler
	runners  func(kind cue.Kind) cue.Runner
	goKey    string
	renderer *Renderer
}

// New creates a console. l must only be used from q's goroutine.
func New(l *layout.ListLayout, q *dispatch.Queue, opts Options) *Console {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Prompter == nil {
		opts.Prompter = HuhPrompter{}
	}
	return &Console{
		layout:   l,
		queue:    q,
		out:      opts.Out,
		prompt:   opts.Prompter,
		history:  opts.History,
		runners:  opts.Runners,
		goKey:    opts.GoKey,
		renderer: NewRenderer(opts.Out),
	}
}

// Run shows the list and executes commands until quit or ctx is done.
// Failed commands are logged and the loop continues.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := c.Print(ctx); err != nil {
			return err
		}

		cmd, err := c.prompt.Command(ctx)
		if errors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		quit, err := c.Execute(ctx, cmd)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Command failed", "command", cmd, "error", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

// Print renders the list to the console output.
func (c *Console) Print(ctx context.Context) error {
	var view string
	if err := c.queue.Call(ctx, func() { view = c.renderer.Render(c.layout) }); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.out, view)
	return err
}

// Execute runs one command. Prompts for extra input happen before the
// command is applied on the layout's goroutine.
func (c *Console) Execute(ctx context.Context, cmd Command) (quit bool, err error) {
	l := c.layout

	switch cmd {
	case CmdQuit:
		return true, nil

	case CmdStandby:
		var count int
		if err := c.queue.Call(ctx, func() { count = l.Model().Len() }); err != nil {
			return false, err
		}
		index, err := c.prompt.Index(ctx, "Standby position", count+1)
		if err != nil {
			return false, err
		}
		return false, c.queue.Call(ctx, func() { l.SetStandbyIndex(index) })

	case CmdToggleSelect:
		var count int
		if err := c.queue.Call(ctx, func() { count = l.Model().Len() }); err != nil {
			return false, err
		}
		if count == 0 {
			return false, nil
		}
		index, err := c.prompt.Index(ctx, "Cue to toggle", count)
		if err != nil {
			return false, err
		}
		return false, c.queue.Call(ctx, func() {
			if target, ok := l.Model().Lookup(index); ok {
				l.ToggleSelected(target)
			}
		})

	case CmdAddCue:
		kind, err := c.prompt.Kind(ctx)
		if err != nil {
			return false, err
		}
		return false, c.queue.Call(ctx, func() { c.addCue(kind) })

	case CmdEditStandby, CmdEditSelected:
		// The editor is modal: it runs on the layout goroutine and holds it.
		var editErr error
		if err := c.queue.Call(ctx, func() {
			if cmd == CmdEditStandby {
				editErr = l.EditStandbyCue()
			} else {
				editErr = l.EditSelectedCues()
			}
		}); err != nil {
			return false, err
		}
		return false, editErr
	}

	var unknown bool
	err = c.queue.Call(ctx, func() {
		switch cmd {
		case CmdGo:
			if c.goKey != "" {
				l.HandleKey(c.goKey)
			} else {
				l.GoDefault()
			}
		case CmdStandbyNext:
			l.SetStandbyIndex(l.StandbyIndex() + 1)
		case CmdStandbyPrevious:
			l.SetStandbyIndex(l.StandbyIndex() - 1)
		case CmdSelectAll:
			l.SelectAll(cue.KindCue)
		case CmdSelectNone:
			l.DeselectAll(cue.KindCue)
		case CmdSelectInvert:
			l.InvertSelection()
		case CmdRemoveSelected:
			l.RemoveSelectedCues()
		case CmdUndo:
			if c.history != nil && !c.history.Undo() {
				log.Info("Nothing to undo")
			}
		case CmdRedo:
			if c.history != nil && !c.history.Redo() {
				log.Info("Nothing to redo")
			}
		case CmdStopAll:
			l.StopAll()
		case CmdPauseAll:
			l.PauseAll()
		case CmdResumeAll:
			l.ResumeAll()
		case CmdInterruptAll:
			l.InterruptAll()
		case CmdFadeInAll:
			l.FadeInAll()
		case CmdFadeOutAll:
			l.FadeOutAll()
		case CmdAutoContinue:
			l.SetAutoContinue(!l.Policy().AutoContinue)
		case CmdSelectionMode:
			l.SetSelectionMode(!l.SelectionMode())
		default:
			unknown = true
		}
	})
	if err != nil {
		return false, err
	}
	if unknown {
		return false, fmt.Errorf("unknown command %q", cmd)
	}
	return false, nil
}

// addCue inserts a cue of kind after the context cue, or at the end.
func (c *Console) addCue(kind cue.Kind) {
	l := c.layout
	nc := templates.NewCue(kind, nil)
	if c.runners != nil {
		if r := c.runners(kind); r != nil {
			nc.SetRunner(r)
		}
	}

	at := l.Model().Len()
	if ctxCue, ok := l.ContextCue(); ok {
		at = ctxCue.Index() + 1
	}

	a := action.NewAdd(l.Model(), nc, at)
	if c.history != nil {
		c.history.Do(a)
	} else {
		a.Do()
	}
}

// HuhPrompter reads input with huh forms.
type HuhPrompter struct{}

func (HuhPrompter) Command(ctx context.Context) (Command, error) {
	options := make([]huh.Option[Command], 0, len(menu))
	for _, m := range menu {
		options = append(options, huh.NewOption(m.label, m.command))
	}

	var choice Command
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Command]().
				Title("What next?").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return choice, nil
}

func (HuhPrompter) Index(ctx context.Context, title string, count int) (int, error) {
	options := make([]huh.Option[int], 0, count)
	for i := range count {
		options = append(options, huh.NewOption(fmt.Sprintf("%d", i), i))
	}

	var index int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(options...).
				Value(&index),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return 0, err
	}
	return index, nil
}

func (HuhPrompter) Kind(ctx context.Context) (cue.Kind, error) {
	var options []huh.Option[cue.Kind]
	for _, k := range cue.Kinds() {
		if k == cue.KindCue || k == cue.KindMedia {
			continue
		}
		options = append(options, huh.NewOption(k.String(), k))
	}

	var kind cue.Kind
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[cue.Kind]().
				Title("Cue kind").
				Options(options...).
				Value(&kind),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return cue.KindCue, err
	}
	return kind, nil
}
