package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zenibako/cueplayer/action"
	"github.com/zenibako/cueplayer/config"
	"github.com/zenibako/cueplayer/console"
	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/dispatch"
	"github.com/zenibako/cueplayer/layout"
	"github.com/zenibako/cueplayer/model"
	"github.com/zenibako/cueplayer/remote"
	"github.com/zenibako/cueplayer/show"
)

const historyLimit = 200

func newRunCommand(ctx *commandContext) *cobra.Command {
	var showPath string
	var headless bool

	cmd := &cobra.Command{
		Use:   "run [show-file]",
		Short: "Load a show and run its cue list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				showPath = args[0]
			}
			if showPath == "" {
				return errors.New("a show file is required")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if !headless && !console.IsTerminal(os.Stdin) {
				return fmt.Errorf("%w (use --headless to run from OSC only)", console.ErrNotTerminal)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var watchPath string
			if ctx.configExists {
				watchPath = ctx.configPath
			}
			return runShow(runCtx, showRun{
				cfg:        cfg,
				configPath: watchPath,
				showPath:   showPath,
				headless:   headless,
				out:        cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&showPath, "show", "s", "", "Show file to load")
	cmd.Flags().BoolVar(&headless, "headless", false, "Run without the interactive console")

	return cmd
}

type showRun struct {
	cfg        *config.Config
	configPath string // Watched for live changes when set
	showPath   string
	headless   bool
	out        io.Writer
}

// runShow runs the show until ctx is done or the console quits.
func runShow(ctx context.Context, r showRun) error {
	data, err := show.Load(r.showPath)
	if err != nil {
		return err
	}

	runners := newRunnerSet()
	list := model.New()
	if err := data.Build(list, runners.forKind); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := dispatch.NewQueue()
	history := action.NewHandler(historyLimit)

	var editor layout.Editor
	if !r.headless {
		editor = console.NewEditor(ctx)
	}
	l := layout.NewListLayout(list, queue, layoutOptions(r.cfg, editor, history))

	var feedback *remote.Feedback
	if r.cfg.FeedbackEnabled() {
		feedback = remote.NewFeedback(r.cfg.OSC.FeedbackHost, r.cfg.OSC.FeedbackPort, r.cfg.OSC.Prefix)
		feedback.Attach(l)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := queue.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if r.cfg.OSC.Enabled {
		server := remote.NewServer(l, queue, r.cfg.OSC.ListenHost, r.cfg.OSC.ListenPort, r.cfg.OSC.Prefix)
		log.Info("OSC control enabled", "addr", server.Addr(), "prefix", r.cfg.OSC.Prefix)
		g.Go(func() error {
			return server.Serve(gctx)
		})
	}

	if r.configPath != "" {
		g.Go(func() error {
			return config.Watch(gctx, r.configPath, func(next *config.Config) {
				queue.Post(func() { applyLiveConfig(l, next) })
			})
		})
	}

	if r.headless {
		log.Info("Running headless, press Ctrl+C to stop")
	} else {
		con := console.New(l, queue, console.Options{
			Out:     r.out,
			History: history,
			Runners: runners.forKind,
			GoKey:   r.cfg.Layout.GoKey,
		})
		g.Go(func() error {
			defer cancel()
			if err := con.Run(gctx); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	err = g.Wait()

	// The queue has stopped, so the layout is ours again.
	if feedback != nil {
		feedback.Detach()
	}
	l.StopAll()
	l.Finalize()
	log.Info("Show stopped", "name", data.Name)

	return err
}

func layoutOptions(cfg *config.Config, editor layout.Editor, actions layout.ActionHandler) layout.Options {
	return layout.Options{
		Policy:        policyOf(cfg),
		Panels:        panelsOf(cfg),
		GoKey:         cfg.Layout.GoKey,
		SelectionMode: cfg.Layout.SelectionMode,
		Editor:        editor,
		Actions:       actions,
	}
}

func policyOf(cfg *config.Config) layout.Policy {
	return layout.Policy{AutoContinue: cfg.Layout.AutoContinue, Advance: cfg.Layout.Advance}
}

func panelsOf(cfg *config.Config) layout.Panels {
	return layout.Panels{
		PlayingCues:  cfg.Layout.ShowPlayingCues,
		DBMeters:     cfg.Layout.ShowDBMeters,
		SeekSliders:  cfg.Layout.ShowSeekSliders,
		AccurateTime: cfg.Layout.ShowAccurateTime,
	}
}

// applyLiveConfig picks up the settings that can change while a show runs.
func applyLiveConfig(l *layout.ListLayout, cfg *config.Config) {
	l.SetPolicy(policyOf(cfg))
	l.SetPanels(panelsOf(cfg))
	l.SetSelectionMode(cfg.Layout.SelectionMode)
	if err := applyLogLevel(cfg, false); err != nil {
		log.Warn("Ignoring log level from config", "error", err)
	}
	log.Info("Config reloaded",
		"auto_continue", onOff(cfg.Layout.AutoContinue),
		"advance", cfg.Layout.Advance,
		"selection_mode", onOff(cfg.Layout.SelectionMode))
}

// runnerSet shares one timer runner between cues; OSC cues send their
// message before timing.
type runnerSet struct {
	timed *cue.Timed
	osc   *remote.OSCRunner
}

func newRunnerSet() *runnerSet {
	timed := cue.NewTimed()
	return &runnerSet{timed: timed, osc: remote.NewOSCRunner(timed)}
}

func (r *runnerSet) forKind(kind cue.Kind) cue.Runner {
	if kind == cue.KindOSC {
		return r.osc
	}
	return r.timed
}
