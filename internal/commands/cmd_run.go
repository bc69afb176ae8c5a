package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Geek-master-100/ai-customer-reception/internal/desk"
	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser/chrome"
	"github.com/Geek-master-100/ai-customer-reception/internal/loop"
	"github.com/Geek-master-100/ai-customer-reception/internal/scripts"
	"github.com/Geek-master-100/ai-customer-reception/internal/tui"
)

const (
	loopQueueSize   = 256
	shutdownTimeout = 10 * time.Second
)

type RunCmd struct {
	flags     *Flags
	headless  bool
	openSaved bool
}

// NewRunCmd creates the run command. It is the default action of the app.
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Flags returns the run flags for registration on the root command
func (cmd *RunCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "headless",
			Usage:       "run without the terminal shell: open every saved shop and log events",
			Sources:     cli.EnvVars("RECEPTION_HEADLESS"),
			Destination: &cmd.headless,
		},
		&cli.BoolFlag{
			Name:        "open-saved",
			Usage:       "open every saved shop when the shell starts",
			Destination: &cmd.openSaved,
		},
	}
}

// Interactive reports whether Run will take over the terminal.
func (cmd *RunCmd) Interactive() bool {
	return !cmd.headless && term.IsTerminal(int(os.Stdout.Fd()))
}

// Run executes the desk. Exported for use as default command.
func (cmd *RunCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *RunCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config
	if len(cfg.EnabledPlatforms()) == 0 {
		return errors.New("no platform enabled; enable one in " + cmd.flags.ConfigPath)
	}

	lp := loop.New(log.With().Str("component", "loop").Logger(), loopQueueSize)
	d := desk.New(desk.Options{
		Config: cfg,
		Deps: desk.Deps{
			Store:       cmd.flags.Store,
			Launcher:    chrome.New(chrome.Config{Bin: cfg.Browser.Bin, Headless: cfg.Browser.Headless}, log.With().Str("component", "chrome").Logger()),
			Scripts:     scripts.NewDir(cfg.ScriptsPath(), cfg.ScriptPatterns()),
			Scheduler:   lp,
			ProfilesDir: cfg.ProfilesPath(),
			Log:         log.With().Str("component", "desk").Logger(),
		},
	})

	interactive := cmd.Interactive()
	if !interactive {
		d.Bus().Subscribe(logEvent(log.With().Str("component", "desk").Logger()))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The loop outlives ctx so the desk can close its sessions on the way out.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g, gctx := errgroup.WithContext(ctx)
	remote := desk.NewRemote(gctx, d, lp)

	g.Go(func() error {
		return lp.Run(loopCtx)
	})

	g.Go(func() error {
		defer stopLoop()

		var err error
		if interactive {
			err = cmd.runShell(gctx, remote)
		} else {
			err = runHeadless(gctx, remote)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := remote.Shutdown(shutdownCtx); serr != nil {
			log.Warn().Err(serr).Msg("desk shutdown")
		}
		return err
	})

	return g.Wait()
}

func (cmd *RunCmd) runShell(ctx context.Context, remote *desk.Remote) error {
	if cmd.openSaved {
		if _, err := remote.OpenSaved(ctx); err != nil {
			return fmt.Errorf("open saved shops: %w", err)
		}
	}

	p := tea.NewProgram(tui.New(ctx, remote), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func runHeadless(ctx context.Context, remote *desk.Remote) error {
	n, err := remote.OpenSaved(ctx)
	if err != nil {
		return fmt.Errorf("open saved shops: %w", err)
	}
	if n == 0 {
		log.Warn().Msg("no saved shops; run reception in a terminal to log in to an account")
	} else {
		log.Info().Int("shops", n).Msg("opened saved shops")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}

// logEvent writes desk events to the log in headless mode.
func logEvent(l zerolog.Logger) func(desk.Event) {
	return func(ev desk.Event) {
		e := l.Info().Str("event", ev.Name()).Str("platform", ev.PlatformID())

		switch ev := ev.(type) {
		case desk.ShopUpdated:
			e = e.Str("session_id", ev.Shop.SessionID).Str("shop", ev.Shop.DisplayName())
		case desk.UnreadChanged:
			e = e.Str("session_id", ev.SessionID).Int("unread", ev.Event.Count)
		case desk.RawMessage:
			e = e.Str("session_id", ev.SessionID).RawJSON("payload", ev.Payload)
		case desk.TabChanged:
			e = e.Str("title", ev.Title)
		case desk.SessionClosed:
			e = e.Str("session_id", ev.SessionID)
		}

		e.Msg("desk event")
	}
}
