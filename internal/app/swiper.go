package app

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/adapter"
	"github.com/kapu/randomuser-swipe-go/internal/command"
	"github.com/kapu/randomuser-swipe-go/internal/config"
	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/loop"
	"github.com/kapu/randomuser-swipe-go/internal/remote"
	"github.com/kapu/randomuser-swipe-go/internal/service/fetch"
	"github.com/kapu/randomuser-swipe-go/internal/session"
)

// ErrQuit is returned by Run when the user asked to leave.
var ErrQuit = stderrors.New("quit requested")

// Swiper is the terminal runtime: it owns the control loop, renders every
// session change and feeds typed commands into the session.
type Swiper struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *Container

	loop       *loop.Loop
	fetcher    *fetch.Controller
	session    *session.Session
	feed       *remote.Feed
	input      *adapter.InputAdapter
	formatter  *adapter.Formatter
	dispatcher command.Dispatcher

	out       io.Writer
	outMu     sync.Mutex
	lastFrame string

	cancel   context.CancelFunc
	loopDone chan struct{}
	stopOnce sync.Once
}

func newSwiper(c *Container, out io.Writer) *Swiper {
	l := loop.New(c.Logger)
	return &Swiper{
		cfg:       c.Config,
		logger:    c.Logger,
		container: c,
		loop:      l,
		fetcher:   fetch.NewController(c.Client, c.Store, l, c.Logger),
		feed:      c.Feed,
		input:     c.InputAdapter,
		formatter: c.Formatter,
		out:       out,
		loopDone:  make(chan struct{}),
	}
}

// Start launches the control loop and the cold-start sequence. It returns
// immediately; Run reads input until the user quits.
func (s *Swiper) Start(ctx context.Context) error {
	if s.session != nil {
		return fmt.Errorf("swiper already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.session = session.New(runCtx, s.fetcher, s.loop, CardConfig(s.cfg), s.logger)
	s.session.Subscribe(s.render)
	s.session.OnDecision(func(d session.Decided) {
		s.logger.Info("Card decided",
			zap.String("profile_id", d.ProfileID),
			zap.String("decision", d.Decision.String()),
		)
	})

	registry := command.NewRegistry()
	command.RegisterDefaults(registry, &command.Dependencies{
		Session:     s.session,
		Dispatch:    s.loop.Do,
		Formatter:   s.formatter,
		SendMessage: s.print,
		Logger:      s.logger,
	})
	s.dispatcher = command.NewSequentialDispatcher(registry, command.NormalizeInput)
	s.logger.Debug("Commands registered", zap.Strings("commands", registry.Names()))

	go func() {
		defer close(s.loopDone)
		if err := s.loop.Run(runCtx); err != nil && !stderrors.Is(err, context.Canceled) {
			s.logger.Error("Control loop exited", zap.Error(err))
		}
	}()

	s.loop.Post(s.session.Start)

	if s.feed != nil {
		s.feed.OnCommand(s.onRemoteCommand)
		s.feed.OnStateChange(func(state remote.State) {
			if state == remote.StateFailed {
				s.logger.Warn("Remote trigger feed unavailable")
			}
		})
		if err := s.feed.Connect(runCtx); err != nil {
			s.logger.Warn("Remote feed not connected yet, retrying in background", zap.Error(err))
		}
	}

	s.logger.Info("Swiper started",
		zap.String("directory", s.cfg.Directory.BaseURL),
		zap.String("store", s.cfg.Store.Backend),
	)
	return nil
}

// Run reads commands line by line until EOF, a quit command or ctx ends.
func (s *Swiper) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case line := <-lines:
			quit, err := s.HandleLine(ctx, line)
			if err != nil {
				s.logger.Warn("Command failed", zap.String("input", line), zap.Error(err))
				s.print(s.formatter.FormatError(err.Error()))
			}
			if quit {
				return ErrQuit
			}
		}
	}
}

// HandleLine executes one input line and reports whether the user asked to quit.
func (s *Swiper) HandleLine(ctx context.Context, line string) (bool, error) {
	parsed := s.input.ParseLine(line)

	switch parsed.Type {
	case domain.InputQuit:
		return true, nil
	case domain.InputUnknown:
		if parsed.RawInput != "" {
			s.print(s.formatter.FormatError(fmt.Sprintf("unknown command %q, type h for help", parsed.RawInput)))
		}
		return false, nil
	}

	_, err := s.dispatcher.Publish(ctx, command.EventFromInput(parsed))
	return false, err
}

func (s *Swiper) onRemoteCommand(cmd remote.Command) {
	s.loop.Post(func() {
		if cmd.Action == remote.ActionRetry {
			s.session.Retry()
			return
		}
		if decision, ok := cmd.Decision(); ok && !s.session.Trigger(decision) {
			s.logger.Debug("Remote decision ignored", zap.String("action", string(cmd.Action)))
		}
	})
}

// Snapshot returns the current session state as seen from the control loop.
func (s *Swiper) Snapshot(ctx context.Context) (session.Snapshot, error) {
	var snap session.Snapshot
	err := s.loop.Do(ctx, func() {
		snap = s.session.Snapshot()
	})
	return snap, err
}

func (s *Swiper) render(snap session.Snapshot) {
	frame := s.formatter.Status(snap.Fetch) + "\n" + s.formatter.Card(snap.Profile, snap.Card)
	if frame == s.lastFrame {
		return
	}
	s.lastFrame = frame
	s.print(frame)
}

func (s *Swiper) print(message string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := fmt.Fprintln(s.out, strings.TrimRight(message, "\n")); err != nil {
		s.logger.Debug("Failed to write output", zap.Error(err))
	}
}

// Shutdown stops the feed and the loop, waits for an in-flight fetch and
// releases backend connections.
func (s *Swiper) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.stopOnce.Do(func() {
		if s.feed != nil {
			if err := s.feed.Close(); err != nil {
				s.logger.Warn("Failed to close remote feed", zap.Error(err))
			}
		}

		if s.session != nil {
			if err := s.loop.Do(ctx, s.session.Close); err != nil && !stderrors.Is(err, loop.ErrStopped) {
				s.logger.Warn("Failed to close session on the control loop", zap.Error(err))
			}
		}

		s.loop.Stop()
		if s.cancel != nil {
			s.cancel()
			select {
			case <-s.loopDone:
			case <-ctx.Done():
				shutdownErr = ctx.Err()
			}
		}

		fetchesDone := make(chan struct{})
		go func() {
			s.fetcher.Wait()
			close(fetchesDone)
		}()
		select {
		case <-fetchesDone:
		case <-ctx.Done():
			s.logger.Warn("Timeout waiting for in-flight fetch")
			shutdownErr = ctx.Err()
		}

		s.container.Close()
	})

	return shutdownErr
}
