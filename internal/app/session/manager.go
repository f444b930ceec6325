// Package session runs the single loop that owns the queue and the player controller.
package session

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/app/command"
	"github.com/osa030/ytmusic/internal/app/notification"
	"github.com/osa030/ytmusic/internal/app/playback"
	"github.com/osa030/ytmusic/internal/domain/media"
	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/ui"
)

var (
	ErrSessionNotRunning = errors.New("session is not running")
)

// Status represents the current playback status.
type Status struct {
	State      playback.State
	Track      *track.Track // nil when the queue is empty
	Position   time.Duration
	Duration   time.Duration
	Volume     int
	QueueSize  int
	QueueIndex int
}

// Config represents session configuration.
type Config struct {
	// OnStatus is called from the loop after every command and event.
	OnStatus func(Status)
	// Notifications receives every playback event when set.
	Notifications *notification.Manager
}

type request struct {
	line  string
	w     io.Writer
	reply chan reply
}

type reply struct {
	quit bool
	err  error
}

// Manager runs the command loop.
// Commands from the prompt and from remote clients are serialized through it,
// so the queue and the controller are only touched by the loop goroutine.
type Manager struct {
	dispatcher *command.Dispatcher
	controller *playback.Controller
	player     <-chan media.Event
	out        io.Writer
	config     Config

	requests chan request
	statuses chan chan Status
	done     chan struct{}
}

// NewManager creates a new session manager.
// Background output (track changes, playback errors) goes to out.
func NewManager(dispatcher *command.Dispatcher, controller *playback.Controller, playerEvents <-chan media.Event, out io.Writer, config Config) *Manager {
	return &Manager{
		dispatcher: dispatcher,
		controller: controller,
		player:     playerEvents,
		out:        out,
		config:     config,
		requests:   make(chan request),
		statuses:   make(chan chan Status),
		done:       make(chan struct{}),
	}
}

// Run processes commands and events until ctx is cancelled or a command quits.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)
	zlog.Info().Msg("session: loop started")
	m.notifyStatus()

	for {
		select {
		case <-ctx.Done():
			zlog.Info().Msg("session: loop cancelled")
			return nil

		case req := <-m.requests:
			quit, err := m.dispatcher.Execute(ctx, req.line, req.w)
			command.Report(req.w, err)
			m.drainEvents(req.w)
			req.reply <- reply{quit: quit, err: err}
			m.notifyStatus()
			if quit {
				zlog.Info().Msg("session: quit requested")
				return nil
			}

		case ev := <-m.player:
			zlog.Debug().Msgf("session: player event: type=%s reason=%s entry=%d", ev.Type, ev.Reason, ev.EntryID)
			m.controller.HandlePlayerEvent(ctx, ev)
			m.drainEvents(m.out)
			m.notifyStatus()

		case ev, ok := <-m.controller.Events():
			if !ok {
				return nil
			}
			m.render(m.out, ev)
			m.notifyStatus()

		case ch := <-m.statuses:
			ch <- m.status()
		}
	}
}

// Submit runs one input line in the loop and waits for it to finish.
// Output is written to w from the loop goroutine; w must not be used until Submit returns.
func (m *Manager) Submit(ctx context.Context, line string, w io.Writer) (bool, error) {
	req := request{line: line, w: w, reply: make(chan reply, 1)}
	select {
	case m.requests <- req:
	case <-m.done:
		return false, ErrSessionNotRunning
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.quit, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Status returns the current playback status.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	ch := make(chan Status, 1)
	select {
	case m.statuses <- ch:
	case <-m.done:
		return Status{}, ErrSessionNotRunning
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}

	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// Done is closed when the loop has exited.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close stops playback and terminates the player process.
// It must be called after Run has returned.
func (m *Manager) Close() error {
	return m.controller.Close()
}

func (m *Manager) status() Status {
	q := m.controller.Queue()
	s := Status{
		State:      m.controller.State(),
		Volume:     m.controller.Volume(),
		QueueSize:  q.Len(),
		QueueIndex: q.Index(),
	}
	if t, ok := m.controller.Current(); ok {
		s.Track = &t
		s.Position, s.Duration = m.controller.Position()
		if s.Duration == 0 {
			s.Duration = t.Duration
		}
	}
	return s
}

func (m *Manager) notifyStatus() {
	if m.config.OnStatus != nil {
		m.config.OnStatus(m.status())
	}
}

// drainEvents renders the controller events already queued.
func (m *Manager) drainEvents(w io.Writer) {
	for {
		select {
		case ev, ok := <-m.controller.Events():
			if !ok {
				return
			}
			m.render(w, ev)
		default:
			return
		}
	}
}

func (m *Manager) render(w io.Writer, ev playback.Event) {
	zlog.Debug().Msgf("session: playback event: type=%s state=%s", ev.Type, ev.State)
	p := ui.NewPrinter(w)

	switch ev.Type {
	case playback.EventTrackStarted:
		if ev.Track != nil {
			p.Success("▶ Now playing: %s (%s)", ev.Track.Title, ev.Track.Artist())
		}

	case playback.EventQueueExhausted:
		p.Warn("End of queue.")

	case playback.EventError:
		command.Report(w, ev.Err)

	case playback.EventTrackEnded, playback.EventStateChanged:
		// Reported by the command that caused them
	}

	m.broadcast(ev)
}

func (m *Manager) broadcast(ev playback.Event) {
	if m.config.Notifications == nil {
		return
	}

	n := notification.Notification{
		Type:  ev.Type.String(),
		State: ev.State.String(),
		Track: ev.Track,
	}
	if ev.Err != nil {
		n.Message = ev.Err.Error()
	}
	m.config.Notifications.Broadcast(n)
}
