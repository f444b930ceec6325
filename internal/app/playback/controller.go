package playback

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/app/queue"
	"github.com/osa030/ytmusic/internal/domain/media"
	"github.com/osa030/ytmusic/internal/domain/track"
)

// Errors
var (
	ErrNothingToPlay = errors.New("nothing to play")
	ErrQueueEmpty    = errors.New("queue is empty")
	ErrNotPlaying    = errors.New("nothing playing")
	ErrNotPaused     = errors.New("not paused")
	ErrEndOfQueue    = errors.New("end of queue")
	ErrStartOfQueue  = errors.New("beginning of queue")
	ErrPlayerExited  = errors.New("player process exited")
)

// Volume bounds.
const (
	MinVolume = 0
	MaxVolume = 100
)

// Player is the external media process.
type Player interface {
	// Load replaces the current file with url and starts playing it unpaused.
	// The returned entry ID tags the media events that belong to this load.
	Load(ctx context.Context, url string) (media.EntryID, error)
	SetPause(paused bool) error
	SeekTo(position time.Duration) error
	SetVolume(volume int) error
	// Stop unloads the current file; the process stays alive.
	Stop() error
	Position() (time.Duration, error)
	Duration() (time.Duration, error)
	Events() <-chan media.Event
	Close() error
}

// Resolver turns a track into a playable stream URL.
type Resolver interface {
	Resolve(ctx context.Context, t track.Track) (string, error)
}

// Config holds controller configuration.
type Config struct {
	Volume int // Initial volume (0-100)
}

// Controller drives the player from the queue.
// It is owned by the session loop and is not safe for concurrent use.
type Controller struct {
	queue    *queue.Queue
	player   Player
	resolver Resolver

	state    State
	volume   int
	entry    media.EntryID // Entry ID of the loaded file
	finished bool          // The track at the queue position played to its end

	eventCh chan Event
}

// NewController creates a new playback controller.
func NewController(q *queue.Queue, player Player, resolver Resolver, config Config) *Controller {
	c := &Controller{
		queue:    q,
		player:   player,
		resolver: resolver,
		state:    StateStopped,
		volume:   clampVolume(config.Volume),
		eventCh:  make(chan Event, 16),
	}
	if err := player.SetVolume(c.volume); err != nil {
		zlog.Warn().Msgf("playback: failed to apply initial volume: volume=%d error=%v", c.volume, err)
	}
	return c
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Queue returns the controlled queue.
func (c *Controller) Queue() *queue.Queue {
	return c.queue
}

// State returns the current playback state.
func (c *Controller) State() State {
	return c.state
}

// Volume returns the current volume.
func (c *Controller) Volume() int {
	return c.volume
}

// Current returns the track at the queue position.
func (c *Controller) Current() (track.Track, bool) {
	return c.queue.Current()
}

// PlayTracks replaces the queue with tracks and plays tracks[start].
// The queue is only replaced once the stream for tracks[start] is loaded.
func (c *Controller) PlayTracks(ctx context.Context, tracks []track.Track, start int) error {
	if len(tracks) == 0 {
		return ErrNothingToPlay
	}
	if start < 0 || start >= len(tracks) {
		return errors.Wrapf(queue.ErrOutOfRange, "start %d (tracks %d)", start, len(tracks))
	}

	t := tracks[start]
	if err := c.load(ctx, t); err != nil {
		return err
	}

	c.queue.Replace(tracks)
	if err := c.queue.Jump(start); err != nil {
		return err
	}
	c.started(t)
	return nil
}

// Add appends a track to the queue without touching playback.
func (c *Controller) Add(t track.Track) {
	c.queue.Add(t)
}

// Start plays the track at the queue position when stopped, resumes when paused.
// After the queue ran out, tracks added since then are played first.
func (c *Controller) Start(ctx context.Context) error {
	switch c.state {
	case StatePlaying:
		return nil
	case StatePaused:
		return c.Resume()
	}

	if c.finished && c.queue.Remaining() > 0 {
		return c.Next(ctx)
	}

	t, ok := c.queue.Current()
	if !ok {
		return ErrQueueEmpty
	}
	if err := c.load(ctx, t); err != nil {
		return err
	}
	c.started(t)
	return nil
}

// Pause pauses the current playback.
func (c *Controller) Pause() error {
	if c.state != StatePlaying {
		return ErrNotPlaying
	}
	if err := c.player.SetPause(true); err != nil {
		return errors.Wrap(err, "failed to pause")
	}
	c.setState(StatePaused)
	return nil
}

// Resume resumes paused playback.
func (c *Controller) Resume() error {
	if c.state != StatePaused {
		return ErrNotPaused
	}
	if err := c.player.SetPause(false); err != nil {
		return errors.Wrap(err, "failed to resume")
	}
	c.setState(StatePlaying)
	return nil
}

// TogglePause pauses or resumes and returns the resulting state.
func (c *Controller) TogglePause() (State, error) {
	var err error
	switch c.state {
	case StatePlaying:
		err = c.Pause()
	case StatePaused:
		err = c.Resume()
	default:
		err = ErrNotPlaying
	}
	return c.state, err
}

// Next plays the next track in the queue.
func (c *Controller) Next(ctx context.Context) error {
	t, ok := c.queue.PeekNext()
	if !ok {
		return ErrEndOfQueue
	}
	if err := c.load(ctx, t); err != nil {
		return err
	}
	c.queue.Next()
	c.started(t)
	return nil
}

// Prev plays the previous track in the queue.
func (c *Controller) Prev(ctx context.Context) error {
	t, ok := c.queue.PeekPrev()
	if !ok {
		return ErrStartOfQueue
	}
	if err := c.load(ctx, t); err != nil {
		return err
	}
	c.queue.Prev()
	c.started(t)
	return nil
}

// Stop stops playback. The queue position is kept.
func (c *Controller) Stop() error {
	if c.state == StateStopped {
		return nil
	}
	if err := c.player.Stop(); err != nil {
		return errors.Wrap(err, "failed to stop")
	}
	c.entry = 0
	c.setState(StateStopped)
	return nil
}

// Clear stops playback if needed and empties the queue.
func (c *Controller) Clear() error {
	if err := c.Stop(); err != nil {
		return err
	}
	c.queue.Clear()
	c.finished = false
	return nil
}

// Seek moves the playback position by delta, clamped to [0, duration].
// It returns the new position.
func (c *Controller) Seek(delta time.Duration) (time.Duration, error) {
	if !c.state.Active() {
		return 0, ErrNotPlaying
	}

	pos, err := c.player.Position()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read position")
	}
	dur := c.duration()

	target := pos + delta
	if target < 0 {
		target = 0
	}
	if dur > 0 && target > dur {
		target = dur
	}

	if err := c.player.SeekTo(target); err != nil {
		return 0, errors.Wrap(err, "failed to seek")
	}
	return target, nil
}

// SetVolume sets the volume, clamped to 0-100, and returns the applied value.
func (c *Controller) SetVolume(volume int) (int, error) {
	volume = clampVolume(volume)
	if err := c.player.SetVolume(volume); err != nil {
		return c.volume, errors.Wrap(err, "failed to set volume")
	}
	c.volume = volume
	return volume, nil
}

// Position returns the playback position and duration of the loaded track.
// Both are zero when stopped.
func (c *Controller) Position() (time.Duration, time.Duration) {
	if !c.state.Active() {
		return 0, 0
	}
	pos, err := c.player.Position()
	if err != nil {
		zlog.Debug().Msgf("playback: position unavailable: %v", err)
		pos = 0
	}
	return pos, c.duration()
}

// HandlePlayerEvent applies an event reported by the player process.
// A track that ran out advances the queue, or stops playback at the end of it.
func (c *Controller) HandlePlayerEvent(ctx context.Context, ev media.Event) {
	switch ev.Type {
	case media.EventProcessExited:
		if c.state == StateStopped {
			return
		}
		c.entry = 0
		c.state = StateStopped
		err := ErrPlayerExited
		if ev.Err != nil {
			err = errors.WithSecondaryError(ErrPlayerExited, ev.Err)
		}
		c.sendEvent(Event{Type: EventError, State: c.state, Err: err})

	case media.EventEndOfFile:
		if !ev.Finished() || !c.state.Active() {
			return
		}
		if ev.EntryID != 0 && c.entry != 0 && ev.EntryID != c.entry {
			zlog.Debug().Msgf("playback: ignoring end of stale entry: entry=%d current=%d", ev.EntryID, c.entry)
			return
		}
		c.onTrackEnd(ctx, ev)
	}
}

// Close stops the player process and closes the event channel.
func (c *Controller) Close() error {
	c.state = StateStopped
	err := c.player.Close()
	close(c.eventCh)
	return err
}

func (c *Controller) onTrackEnd(ctx context.Context, ev media.Event) {
	ended, _ := c.queue.Current()
	if ev.Reason == media.ReasonError {
		zlog.Warn().Msgf("playback: track failed in player: track=%s error=%v", ended.Title, ev.Err)
	}
	c.sendEvent(Event{
		Type:  EventTrackEnded,
		Track: &ended,
		State: c.state,
	})

	next, ok := c.queue.PeekNext()
	if !ok {
		c.entry = 0
		c.state = StateStopped
		c.finished = true
		c.sendEvent(Event{Type: EventQueueExhausted, State: c.state})
		return
	}

	if err := c.load(ctx, next); err != nil {
		c.entry = 0
		c.state = StateStopped
		c.sendEvent(Event{Type: EventError, Track: &next, State: c.state, Err: err})
		return
	}
	c.queue.Next()
	c.started(next)
}

// load resolves the stream for t and hands it to the player.
// Nothing is changed when either step fails.
func (c *Controller) load(ctx context.Context, t track.Track) error {
	url, err := c.resolver.Resolve(ctx, t)
	if err != nil {
		return errors.Wrapf(err, "cannot stream %q", t.Title)
	}

	entry, err := c.player.Load(ctx, url)
	if err != nil {
		return errors.Wrapf(err, "failed to load %q", t.Title)
	}
	c.entry = entry

	zlog.Debug().Msgf("playback: loaded track: id=%s title=%s entry=%d", t.ID, t.Title, entry)
	return nil
}

func (c *Controller) started(t track.Track) {
	c.state = StatePlaying
	c.finished = false
	c.sendEvent(Event{
		Type:  EventTrackStarted,
		Track: &t,
		State: c.state,
	})
}

func (c *Controller) setState(s State) {
	c.state = s
	current, ok := c.queue.Current()
	ev := Event{Type: EventStateChanged, State: s}
	if ok {
		ev.Track = &current
	}
	c.sendEvent(ev)
}

// duration returns the player-reported duration, falling back to track metadata.
func (c *Controller) duration() time.Duration {
	dur, err := c.player.Duration()
	if err == nil && dur > 0 {
		return dur
	}
	if t, ok := c.queue.Current(); ok {
		return t.Duration
	}
	return 0
}

// sendEvent sends an event without blocking.
func (c *Controller) sendEvent(e Event) {
	select {
	case c.eventCh <- e:
	default:
		zlog.Debug().Msgf("playback: event channel full, dropping event: type=%s", e.Type)
	}
}

func clampVolume(v int) int {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}
