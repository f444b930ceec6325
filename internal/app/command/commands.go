package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/ytmusic/internal/app/catalog"
	"github.com/osa030/ytmusic/internal/app/playback"
	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/ui"
)

// Builtins returns the prompt commands.
func Builtins() []*Command {
	return []*Command{
		{Name: "search", Aliases: []string{"s"}, Usage: "search <query>", Description: "Search songs", Handler: (*Dispatcher).searchSongs},
		{Name: "sa", Aliases: []string{"albums"}, Usage: "sa <query>", Description: "Search albums", Handler: (*Dispatcher).searchAlbums},
		{Name: "sp", Aliases: []string{"playlists"}, Usage: "sp <query>", Description: "Search playlists", Handler: (*Dispatcher).searchPlaylists},
		{Name: "play", Aliases: []string{"p"}, Usage: "play [n]", Description: "Play song n, or start/resume the queue", Handler: (*Dispatcher).play},
		{Name: "add", Aliases: []string{"a"}, Usage: "add <n>", Description: "Add song n to the queue", Handler: (*Dispatcher).add},
		{Name: "playall", Aliases: []string{"pa"}, Usage: "playall", Description: "Play all song results", Handler: (*Dispatcher).playAll},
		{Name: "open", Aliases: []string{"o"}, Usage: "open <n>", Description: "List the songs of album/playlist n", Handler: (*Dispatcher).open},
		{Name: "similar", Aliases: []string{"sim"}, Usage: "similar", Description: "Find songs similar to the current one", Handler: (*Dispatcher).similarSongs},
		{Name: "pause", Aliases: []string{"space"}, Usage: "pause", Description: "Pause/resume", Handler: (*Dispatcher).pause},
		{Name: "next", Aliases: []string{"n"}, Usage: "next", Description: "Next track", Handler: (*Dispatcher).next},
		{Name: "prev", Aliases: []string{"b"}, Usage: "prev", Description: "Previous track", Handler: (*Dispatcher).prev},
		{Name: "stop", Usage: "stop", Description: "Stop playback", Handler: (*Dispatcher).stop},
		{Name: "queue", Aliases: []string{"q"}, Usage: "queue", Description: "Show queue", Handler: (*Dispatcher).showQueue},
		{Name: "clear", Aliases: []string{"cq"}, Usage: "clear", Description: "Clear queue", Handler: (*Dispatcher).clear},
		{Name: "seek", Usage: "+ / - / seek <±sec>", Description: "Seek by the step or by sec seconds (+30, -5)", Handler: (*Dispatcher).seek},
		{Name: "volume", Aliases: []string{"v", "vol"}, Usage: "volume <0-100>", Description: "Set volume", Handler: (*Dispatcher).volume},
		{Name: "status", Aliases: []string{"np", "now"}, Usage: "status", Description: "Show now playing", Handler: (*Dispatcher).status},
		{Name: "cls", Usage: "cls", Description: "Clear screen", Handler: (*Dispatcher).cls},
		{Name: "help", Aliases: []string{"h"}, Usage: "help", Description: "Show this help", Handler: (*Dispatcher).help},
		{Name: "exit", Aliases: []string{"x", "quit"}, Usage: "exit", Description: "Quit", Handler: (*Dispatcher).exit},
	}
}

// NewDefaultRegistry creates a registry holding the builtin commands.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, cmd := range Builtins() {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
	return r
}

func (d *Dispatcher) searchSongs(ctx context.Context, p *ui.Printer, arg string) error {
	return d.search(ctx, p, arg, catalog.KindSongs, "search <query>")
}

func (d *Dispatcher) searchAlbums(ctx context.Context, p *ui.Printer, arg string) error {
	return d.search(ctx, p, arg, catalog.KindAlbums, "sa <query>")
}

func (d *Dispatcher) searchPlaylists(ctx context.Context, p *ui.Printer, arg string) error {
	return d.search(ctx, p, arg, catalog.KindPlaylists, "sp <query>")
}

func (d *Dispatcher) search(ctx context.Context, p *ui.Printer, query string, kind catalog.Kind, usage string) error {
	if query == "" {
		p.Warn("Usage: %s", usage)
		return nil
	}

	p.Info("Searching for '%s'...", query)
	results, err := d.catalog.Search(ctx, query, kind, d.config.SearchLimit)
	if err != nil {
		return errors.Wrap(err, "error searching")
	}
	d.results = results
	d.showResults(p)
	return nil
}

func (d *Dispatcher) play(ctx context.Context, p *ui.Printer, arg string) error {
	if arg == "" {
		return d.controller.Start(ctx)
	}

	n, ok := parseNumber(arg)
	if !ok {
		p.Warn("Usage: play <number>")
		return nil
	}
	t, err := d.song(n)
	if err != nil {
		return err
	}

	p.Info("Loading: %s...", t.Title)
	return d.controller.PlayTracks(ctx, []track.Track{t}, 0)
}

func (d *Dispatcher) add(ctx context.Context, p *ui.Printer, arg string) error {
	n, ok := parseNumber(arg)
	if !ok {
		p.Warn("Usage: add <number>")
		return nil
	}
	t, err := d.song(n)
	if err != nil {
		return err
	}

	d.controller.Add(t)
	p.Success("Added to queue: %s", t.Title)
	return nil
}

func (d *Dispatcher) playAll(ctx context.Context, p *ui.Printer, _ string) error {
	if d.results.Kind != catalog.KindSongs {
		return errors.Mark(ErrSongsOnly, ErrInvalidSelection)
	}
	tracks := d.results.Tracks
	if len(tracks) == 0 {
		return playback.ErrNothingToPlay
	}

	p.Info("Loading: %s...", tracks[0].Title)
	if err := d.controller.PlayTracks(ctx, tracks, 0); err != nil {
		return err
	}
	p.Success("Added %d tracks to queue.", len(tracks))
	return nil
}

func (d *Dispatcher) open(ctx context.Context, p *ui.Printer, arg string) error {
	n, ok := parseNumber(arg)
	if !ok {
		p.Warn("Usage: open <number>")
		return nil
	}
	if d.results.Kind == catalog.KindSongs {
		return errors.Wrap(ErrInvalidSelection, "not an album or playlist")
	}
	if n < 1 || n > len(d.results.Playlists) {
		return errors.Wrapf(ErrInvalidSelection, "no result %d", n)
	}

	pl := d.results.Playlists[n-1]
	p.Info("Opening '%s'...", pl.Name)
	tracks, err := d.catalog.Expand(ctx, pl)
	if err != nil {
		return err
	}
	pl.Tracks = tracks

	d.results = catalog.Results{
		Kind:     catalog.KindSongs,
		Query:    pl.Name,
		Provider: d.results.Provider,
		Tracks:   tracks,
	}
	d.showResults(p)
	if len(tracks) > 0 {
		p.Dim("%d tracks • %s", len(tracks), track.FormatDuration(pl.TotalDuration()))
	}
	return nil
}

func (d *Dispatcher) similarSongs(ctx context.Context, p *ui.Printer, _ string) error {
	if d.similar == nil {
		return ErrSimilarUnavailable
	}
	seed, ok := d.controller.Current()
	if !ok {
		return playback.ErrNotPlaying
	}

	p.Info("Finding songs similar to '%s'...", seed.Title)
	results, err := d.similar.Find(ctx, seed)
	if err != nil {
		return err
	}
	d.results = results
	d.showResults(p)
	return nil
}

func (d *Dispatcher) pause(ctx context.Context, p *ui.Printer, _ string) error {
	state, err := d.controller.TogglePause()
	if err != nil {
		return err
	}
	if state == playback.StatePaused {
		p.Success("Paused")
	} else {
		p.Success("Resumed")
	}
	return nil
}

func (d *Dispatcher) next(ctx context.Context, p *ui.Printer, _ string) error {
	return d.controller.Next(ctx)
}

func (d *Dispatcher) prev(ctx context.Context, p *ui.Printer, _ string) error {
	return d.controller.Prev(ctx)
}

func (d *Dispatcher) stop(ctx context.Context, p *ui.Printer, _ string) error {
	if err := d.controller.Stop(); err != nil {
		return err
	}
	p.Warn("Playback stopped.")
	return nil
}

func (d *Dispatcher) showQueue(ctx context.Context, p *ui.Printer, _ string) error {
	q := d.controller.Queue()
	p.Queue(q.Tracks(), q.Index(), q.TotalDuration())
	return nil
}

func (d *Dispatcher) clear(ctx context.Context, p *ui.Printer, _ string) error {
	if err := d.controller.Clear(); err != nil {
		return err
	}
	p.Warn("Queue cleared.")
	return nil
}

func (d *Dispatcher) seek(ctx context.Context, p *ui.Printer, arg string) error {
	delta, ok := parseSeek(arg, d.config.SeekStep)
	if !ok {
		p.Warn("Usage: seek <±seconds>")
		return nil
	}
	return d.seekBy(p, delta)
}

func (d *Dispatcher) seekBy(p *ui.Printer, delta time.Duration) error {
	pos, err := d.controller.Seek(delta)
	if err != nil {
		return err
	}
	arrow := ">>"
	if delta < 0 {
		arrow = "<<"
		delta = -delta
	}
	p.Dim("%s %s (%s)", arrow, delta, track.FormatDuration(pos))
	return nil
}

func (d *Dispatcher) volume(ctx context.Context, p *ui.Printer, arg string) error {
	if arg == "" {
		p.Dim("Volume: %d%%", d.controller.Volume())
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSuffix(arg, "%"))
	if err != nil {
		p.Warn("Usage: v <0-100>")
		return nil
	}
	applied, err := d.controller.SetVolume(v)
	if err != nil {
		return err
	}
	p.Dim("Volume: %d%%", applied)
	return nil
}

func (d *Dispatcher) status(ctx context.Context, p *ui.Printer, _ string) error {
	t, ok := d.controller.Current()
	if !ok {
		p.Warn("Nothing playing.")
		return nil
	}
	pos, dur := d.controller.Position()
	if dur == 0 {
		dur = t.Duration
	}
	p.NowPlaying(t, d.controller.State().String(), pos, dur)
	return nil
}

func (d *Dispatcher) cls(ctx context.Context, p *ui.Printer, _ string) error {
	p.ClearScreen()
	p.Header()
	return nil
}

func (d *Dispatcher) help(ctx context.Context, p *ui.Printer, _ string) error {
	p.Help(d.registry.HelpLines())
	return nil
}

func (d *Dispatcher) exit(ctx context.Context, p *ui.Printer, _ string) error {
	if err := d.controller.Stop(); err != nil {
		p.Error(err)
	}
	p.Goodbye()
	return ErrQuit
}

// song returns song result n (1-based).
func (d *Dispatcher) song(n int) (track.Track, error) {
	if d.results.Kind != catalog.KindSongs {
		return track.Track{}, errors.Mark(ErrSongsOnly, ErrInvalidSelection)
	}
	if n < 1 || n > len(d.results.Tracks) {
		return track.Track{}, errors.Wrapf(ErrInvalidSelection, "no result %d", n)
	}
	return d.results.Tracks[n-1], nil
}

func (d *Dispatcher) showResults(p *ui.Printer) {
	r := d.results
	if r.IsEmpty() {
		p.Warn("No results found.")
		return
	}

	heading := "Search Results:"
	if r.Provider != "" {
		heading = fmt.Sprintf("Search Results (%s):", r.Provider)
	}
	if r.Kind == catalog.KindSongs {
		p.Tracks(heading, r.Tracks)
	} else {
		p.Playlists(heading, r.Playlists)
	}
}

func parseNumber(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseSeek parses "+", "-", "+N", "-N" or "N" into a seek delta.
// A bare sign seeks by step.
func parseSeek(s string, step time.Duration) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "+":
		return step, true
	case "-":
		return -step, true
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// isSeekToken reports whether word is a seek shorthand ("+", "-", "+N", "-N").
func isSeekToken(word string) bool {
	if word == "" || (word[0] != '+' && word[0] != '-') {
		return false
	}
	for _, r := range word[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
