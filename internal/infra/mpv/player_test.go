package mpv

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ytmusic/internal/domain/media"
)

// attachFake wires a player to a fake IPC server without starting mpv.
func attachFake(t *testing.T, p *Player, f *fakeMPV) {
	t.Helper()
	client := dialFake(t, f)
	p.mu.Lock()
	p.proc = &process{client: client, socket: f.socket, exited: make(chan struct{})}
	p.mu.Unlock()
	go p.forward(client)
}

func TestBuildArgs(t *testing.T) {
	args := buildArgs("/tmp/x.sock", 65, []string{"--ao=pulse"})

	assert.Equal(t, []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server=/tmp/x.sock",
		"--volume=65",
		"--ao=pulse",
	}, args)
}

func TestSocketPath(t *testing.T) {
	a := socketPath("/run/user/1000")
	b := socketPath("/run/user/1000")

	assert.True(t, strings.HasPrefix(a, "/run/user/1000/ytmusic-mpv-"))
	assert.True(t, strings.HasSuffix(a, ".sock"))
	assert.NotEqual(t, a, b, "each process gets its own socket")
}

func TestLookPath_NotFound(t *testing.T) {
	_, err := LookPath("ytmusic-definitely-not-mpv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlayer_NotRunning(t *testing.T) {
	p := NewPlayer(Config{})

	assert.False(t, p.Running())
	assert.NoError(t, p.SetVolume(40), "volume is kept for the next start")
	assert.Equal(t, 40, p.volume)
	assert.NoError(t, p.Stop())
	assert.ErrorIs(t, p.SetPause(true), ErrNotRunning)
	assert.ErrorIs(t, p.SeekTo(time.Second), ErrNotRunning)
	_, err := p.Position()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.NoError(t, p.Close())
}

func TestPlayer_LoadMissingBinary(t *testing.T) {
	p := NewPlayer(Config{Path: "ytmusic-definitely-not-mpv"})

	_, err := p.Load(context.Background(), "https://stream.test/a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, p.Running())
}

func TestPlayer_Commands(t *testing.T) {
	f := newFakeMPV(t)
	p := NewPlayer(Config{})
	attachFake(t, p, f)
	ctx := context.Background()

	entry, err := p.Load(ctx, "https://stream.test/a")
	require.NoError(t, err)
	assert.Equal(t, media.EntryID(7), entry)

	require.NoError(t, p.SetPause(true))
	require.NoError(t, p.SetVolume(55))
	require.NoError(t, p.SeekTo(90*time.Second))
	require.NoError(t, p.Stop())

	pos, err := p.Position()
	require.NoError(t, err)
	assert.Equal(t, 12500*time.Millisecond, pos)

	dur, err := p.Duration()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, dur)

	assert.Equal(t, [][]any{
		{"loadfile", "https://stream.test/a", "replace"},
		{"set_property", "pause", false},
		{"get_property", "playlist/0/id"},
		{"set_property", "pause", true},
		{"set_property", "volume", float64(55)},
		{"seek", float64(90), "absolute"},
		{"stop"},
		{"get_property", "time-pos"},
		{"get_property", "duration"},
	}, f.recorded())
}

func TestPlayer_ForwardsEvents(t *testing.T) {
	f := newFakeMPV(t)
	p := NewPlayer(Config{})
	attachFake(t, p, f)

	_, err := p.Load(context.Background(), "https://stream.test/a")
	require.NoError(t, err)

	f.send(map[string]any{"event": "end-file", "reason": "eof", "playlist_entry_id": 7})

	select {
	case ev := <-p.Events():
		assert.True(t, ev.Finished())
		assert.Equal(t, media.EntryID(7), ev.EntryID)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}
}
