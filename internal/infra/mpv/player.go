package mpv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/domain/media"
)

// Errors
var (
	ErrNotFound   = errors.New("mpv not found in PATH")
	ErrNotRunning = errors.New("mpv is not running")
)

const (
	defaultCommandTimeout = 5 * time.Second
	defaultStartTimeout   = 5 * time.Second
	quitTimeout           = 2 * time.Second
)

// Config represents mpv process configuration.
type Config struct {
	Path         string        // Executable name or path
	SocketDir    string        // Directory for the IPC socket (default: os.TempDir())
	ExtraArgs    []string      // Additional mpv arguments
	StartTimeout time.Duration // How long to wait for the IPC socket
}

// process is one running mpv instance.
type process struct {
	cmd    *exec.Cmd
	client *Client
	socket string
	exited chan struct{}
}

// Player runs a single idle mpv process and controls it over IPC.
// The process is started on the first Load and restarted after it exits.
type Player struct {
	config Config

	mu      sync.Mutex
	proc    *process
	volume  int
	closing bool

	events chan media.Event
	closed chan struct{}
}

// NewPlayer creates a player. No process is started until the first Load.
func NewPlayer(config Config) *Player {
	if config.Path == "" {
		config.Path = "mpv"
	}
	if config.StartTimeout <= 0 {
		config.StartTimeout = defaultStartTimeout
	}
	return &Player{
		config: config,
		volume: 100,
		events: make(chan media.Event, eventBufferCapacity),
		closed: make(chan struct{}),
	}
}

// LookPath resolves the mpv executable.
func LookPath(path string) (string, error) {
	if path == "" {
		path = "mpv"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", errors.Wrapf(ErrNotFound, "%s", path)
	}
	return resolved, nil
}

// Events returns media events for whichever process is current.
func (p *Player) Events() <-chan media.Event {
	return p.events
}

// Running reports whether an mpv process is up.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.proc != nil
}

// Load replaces the current file with url and starts playing it.
func (p *Player) Load(ctx context.Context, url string) (media.EntryID, error) {
	client, err := p.ensure(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := client.Command(ctx, "loadfile", url, "replace"); err != nil {
		return 0, err
	}
	if _, err := client.Command(ctx, "set_property", "pause", false); err != nil {
		return 0, err
	}

	// With "replace" the new file is the only playlist entry.
	var id int64
	data, err := client.Command(ctx, "get_property", "playlist/0/id")
	if err == nil {
		if err := json.Unmarshal(data, &id); err != nil {
			zlog.Debug().Msgf("mpv: unexpected playlist entry id %s", string(data))
		}
	} else {
		zlog.Debug().Msgf("mpv: playlist entry id unavailable: %v", err)
	}
	return media.EntryID(id), nil
}

// SetPause pauses or unpauses the current file.
func (p *Player) SetPause(paused bool) error {
	return p.setProperty("pause", paused)
}

// SeekTo seeks to an absolute position.
func (p *Player) SeekTo(position time.Duration) error {
	client, err := p.current()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
	defer cancel()
	_, err = client.Command(ctx, "seek", position.Seconds(), "absolute")
	return err
}

// SetVolume sets the volume. Without a process it is kept for the next start.
func (p *Player) SetVolume(volume int) error {
	p.mu.Lock()
	p.volume = volume
	running := p.proc != nil
	p.mu.Unlock()

	if !running {
		return nil
	}
	return p.setProperty("volume", volume)
}

// Stop unloads the current file. The process stays alive.
func (p *Player) Stop() error {
	client, err := p.current()
	if errors.Is(err, ErrNotRunning) {
		return nil
	}
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
	defer cancel()
	_, err = client.Command(ctx, "stop")
	return err
}

// Position returns the playback position.
func (p *Player) Position() (time.Duration, error) {
	return p.getSeconds("time-pos")
}

// Duration returns the duration of the current file.
func (p *Player) Duration() (time.Duration, error) {
	return p.getSeconds("duration")
}

// Close quits the mpv process and removes its socket.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return nil
	}
	p.closing = true
	proc := p.proc
	p.mu.Unlock()
	defer close(p.closed)

	if proc == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), quitTimeout)
	defer cancel()
	if _, err := proc.client.Command(ctx, "quit"); err != nil {
		zlog.Debug().Msgf("mpv: quit command failed: %v", err)
	}

	select {
	case <-proc.exited:
		return nil
	case <-time.After(quitTimeout):
		zlog.Warn().Msg("mpv: process did not quit, killing")
		if err := proc.cmd.Process.Kill(); err != nil {
			return errors.Wrap(err, "failed to kill mpv")
		}
		<-proc.exited
		return nil
	}
}

// ensure returns a client for a running process, starting one if needed.
func (p *Player) ensure(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closing {
		return nil, ErrNotRunning
	}
	if p.proc != nil {
		return p.proc.client, nil
	}

	proc, err := p.start(ctx)
	if err != nil {
		return nil, err
	}
	p.proc = proc
	return proc.client, nil
}

// start launches mpv in idle mode and connects to its socket. Called with mu held.
func (p *Player) start(ctx context.Context) (*process, error) {
	path, err := LookPath(p.config.Path)
	if err != nil {
		return nil, err
	}

	socket := socketPath(p.config.SocketDir)
	cmd := exec.Command(path, buildArgs(socket, p.volume, p.config.ExtraArgs)...)
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start mpv")
	}
	zlog.Debug().Msgf("mpv: started: pid=%d socket=%s", cmd.Process.Pid, socket)

	dialCtx, cancel := context.WithTimeout(ctx, p.config.StartTimeout)
	defer cancel()
	client, err := Dial(dialCtx, socket)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		_ = os.Remove(socket)
		return nil, err
	}

	proc := &process{
		cmd:    cmd,
		client: client,
		socket: socket,
		exited: make(chan struct{}),
	}
	go p.forward(client)
	go p.wait(proc)
	return proc, nil
}

// forward relays client events to the player channel.
func (p *Player) forward(client *Client) {
	for ev := range client.Events() {
		p.emit(ev)
	}
}

// wait reaps the process and reports unexpected exits.
func (p *Player) wait(proc *process) {
	err := proc.cmd.Wait()
	_ = proc.client.Close()
	_ = os.Remove(proc.socket)

	p.mu.Lock()
	if p.proc == proc {
		p.proc = nil
	}
	closing := p.closing
	p.mu.Unlock()
	close(proc.exited)

	if closing {
		return
	}
	zlog.Warn().Msgf("mpv: process exited: %v", err)
	ev := media.Event{Type: media.EventProcessExited}
	if err != nil {
		ev.Err = errors.Wrap(err, "mpv exited")
	}
	p.emit(ev)
}

func (p *Player) emit(ev media.Event) {
	select {
	case p.events <- ev:
	case <-p.closed:
	}
}

func (p *Player) current() (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.proc == nil {
		return nil, ErrNotRunning
	}
	return p.proc.client, nil
}

func (p *Player) setProperty(name string, value any) error {
	client, err := p.current()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
	defer cancel()
	_, err = client.Command(ctx, "set_property", name, value)
	return err
}

func (p *Player) getSeconds(name string) (time.Duration, error) {
	client, err := p.current()
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
	defer cancel()
	data, err := client.Command(ctx, "get_property", name)
	if err != nil {
		return 0, err
	}
	return decodeSeconds(data)
}

// buildArgs returns the mpv command line for an idle, audio-only process.
func buildArgs(socket string, volume int, extra []string) []string {
	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server=" + socket,
		fmt.Sprintf("--volume=%d", volume),
	}
	return append(args, extra...)
}

func socketPath(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ytmusic-mpv-"+uuid.NewString()+".sock")
}
