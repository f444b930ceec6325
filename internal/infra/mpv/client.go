// Package mpv drives an idle mpv process over its JSON IPC socket.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/domain/media"
)

// Errors
var (
	ErrClosed          = errors.New("mpv connection closed")
	ErrPropertyUnavail = errors.New("property unavailable")
)

const (
	errSuccess          = "success"
	maxMessageSize      = 1 << 20
	eventBufferCapacity = 32
)

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// message is either a command reply or an event.
type message struct {
	RequestID       *int64          `json:"request_id,omitempty"`
	Error           string          `json:"error,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	Event           string          `json:"event,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	PlaylistEntryID int64           `json:"playlist_entry_id,omitempty"`
	FileError       string          `json:"file_error,omitempty"`
}

// Client is a connection to one mpv IPC socket.
// Commands may be issued from any goroutine; replies are matched by request ID.
type Client struct {
	conn net.Conn

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan message
	err     error

	events chan media.Event
	done   chan struct{}
}

// Dial connects to the socket, retrying until ctx is done.
// mpv creates the socket shortly after start, so the first attempts usually fail.
func Dial(ctx context.Context, socket string) (*Client, error) {
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return newClient(conn), nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(err, "failed to connect to mpv socket %s", socket)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func newClient(conn net.Conn) *Client {
	c := &Client{
		conn:    conn,
		pending: make(map[int64]chan message),
		events:  make(chan media.Event, eventBufferCapacity),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Events returns end-of-file events. The channel is closed when the connection ends.
func (c *Client) Events() <-chan media.Event {
	return c.events
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Command sends a command and waits for its reply data.
func (c *Client) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.nextID++
	id := c.nextID
	replyCh := make(chan message, 1)
	c.pending[id] = replyCh

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err == nil {
		payload = append(payload, '\n')
		_, err = c.conn.Write(payload)
	}
	if err != nil {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, errors.Wrapf(err, "failed to send mpv command %v", args[0])
	}
	c.mu.Unlock()

	select {
	case reply, ok := <-replyCh:
		if !ok {
			return nil, ErrClosed
		}
		if reply.Error != errSuccess {
			if reply.Error == "property unavailable" {
				return nil, ErrPropertyUnavail
			}
			return nil, errors.Newf("mpv command %v failed: %s", args[0], reply.Error)
		}
		return reply.Data, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, errors.Wrapf(ctx.Err(), "mpv command %v", args[0])
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			zlog.Debug().Msgf("mpv: skipping malformed message: %v", err)
			continue
		}

		if msg.Event != "" {
			c.handleEvent(msg)
			continue
		}
		if msg.RequestID == nil {
			continue
		}

		c.mu.Lock()
		replyCh, ok := c.pending[*msg.RequestID]
		delete(c.pending, *msg.RequestID)
		c.mu.Unlock()
		if ok {
			replyCh <- msg
		}
	}

	err := scanner.Err()
	if err == nil {
		err = ErrClosed
	}

	c.mu.Lock()
	c.err = errors.Wrap(err, "mpv connection")
	for id, replyCh := range c.pending {
		close(replyCh)
		delete(c.pending, id)
	}
	c.mu.Unlock()
}

func (c *Client) handleEvent(msg message) {
	if msg.Event != "end-file" {
		return
	}

	ev := media.Event{
		Type:    media.EventEndOfFile,
		Reason:  msg.Reason,
		EntryID: media.EntryID(msg.PlaylistEntryID),
	}
	if msg.FileError != "" {
		ev.Err = errors.Newf("mpv: %s", msg.FileError)
	}

	// The reader must not block; replies are read on the same connection.
	select {
	case c.events <- ev:
	default:
		zlog.Warn().Msgf("mpv: event buffer full, dropping end-file event: reason=%s", msg.Reason)
	}
}

// decodeSeconds decodes a float seconds property.
func decodeSeconds(data json.RawMessage) (time.Duration, error) {
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return 0, errors.Wrap(err, "failed to decode seconds")
	}
	return time.Duration(secs * float64(time.Second)), nil
}
