// Package queue provides the ordered playback queue.
package queue

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/ytmusic/internal/domain/track"
)

// NoIndex is the index of an empty queue.
const NoIndex = -1

// ErrOutOfRange is returned when an index does not address a queued track.
var ErrOutOfRange = errors.New("queue index out of range")

// Queue is an ordered list of tracks with a current position.
// The index is always within bounds, or NoIndex when the queue is empty.
// A Queue is owned by a single goroutine and is not safe for concurrent use.
type Queue struct {
	tracks []track.Track
	index  int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		tracks: make([]track.Track, 0),
		index:  NoIndex,
	}
}

// Add appends a track. Adding to an empty queue points the index at it.
func (q *Queue) Add(t track.Track) {
	q.tracks = append(q.tracks, t)
	if q.index == NoIndex {
		q.index = 0
	}
}

// Replace replaces the whole queue and moves the index to the first track.
func (q *Queue) Replace(tracks []track.Track) {
	q.tracks = make([]track.Track, len(tracks))
	copy(q.tracks, tracks)
	if len(q.tracks) == 0 {
		q.index = NoIndex
		return
	}
	q.index = 0
}

// Next moves to the next track. It reports false at the end of the queue.
func (q *Queue) Next() bool {
	if q.index == NoIndex || q.index >= len(q.tracks)-1 {
		return false
	}
	q.index++
	return true
}

// Prev moves to the previous track. It reports false at the start of the queue.
func (q *Queue) Prev() bool {
	if q.index <= 0 {
		return false
	}
	q.index--
	return true
}

// PeekNext returns the track after the current one without moving.
func (q *Queue) PeekNext() (track.Track, bool) {
	return q.At(q.index + 1)
}

// PeekPrev returns the track before the current one without moving.
func (q *Queue) PeekPrev() (track.Track, bool) {
	if q.index <= 0 {
		return track.Track{}, false
	}
	return q.At(q.index - 1)
}

// Jump moves the index to i.
func (q *Queue) Jump(i int) error {
	if i < 0 || i >= len(q.tracks) {
		return errors.Wrapf(ErrOutOfRange, "index %d (queue length %d)", i, len(q.tracks))
	}
	q.index = i
	return nil
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.tracks = make([]track.Track, 0)
	q.index = NoIndex
}

// Current returns the track at the current index.
func (q *Queue) Current() (track.Track, bool) {
	return q.At(q.index)
}

// At returns the track at index i.
func (q *Queue) At(i int) (track.Track, bool) {
	if i < 0 || i >= len(q.tracks) {
		return track.Track{}, false
	}
	return q.tracks[i], true
}

// Index returns the current index, or NoIndex when the queue is empty.
func (q *Queue) Index() int {
	return q.index
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Remaining returns the number of tracks after the current one.
func (q *Queue) Remaining() int {
	if q.index == NoIndex {
		return 0
	}
	return len(q.tracks) - q.index - 1
}

// Tracks returns a copy of the queued tracks.
func (q *Queue) Tracks() []track.Track {
	result := make([]track.Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// TotalDuration returns the total duration of all queued tracks.
func (q *Queue) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range q.tracks {
		total += t.Duration
	}
	return total
}
