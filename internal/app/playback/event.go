package playback

import "github.com/osa030/ytmusic/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted   EventType = iota // Track started playing
	EventTrackEnded                      // Track finished playing
	EventStateChanged                    // Playback state changed (pause/resume/stop)
	EventQueueExhausted                  // Last track finished, nothing left to play
	EventError                           // Background failure (auto-advance, player exit)
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventStateChanged:
		return "state_changed"
	case EventQueueExhausted:
		return "queue_exhausted"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Track *track.Track // Track concerned (nil for some events)
	State State        // Playback state after the event
	Err   error        // Failure detail (EventError only)
}
