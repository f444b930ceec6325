// Package media defines the events reported by the external playback process.
package media

// EventType represents a media process event type.
type EventType int

const (
	EventEndOfFile     EventType = iota // Current file stopped playing
	EventProcessExited                  // Playback process went away
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventEndOfFile:
		return "end_of_file"
	case EventProcessExited:
		return "process_exited"
	default:
		return "unknown"
	}
}

// End-of-file reasons as reported by mpv.
const (
	ReasonEOF      = "eof"      // File played to the end
	ReasonStop     = "stop"     // Stopped or replaced by a new file
	ReasonQuit     = "quit"     // Player is quitting
	ReasonError    = "error"    // File could not be played
	ReasonRedirect = "redirect" // File was replaced by a playlist entry
)

// EntryID identifies one loaded file in the playback process.
// Zero means unknown.
type EntryID int64

// Event represents something the playback process reported.
type Event struct {
	Type    EventType
	Reason  string  // End-of-file reason (EventEndOfFile only)
	EntryID EntryID // Loaded file the event belongs to
	Err     error   // Failure detail (file errors, process exit)
}

// Finished reports whether the event means the track ran out on its own
// (as opposed to being stopped or replaced by us).
func (e Event) Finished() bool {
	return e.Type == EventEndOfFile && (e.Reason == ReasonEOF || e.Reason == ReasonError)
}
