// Package playback provides the player controller that drives the external
// media process from the playback queue.
package playback

// State represents the playback state.
type State int

const (
	StateStopped State = iota // Nothing loaded, or playback was stopped
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Active reports whether a track is loaded in the player.
func (s State) Active() bool {
	return s == StatePlaying || s == StatePaused
}
