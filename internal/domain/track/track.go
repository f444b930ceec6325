// Package track provides the Track domain entity.
package track

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies the catalog a track was fetched from.
type Source string

const (
	SourceYouTube Source = "youtube"
	SourceSpotify Source = "spotify"
	SourceLastFM  Source = "lastfm"
)

// UnknownArtist is displayed when a track carries no artist names.
const UnknownArtist = "Unknown Artist"

// Track represents a single playable audio item.
// Tracks are values and are never mutated once returned by a catalog.
type Track struct {
	ID       string        // Catalog track ID (YouTube video ID, Spotify ID, empty for Last.fm)
	Title    string        // Track title
	Artists  []string      // Artist names
	Album    string        // Album name (optional)
	Duration time.Duration // Track duration (zero if unknown)
	URL      string        // Canonical catalog URL
	Source   Source        // Catalog the track came from
}

// Artist returns the artist names joined for display.
func (t Track) Artist() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	if len(names) == 0 {
		return UnknownArtist
	}
	return strings.Join(names, ", ")
}

// Query returns the "artist - title" search string used to find a stream
// for tracks that have no YouTube video ID.
func (t Track) Query() string {
	if len(t.Artists) == 0 {
		return t.Title
	}
	return t.Artist() + " - " + t.Title
}

// HasVideoID reports whether the track can be streamed by its own ID.
func (t Track) HasVideoID() bool {
	return t.Source == SourceYouTube && t.ID != ""
}

// FormatDuration formats a duration as m:ss or h:mm:ss.
// Zero durations are rendered as "--:--".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "--:--"
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
