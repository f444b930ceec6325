// Package playlist provides the album/playlist collection entity.
package playlist

import (
	"strconv"
	"time"

	"github.com/osa030/ytmusic/internal/domain/track"
)

// Kind distinguishes albums from user playlists.
type Kind string

const (
	KindAlbum    Kind = "album"
	KindPlaylist Kind = "playlist"
)

// Playlist represents an album or playlist returned by a catalog search.
// Tracks stays empty until the collection is expanded.
type Playlist struct {
	ID         string        // Catalog ID
	Name       string        // Album or playlist title
	Kind       Kind          // Album or playlist
	Owner      string        // Album artist or playlist author
	Year       string        // Release year (albums only)
	URL        string        // Catalog URL
	Source     track.Source  // Catalog the collection came from
	TrackCount int           // Number of tracks reported by the catalog (0 if unknown)
	Tracks     []track.Track // Tracks (filled on expansion)
}

// FormatYear formats a release year; 0 means unknown.
func FormatYear(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

// TotalDuration returns the total duration of the expanded tracks.
func (p *Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}

// Subtitle returns the secondary display line ("owner • year" for albums).
func (p *Playlist) Subtitle() string {
	owner := p.Owner
	if owner == "" {
		owner = track.UnknownArtist
	}
	if p.Kind == KindAlbum {
		if p.Year != "" {
			return owner + " • " + p.Year
		}
		return owner
	}
	return "by " + owner
}
