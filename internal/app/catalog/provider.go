// Package catalog provides music catalog search across providers.
package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/infra/lastfm"
	"github.com/osa030/ytmusic/internal/infra/spotify"
)

// Errors
var (
	ErrNoProvider = errors.New("no provider for source")
	ErrNoArtist   = errors.New("track has no artist")
)

// Kind is the kind of result a search returns.
type Kind int

const (
	KindSongs     Kind = iota // Individual tracks
	KindAlbums                // Albums
	KindPlaylists             // Playlists
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSongs:
		return "songs"
	case KindAlbums:
		return "albums"
	case KindPlaylists:
		return "playlists"
	default:
		return "unknown"
	}
}

// Results holds one search result set.
// Tracks is set for KindSongs, Playlists for the collection kinds.
type Results struct {
	Kind      Kind
	Query     string
	Provider  string // Display name of the provider that answered
	Tracks    []track.Track
	Playlists []playlist.Playlist
}

// Len returns the number of results.
func (r Results) Len() int {
	if r.Kind == KindSongs {
		return len(r.Tracks)
	}
	return len(r.Playlists)
}

// IsEmpty reports whether there are no results.
func (r Results) IsEmpty() bool {
	return r.Len() == 0
}

// Provider is the interface for catalog providers.
type Provider interface {
	// Search searches the catalog. An empty result is not an error.
	Search(ctx context.Context, query string, kind Kind, limit int) (Results, error)

	// Expand lists the tracks of an album or playlist found by this provider.
	Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error)

	// Source returns the source of the items this provider returns.
	Source() track.Source

	// Name returns the provider name (used in config).
	Name() string
}

// YouTubeClient defines the yt-dlp operations needed by the YouTube provider.
type YouTubeClient interface {
	SearchSongs(ctx context.Context, query string, limit int) ([]track.Track, error)
	SearchVideos(ctx context.Context, query string, limit int) ([]track.Track, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]playlist.Playlist, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]playlist.Playlist, error)
	Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error)
}

// SpotifyClient defines the Spotify operations needed by the Spotify provider.
type SpotifyClient interface {
	GetTrack(ctx context.Context, trackID string) (*track.Track, error)
	GetPlaylist(ctx context.Context, playlistID string) (*playlist.Playlist, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]track.Track, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]playlist.Playlist, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]playlist.Playlist, error)
	GetAlbumTracks(ctx context.Context, album playlist.Playlist) ([]track.Track, error)
	GetPlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error)
}

// LastFmClient defines the Last.fm operations needed by the similar-track finder.
type LastFmClient interface {
	GetSimilarTracks(ctx context.Context, trackName, artistName string, limit int) ([]lastfm.SimilarTrack, error)
	GetTopTags(ctx context.Context, trackName, artistName string, limit int) ([]lastfm.Tag, error)
	GetTopTracks(ctx context.Context, tagName string, limit int) ([]lastfm.TopTrack, error)
}

// SpotifyFactory creates a Spotify client.
type SpotifyFactory func(ctx context.Context, cfg spotify.Config) (SpotifyClient, error)
