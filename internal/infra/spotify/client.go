// Package spotify provides a client for the Spotify catalog API.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

// Client is a Spotify API client.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string
	// RefreshToken switches to user authorization, which also reaches the user's private playlists.
	RefreshToken string
}

// Scopes are the user scopes requested by the login helper.
var Scopes = []string{
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopeUserLibraryRead,
}

// NewAuthenticator creates the authorization-code authenticator for the user scopes.
func NewAuthenticator(cfg Config, redirectURL string) *spotifyauth.Authenticator {
	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(Scopes...),
	}
	if redirectURL != "" {
		opts = append(opts, spotifyauth.WithRedirectURL(redirectURL))
	}
	return spotifyauth.New(opts...)
}

// New creates a new Spotify client.
// Without a refresh token the client credentials flow is used and only public catalog data is reachable.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}

	// Tokens are fetched lazily and refreshed by the transport
	httpClient := httpClientFor(ctx, cfg)
	client := spotify.New(httpClient)

	market := cfg.Market
	if market == "" {
		market = "US"
	}

	return &Client{
		client:     client,
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

func httpClientFor(ctx context.Context, cfg Config) *http.Client {
	if cfg.RefreshToken != "" {
		return NewAuthenticator(cfg, "").Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return creds.Client(ctx)
}

// GetTrack retrieves track information by ID, URL, or URI.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*track.Track, error) {
	id := extractTrackID(trackID)

	var result *spotify.FullTrack
	err := c.retry(func() error {
		t, err := c.client.GetTrack(ctx, spotify.ID(id), spotify.Market(c.market))
		if err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get track")
	}

	t := convertTrack(&result.SimpleTrack, result.Album.Name)
	return &t, nil
}

// GetPlaylist retrieves playlist metadata by ID, URL, or URI.
func (c *Client) GetPlaylist(ctx context.Context, playlistID string) (*playlist.Playlist, error) {
	id := extractPlaylistID(playlistID)
	if id == "" {
		return nil, errors.New("invalid playlist URL")
	}

	var result *spotify.FullPlaylist
	err := c.retry(func() error {
		p, err := c.client.GetPlaylist(ctx, spotify.ID(id), spotify.Market(c.market))
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get playlist")
	}

	p := convertPlaylist(&result.SimplePlaylist)
	return &p, nil
}

// SearchTracks searches for tracks on Spotify.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]track.Track, error) {
	result, err := c.search(ctx, query, spotify.SearchTypeTrack, limit)
	if err != nil {
		return nil, err
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]track.Track, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		if t.ID == "" {
			continue
		}
		tracks = append(tracks, convertTrack(&t.SimpleTrack, t.Album.Name))
	}
	return tracks, nil
}

// SearchAlbums searches for albums on Spotify.
func (c *Client) SearchAlbums(ctx context.Context, query string, limit int) ([]playlist.Playlist, error) {
	result, err := c.search(ctx, query, spotify.SearchTypeAlbum, limit)
	if err != nil {
		return nil, err
	}
	if result.Albums == nil {
		return nil, nil
	}

	albums := make([]playlist.Playlist, 0, len(result.Albums.Albums))
	for _, a := range result.Albums.Albums {
		if a.ID == "" {
			continue
		}
		albums = append(albums, convertAlbum(&a))
	}
	return albums, nil
}

// SearchPlaylists searches for playlists on Spotify.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]playlist.Playlist, error) {
	result, err := c.search(ctx, query, spotify.SearchTypePlaylist, limit)
	if err != nil {
		return nil, err
	}
	if result.Playlists == nil {
		return nil, nil
	}

	playlists := make([]playlist.Playlist, 0, len(result.Playlists.Playlists))
	for _, p := range result.Playlists.Playlists {
		// Search may return null entries for removed playlists
		if p.ID == "" {
			continue
		}
		playlists = append(playlists, convertPlaylist(&p))
	}
	return playlists, nil
}

// GetAlbumTracks retrieves all tracks of an album.
func (c *Client) GetAlbumTracks(ctx context.Context, album playlist.Playlist) ([]track.Track, error) {
	if album.ID == "" {
		return nil, errors.New("album ID is required")
	}

	var tracks []track.Track
	offset := 0
	limit := 50

	for {
		var page *spotify.SimpleTrackPage
		err := c.retry(func() error {
			p, err := c.client.GetAlbumTracks(ctx, spotify.ID(album.ID),
				spotify.Limit(limit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get album tracks")
		}

		for _, t := range page.Tracks {
			if t.ID != "" {
				tracks = append(tracks, convertTrack(&t, album.Name))
			}
		}

		if len(page.Tracks) < limit {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// GetPlaylistTracks retrieves all tracks from a playlist.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return nil, errors.New("invalid playlist URL")
	}

	var tracks []track.Track
	offset := 0
	limit := 100

	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(func() error {
			p, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
				spotify.Limit(limit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			// Only process tracks (exclude episodes)
			if item.Track.Track != nil && item.Track.Track.ID != "" {
				t := item.Track.Track
				tracks = append(tracks, convertTrack(&t.SimpleTrack, t.Album.Name))
			}
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	return tracks, nil
}

func (c *Client) search(ctx context.Context, query string, st spotify.SearchType, limit int) (*spotify.SearchResult, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	var result *spotify.SearchResult
	err := c.retry(func() error {
		r, err := c.client.Search(ctx, query, st, spotify.Limit(limit), spotify.Market(c.market))
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search")
	}
	return result, nil
}

// convertTrack converts a Spotify track to a domain Track.
func convertTrack(t *spotify.SimpleTrack, album string) track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return track.Track{
		ID:       string(t.ID),
		Title:    t.Name,
		Artists:  artists,
		Album:    album,
		Duration: time.Duration(t.Duration) * time.Millisecond,
		URL:      GetTrackURL(string(t.ID)),
		Source:   track.SourceSpotify,
	}
}

// convertAlbum converts a Spotify album to a domain Playlist.
func convertAlbum(a *spotify.SimpleAlbum) playlist.Playlist {
	artists := make([]string, len(a.Artists))
	for i, ar := range a.Artists {
		artists[i] = ar.Name
	}

	return playlist.Playlist{
		ID:     string(a.ID),
		Name:   a.Name,
		Kind:   playlist.KindAlbum,
		Owner:  strings.Join(artists, ", "),
		Year:   playlist.FormatYear(releaseYear(a.ReleaseDate)),
		URL:    fmt.Sprintf("https://open.spotify.com/album/%s", a.ID),
		Source: track.SourceSpotify,
	}
}

// convertPlaylist converts a Spotify playlist to a domain Playlist.
func convertPlaylist(p *spotify.SimplePlaylist) playlist.Playlist {
	owner := p.Owner.DisplayName
	if owner == "" {
		owner = p.Owner.ID
	}

	return playlist.Playlist{
		ID:     string(p.ID),
		Name:   p.Name,
		Kind:   playlist.KindPlaylist,
		Owner:  owner,
		URL:    GetPlaylistURL(string(p.ID)),
		Source: track.SourceSpotify,
	}
}

// GetTrackURL returns the Spotify URL for a track.
func GetTrackURL(trackID string) string {
	return fmt.Sprintf("https://open.spotify.com/track/%s", trackID)
}

// GetPlaylistURL returns the Spotify URL for a playlist.
func GetPlaylistURL(playlistID string) string {
	return fmt.Sprintf("https://open.spotify.com/playlist/%s", playlistID)
}

// retry retries an operation with exponential backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// releaseYear parses the year of a "2006", "2006-01" or "2006-01-02" release date.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// IsTrackRef reports whether input is a Spotify track URL or URI.
func IsTrackRef(input string) bool {
	input = strings.TrimSpace(input)
	return strings.HasPrefix(input, "spotify:track:") ||
		(strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/"))
}

// IsPlaylistRef reports whether input is a Spotify playlist URL or URI.
func IsPlaylistRef(input string) bool {
	input = strings.TrimSpace(input)
	return strings.HasPrefix(input, "spotify:playlist:") ||
		(strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/"))
}

// extractPlaylistID extracts the playlist ID from a Spotify playlist URL or URI.
func extractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:playlist:PLAYLIST_ID
	if strings.HasPrefix(input, "spotify:playlist:") {
		return strings.TrimPrefix(input, "spotify:playlist:")
	}

	// Handle URL format: https://open.spotify.com/playlist/PLAYLIST_ID or https://open.spotify.com/intl-XX/playlist/PLAYLIST_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/") {
		parts := strings.Split(input, "/playlist/")
		if len(parts) >= 2 {
			// Remove query parameters and trailing slashes
			id := strings.Split(parts[len(parts)-1], "?")[0]
			id = strings.TrimRight(id, "/")
			return id
		}
	}

	// Assume it's already a playlist ID
	return input
}

// extractTrackID extracts the track ID from a Spotify track URL or URI.
func extractTrackID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			id = strings.TrimRight(id, "/")
			return id
		}
	}

	return input
}
