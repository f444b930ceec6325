package spotify

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Spotify URI format",
			input:    "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M",
			expected: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Spotify URL format",
			input:    "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			expected: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Spotify URL with query params",
			input:    "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123",
			expected: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Plain playlist ID",
			input:    "37i9dQZF1DXcBWIGoYBM5M",
			expected: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "HTTP URL (not HTTPS)",
			input:    "http://open.spotify.com/playlist/testID",
			expected: "testID",
		},
		{
			name:     "URL with multiple query params",
			input:    "https://open.spotify.com/playlist/abc123?si=xyz&utm_source=copy",
			expected: "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractPlaylistID(tt.input)
			assert.Equal(t, tt.expected, result,
				"extractPlaylistID(%s) should return %s", tt.input, tt.expected)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "rate limit error with 429",
			err:      errors.New("Error 429: rate limit exceeded"),
			expected: true,
		},
		{
			name:     "rate limit text",
			err:      errors.New("rate limit exceeded"),
			expected: true,
		},
		{
			name:     "server error 500",
			err:      errors.New("Error 500: internal server error"),
			expected: true,
		},
		{
			name:     "server error 502",
			err:      errors.New("502 Bad Gateway"),
			expected: true,
		},
		{
			name:     "server error 503",
			err:      errors.New("503 Service Unavailable"),
			expected: true,
		},
		{
			name:     "server error 504",
			err:      errors.New("504 Gateway Timeout"),
			expected: true,
		},
		{
			name:     "client error 400",
			err:      errors.New("400 Bad Request"),
			expected: false,
		},
		{
			name:     "not found error",
			err:      errors.New("404 not found"),
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryable(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Spotify URI format",
			input:    "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Spotify URL with intl prefix and query",
			input:    "https://open.spotify.com/intl-ja/track/4uLU6hMCjMI75M1A2tKUQC?si=abc",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Plain track ID",
			input:    " 4uLU6hMCjMI75M1A2tKUQC ",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractTrackID(tt.input))
		})
	}
}

func TestIsRef(t *testing.T) {
	assert.True(t, IsTrackRef("spotify:track:abc"))
	assert.True(t, IsTrackRef("https://open.spotify.com/track/abc"))
	assert.False(t, IsTrackRef("queen bohemian rhapsody"))
	assert.False(t, IsTrackRef("https://open.spotify.com/playlist/abc"))

	assert.True(t, IsPlaylistRef("spotify:playlist:abc"))
	assert.True(t, IsPlaylistRef("https://open.spotify.com/playlist/abc?si=x"))
	assert.False(t, IsPlaylistRef("80s hits playlist"))
}

func TestReleaseYear(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{input: "1975-10-31", expected: 1975},
		{input: "1975-10", expected: 1975},
		{input: "1975", expected: 1975},
		{input: "", expected: 0},
		{input: "n/a!", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, releaseYear(tt.input))
		})
	}
}

func TestConvertTrack(t *testing.T) {
	st := &spotify.SimpleTrack{
		ID:       "4uLU6hMCjMI75M1A2tKUQC",
		Name:     "Bohemian Rhapsody",
		Artists:  []spotify.SimpleArtist{{Name: "Queen"}},
		Duration: 354000,
	}

	got := convertTrack(st, "A Night at the Opera")

	assert.Equal(t, track.Track{
		ID:       "4uLU6hMCjMI75M1A2tKUQC",
		Title:    "Bohemian Rhapsody",
		Artists:  []string{"Queen"},
		Album:    "A Night at the Opera",
		Duration: 354 * time.Second,
		URL:      "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		Source:   track.SourceSpotify,
	}, got)
	assert.Equal(t, "Queen - Bohemian Rhapsody", got.Query())
}

func TestConvertAlbum(t *testing.T) {
	a := &spotify.SimpleAlbum{
		ID:          "1GbtB4zTqAsyfZEsm1RZfx",
		Name:        "A Night at the Opera",
		Artists:     []spotify.SimpleArtist{{Name: "Queen"}},
		ReleaseDate: "1975-11-21",
	}

	got := convertAlbum(a)

	assert.Equal(t, playlist.KindAlbum, got.Kind)
	assert.Equal(t, "Queen", got.Owner)
	assert.Equal(t, "1975", got.Year)

	a.ReleaseDate = ""
	assert.Empty(t, convertAlbum(a).Year, "unknown release date leaves the year empty")
	assert.Equal(t, "https://open.spotify.com/album/1GbtB4zTqAsyfZEsm1RZfx", got.URL)
	assert.Equal(t, track.SourceSpotify, got.Source)
}

func TestConvertPlaylist(t *testing.T) {
	p := &spotify.SimplePlaylist{
		ID:    "37i9dQZF1DXcBWIGoYBM5M",
		Name:  "Today's Top Hits",
		Owner: spotify.User{ID: "spotify"},
	}

	got := convertPlaylist(p)

	assert.Equal(t, playlist.KindPlaylist, got.Kind)
	assert.Equal(t, "spotify", got.Owner, "falls back to the owner ID")
	assert.Equal(t, "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", got.URL)
}

func TestNewAuthenticator(t *testing.T) {
	auth := NewAuthenticator(Config{ClientID: "id", ClientSecret: "secret"}, "http://127.0.0.1:8888/callback")

	u, err := url.Parse(auth.AuthURL("state-1"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "id", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "http://127.0.0.1:8888/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "playlist-read-private")
	assert.Contains(t, q.Get("scope"), "user-library-read")
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "id"})
	assert.Error(t, err)

	c, err := New(context.Background(), Config{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "US", c.market)

	c, err = New(context.Background(), Config{ClientID: "id", ClientSecret: "secret", Market: "JP", RefreshToken: "rt"})
	require.NoError(t, err)
	assert.Equal(t, "JP", c.market)
}
