package playlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/ytmusic/internal/domain/track"
)

func TestFormatYear(t *testing.T) {
	assert.Equal(t, "1987", FormatYear(1987))
	assert.Equal(t, "", FormatYear(0))
	assert.Equal(t, "", FormatYear(-1))
}

func TestPlaylist_TotalDuration(t *testing.T) {
	p := &Playlist{
		ID: "album-1",
		Tracks: []track.Track{
			{ID: "track-1", Duration: 2 * time.Minute},
			{ID: "track-2", Duration: 3*time.Minute + 30*time.Second},
			{ID: "track-3"}, // unknown duration
		},
	}

	assert.Equal(t, 5*time.Minute+30*time.Second, p.TotalDuration())
}

func TestPlaylist_Subtitle(t *testing.T) {
	tests := []struct {
		name     string
		playlist Playlist
		expected string
	}{
		{
			name:     "album with year",
			playlist: Playlist{Kind: KindAlbum, Owner: "Artist", Year: "1999"},
			expected: "Artist • 1999",
		},
		{
			name:     "album without year",
			playlist: Playlist{Kind: KindAlbum, Owner: "Artist"},
			expected: "Artist",
		},
		{
			name:     "playlist",
			playlist: Playlist{Kind: KindPlaylist, Owner: "Someone"},
			expected: "by Someone",
		},
		{
			name:     "unknown owner",
			playlist: Playlist{Kind: KindPlaylist},
			expected: "by " + track.UnknownArtist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.playlist.Subtitle())
		})
	}
}
