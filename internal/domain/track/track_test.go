package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrack_Artist(t *testing.T) {
	tests := []struct {
		name     string
		artists  []string
		expected string
	}{
		{
			name:     "single artist",
			artists:  []string{"Artist 1"},
			expected: "Artist 1",
		},
		{
			name:     "multiple artists",
			artists:  []string{"Artist 1", "Artist 2"},
			expected: "Artist 1, Artist 2",
		},
		{
			name:     "no artists",
			artists:  nil,
			expected: UnknownArtist,
		},
		{
			name:     "blank names are skipped",
			artists:  []string{" ", "Artist 2"},
			expected: "Artist 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trk := Track{ID: "test-id", Artists: tt.artists}
			assert.Equal(t, tt.expected, trk.Artist())
		})
	}
}

func TestTrack_Query(t *testing.T) {
	assert.Equal(t, "Artist 1 - Song", Track{Title: "Song", Artists: []string{"Artist 1"}}.Query())
	assert.Equal(t, "Song", Track{Title: "Song"}.Query())
}

func TestTrack_HasVideoID(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected bool
	}{
		{
			name:     "youtube track with id",
			track:    Track{ID: "dQw4w9WgXcQ", Source: SourceYouTube},
			expected: true,
		},
		{
			name:     "youtube track without id",
			track:    Track{Source: SourceYouTube},
			expected: false,
		},
		{
			name:     "spotify track",
			track:    Track{ID: "4uLU6hMCjMI75M1A2tKUQC", Source: SourceSpotify},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.track.HasVideoID())
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "zero", duration: 0, expected: "--:--"},
		{name: "seconds only", duration: 7 * time.Second, expected: "0:07"},
		{name: "minutes", duration: 3*time.Minute + 25*time.Second, expected: "3:25"},
		{name: "hours", duration: time.Hour + 2*time.Minute + 3*time.Second, expected: "1:02:03"},
		{name: "rounds to nearest second", duration: 59*time.Second + 600*time.Millisecond, expected: "1:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.duration))
		})
	}
}
