package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ytmusic/internal/app/filter"
	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

func TestProviderChain_Search(t *testing.T) {
	songs := []track.Track{{ID: "a", Title: "A"}}

	tests := []struct {
		name         string
		first        *stubProvider
		second       *stubProvider
		wantProvider string
		wantLen      int
		wantErr      bool
		secondCalled bool
	}{
		{
			name:         "first provider answers",
			first:        &stubProvider{results: Results{Tracks: songs}},
			second:       &stubProvider{results: Results{Tracks: songs}},
			wantProvider: "First",
			wantLen:      1,
		},
		{
			name:         "falls through on empty result",
			first:        &stubProvider{},
			second:       &stubProvider{results: Results{Tracks: songs}},
			wantProvider: "Second",
			wantLen:      1,
			secondCalled: true,
		},
		{
			name:         "falls through on error",
			first:        &stubProvider{err: errors.New("boom")},
			second:       &stubProvider{results: Results{Tracks: songs}},
			wantProvider: "Second",
			wantLen:      1,
			secondCalled: true,
		},
		{
			name:         "empty everywhere is not an error",
			first:        &stubProvider{},
			second:       &stubProvider{},
			wantLen:      0,
			secondCalled: true,
		},
		{
			name:         "one failure and one empty is not an error",
			first:        &stubProvider{err: errors.New("boom")},
			second:       &stubProvider{},
			wantLen:      0,
			secondCalled: true,
		},
		{
			name:         "all providers failed",
			first:        &stubProvider{err: errors.New("boom")},
			second:       &stubProvider{err: errors.New("bang")},
			wantErr:      true,
			secondCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewProviderChain([]ProviderWithMetadata{
				{Provider: tt.first, DisplayName: "First"},
				{Provider: tt.second, DisplayName: "Second"},
			})

			results, err := chain.Search(context.Background(), "query", KindSongs, 5)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "all providers failed")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, results.Len())
			assert.Equal(t, tt.wantProvider, results.Provider)
			assert.Equal(t, KindSongs, results.Kind)
			assert.Equal(t, "query", results.Query)
			assert.Equal(t, tt.secondCalled, tt.second.calls > 0)
		})
	}
}

func TestProviderChain_Search_Filters(t *testing.T) {
	dupes := []track.Track{
		{ID: "a", Title: "Get Lucky", Artists: []string{"Daft Punk"}},
		{ID: "b", Title: "Get Lucky (Official Video)", Artists: []string{"Daft Punk"}},
	}
	first := &stubProvider{results: Results{Tracks: dupes}}
	chain := NewProviderChain([]ProviderWithMetadata{{Provider: first, DisplayName: "First"}})

	fc := filter.NewChain()
	fc.Add(filter.NewDuplicateTrackFilter())
	chain.SetFilters(fc)

	results, err := chain.Search(context.Background(), "get lucky", KindSongs, 10)
	require.NoError(t, err)
	require.Len(t, results.Tracks, 1)
	assert.Equal(t, "a", results.Tracks[0].ID)
}

func TestProviderChain_Search_FilteredToEmptyFallsThrough(t *testing.T) {
	first := &stubProvider{results: Results{Tracks: []track.Track{{ID: "long", Duration: time.Hour}}}}
	second := &stubProvider{results: Results{Tracks: []track.Track{{ID: "short", Duration: 3 * time.Minute}}}}
	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: first, DisplayName: "First"},
		{Provider: second, DisplayName: "Second"},
	})

	limit, err := filter.New("duration_limit_filter", map[string]any{"max_minutes": 10})
	require.NoError(t, err)
	fc := filter.NewChain()
	fc.Add(limit)
	chain.SetFilters(fc)

	results, err := chain.Search(context.Background(), "q", KindSongs, 10)
	require.NoError(t, err)
	assert.Equal(t, "Second", results.Provider)
	require.Len(t, results.Tracks, 1)
	assert.Equal(t, "short", results.Tracks[0].ID)
}

func TestProviderChain_Expand(t *testing.T) {
	yt := &stubProvider{source: track.SourceYouTube, results: Results{Tracks: []track.Track{{ID: "y"}}}}
	sp := &stubProvider{source: track.SourceSpotify, results: Results{Tracks: []track.Track{{ID: "s"}}}}
	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: yt, DisplayName: "YouTube"},
		{Provider: sp, DisplayName: "Spotify"},
	})

	tracks, err := chain.Expand(context.Background(), playlist.Playlist{Name: "x", Source: track.SourceSpotify})
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "s", tracks[0].ID)

	_, err = chain.Expand(context.Background(), playlist.Playlist{Name: "x", Source: track.SourceLastFM})
	assert.True(t, errors.Is(err, ErrNoProvider))

	assert.Equal(t, []string{"YouTube", "Spotify"}, chain.Providers())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "songs", KindSongs.String())
	assert.Equal(t, "albums", KindAlbums.String())
	assert.Equal(t, "playlists", KindPlaylists.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestResults_Len(t *testing.T) {
	songs := Results{Kind: KindSongs, Tracks: make([]track.Track, 2)}
	albums := Results{Kind: KindAlbums, Playlists: make([]playlist.Playlist, 3)}

	assert.Equal(t, 2, songs.Len())
	assert.Equal(t, 3, albums.Len())
	assert.True(t, Results{Kind: KindPlaylists}.IsEmpty())
}
