package catalog

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/infra/config"
	"github.com/osa030/ytmusic/internal/infra/spotify"
)

func TestNewYouTubeProvider_Settings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantMode string
		wantErr  bool
	}{
		{name: "defaults", settings: nil, wantMode: ModeMusic},
		{name: "video mode", settings: map[string]any{"mode": "video"}, wantMode: ModeVideo},
		{name: "invalid mode", settings: map[string]any{"mode": "radio"}, wantErr: true},
		{name: "wrong type", settings: map[string]any{"mode": 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewYouTubeProvider(&fakeYouTube{}, tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, p.config.Mode)
		})
	}
}

func TestYouTubeProvider_Search(t *testing.T) {
	yt := &fakeYouTube{
		songs:     []track.Track{{ID: "song"}},
		videos:    []track.Track{{ID: "video"}},
		albums:    []playlist.Playlist{{ID: "album"}},
		playlists: []playlist.Playlist{{ID: "list"}},
	}
	ctx := context.Background()

	music, err := NewYouTubeProvider(yt, nil)
	require.NoError(t, err)

	r, err := music.Search(ctx, "q", KindSongs, 7)
	require.NoError(t, err)
	assert.Equal(t, "song", r.Tracks[0].ID)
	assert.Equal(t, 7, yt.lastLimit)

	r, err = music.Search(ctx, "q", KindAlbums, 7)
	require.NoError(t, err)
	assert.Equal(t, "album", r.Playlists[0].ID)

	r, err = music.Search(ctx, "q", KindPlaylists, 7)
	require.NoError(t, err)
	assert.Equal(t, "list", r.Playlists[0].ID)

	video, err := NewYouTubeProvider(yt, map[string]any{"mode": "video"})
	require.NoError(t, err)
	r, err = video.Search(ctx, "q", KindSongs, 7)
	require.NoError(t, err)
	assert.Equal(t, "video", r.Tracks[0].ID)

	yt.err = errors.New("yt-dlp failed")
	_, err = music.Search(ctx, "q", KindSongs, 7)
	assert.Error(t, err)
}

func spotifyFactoryFor(client *fakeSpotify, gotCfg *spotify.Config) SpotifyFactory {
	return func(ctx context.Context, cfg spotify.Config) (SpotifyClient, error) {
		if gotCfg != nil {
			*gotCfg = cfg
		}
		return client, nil
	}
}

func TestSpotifyProvider_Search(t *testing.T) {
	sp := &fakeSpotify{
		tracks:    []track.Track{{ID: "t1", Source: track.SourceSpotify}},
		albums:    []playlist.Playlist{{ID: "al1", Kind: playlist.KindAlbum}},
		playlists: []playlist.Playlist{{ID: "pl9", Kind: playlist.KindPlaylist}},
	}
	ctx := context.Background()

	var gotCfg spotify.Config
	p, err := NewSpotifyProvider(ctx, spotify.Config{Market: "US"}, spotifyFactoryFor(sp, &gotCfg), map[string]any{"market": "JP"})
	require.NoError(t, err)
	assert.Equal(t, "JP", gotCfg.Market)

	r, err := p.Search(ctx, "q", KindSongs, 5)
	require.NoError(t, err)
	assert.Equal(t, "t1", r.Tracks[0].ID)

	r, err = p.Search(ctx, "https://open.spotify.com/track/abc", KindSongs, 5)
	require.NoError(t, err)
	assert.Equal(t, "Direct", r.Tracks[0].Title)
	assert.Equal(t, "https://open.spotify.com/track/abc", sp.gotTrackRef)

	r, err = p.Search(ctx, "q", KindAlbums, 5)
	require.NoError(t, err)
	assert.Equal(t, "al1", r.Playlists[0].ID)

	r, err = p.Search(ctx, "spotify:playlist:xyz", KindPlaylists, 5)
	require.NoError(t, err)
	assert.Equal(t, "Direct List", r.Playlists[0].Name)

	r, err = p.Search(ctx, "q", KindPlaylists, 5)
	require.NoError(t, err)
	assert.Equal(t, "pl9", r.Playlists[0].ID)
}

func TestSpotifyProvider_Expand(t *testing.T) {
	sp := &fakeSpotify{expanded: []track.Track{{ID: "x"}}}
	p, err := NewSpotifyProvider(context.Background(), spotify.Config{}, spotifyFactoryFor(sp, nil), nil)
	require.NoError(t, err)

	_, err = p.Expand(context.Background(), playlist.Playlist{ID: "al", Kind: playlist.KindAlbum})
	require.NoError(t, err)
	assert.True(t, sp.albumExpanded)

	_, err = p.Expand(context.Background(), playlist.Playlist{ID: "pl", Kind: playlist.KindPlaylist})
	require.NoError(t, err)
	assert.Equal(t, "pl", sp.gotPlaylistRef)
}

func TestNewSpotifyProvider_InvalidMarket(t *testing.T) {
	_, err := NewSpotifyProvider(context.Background(), spotify.Config{}, spotifyFactoryFor(&fakeSpotify{}, nil), map[string]any{"market": "JAPAN"})
	assert.Error(t, err)
}

func TestNewProviderChainFromConfig(t *testing.T) {
	cfg := &config.Config{
		Search: config.SearchConfig{Providers: []config.ProviderConfig{
			{Type: config.ProviderSpotify, DisplayName: "Spotify"},
			{Type: config.ProviderYouTube},
		}},
		Spotify: config.SpotifyConfig{ClientID: "id", ClientSecret: "secret", Market: "US", RefreshToken: "rt"},
	}

	var gotCfg spotify.Config
	chain, err := NewProviderChainFromConfig(context.Background(), cfg, &fakeYouTube{}, spotifyFactoryFor(&fakeSpotify{}, &gotCfg))
	require.NoError(t, err)
	assert.Equal(t, []string{"Spotify", "youtube"}, chain.Providers())
	assert.Equal(t, "id", gotCfg.ClientID)
	assert.Equal(t, "secret", gotCfg.ClientSecret)
	assert.Equal(t, "rt", gotCfg.RefreshToken)

	assert.Empty(t, chain.filters.Filters())

	cfg.Search.Filters = []config.FilterConfig{{Name: "no_such_filter"}}
	_, err = NewProviderChainFromConfig(context.Background(), cfg, &fakeYouTube{}, spotifyFactoryFor(&fakeSpotify{}, &gotCfg))
	assert.Error(t, err)
	cfg.Search.Filters = nil

	cfg.Search.Providers = []config.ProviderConfig{{Type: "napster"}}
	_, err = NewProviderChainFromConfig(context.Background(), cfg, &fakeYouTube{}, nil)
	assert.Error(t, err)

	cfg.Search.Providers = nil
	_, err = NewProviderChainFromConfig(context.Background(), cfg, &fakeYouTube{}, nil)
	assert.Error(t, err)
}
