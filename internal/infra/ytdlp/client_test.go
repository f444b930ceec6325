package ytdlp

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

// fakeRunner records requests and answers by target.
type fakeRunner struct {
	outputs  map[string]string
	failures map[string]error
	requests []request
}

func (f *fakeRunner) run(_ context.Context, req request) (string, error) {
	f.requests = append(f.requests, req)
	if err, ok := f.failures[req.target]; ok {
		return "", err
	}
	return f.outputs[req.target], nil
}

func newTestClient(f *fakeRunner) *Client {
	c := New(Config{})
	c.run = f.run
	c.playlistItems = func(context.Context, string) ([]playlistItem, error) {
		return nil, errors.New("offline")
	}
	return c
}

func TestClient_ResolveVideoID(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{
		MusicWatchURL + "abc": "https://stream/music\n",
	}}
	c := newTestClient(f)

	u, err := c.Resolve(context.Background(), track.Track{ID: "abc", Title: "Song", Source: track.SourceYouTube})
	require.NoError(t, err)
	assert.Equal(t, "https://stream/music", u)
	require.Len(t, f.requests, 1)
	assert.True(t, f.requests[0].getURL)
}

func TestClient_ResolveFallsBackToVideoURL(t *testing.T) {
	f := &fakeRunner{
		outputs: map[string]string{
			VideoWatchURL + "abc": "https://stream/video\n",
		},
		failures: map[string]error{
			MusicWatchURL + "abc": errors.New("exit status 1"),
		},
	}
	c := newTestClient(f)

	u, err := c.Resolve(context.Background(), track.Track{ID: "abc", Title: "Song", Source: track.SourceYouTube})
	require.NoError(t, err)
	assert.Equal(t, "https://stream/video", u)
	assert.Len(t, f.requests, 2)
}

func TestClient_ResolveBySearch(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{
		"ytsearch1:Queen - Bohemian Rhapsody": "https://stream/search\n",
	}}
	c := newTestClient(f)

	u, err := c.Resolve(context.Background(), track.Track{
		ID:      "4u7EnebtmKWzUH433cf5Qv",
		Title:   "Bohemian Rhapsody",
		Artists: []string{"Queen"},
		Source:  track.SourceSpotify,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://stream/search", u)
}

func TestClient_ResolveNoStream(t *testing.T) {
	f := &fakeRunner{}
	c := newTestClient(f)

	_, err := c.Resolve(context.Background(), track.Track{ID: "abc", Title: "Song", Source: track.SourceYouTube})
	assert.ErrorIs(t, err, ErrNoStream)
	assert.Contains(t, err.Error(), "Song")
}

func TestClient_SearchSongs(t *testing.T) {
	target := searchURL("rick", SectionSongs)
	f := &fakeRunner{outputs: map[string]string{target: songsOutput}}
	c := newTestClient(f)

	tracks, err := c.SearchSongs(context.Background(), "rick", 5)
	require.NoError(t, err)
	assert.Len(t, tracks, 3)
	require.Len(t, f.requests, 1)
	assert.True(t, f.requests[0].flat)
	assert.Equal(t, 5, f.requests[0].items)
}

func TestClient_SearchVideos(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{"ytsearch2:rick": songsOutput}}
	c := newTestClient(f)

	tracks, err := c.SearchVideos(context.Background(), "rick", 2)
	require.NoError(t, err)
	assert.Len(t, tracks, 2)
}

func TestClient_SearchError(t *testing.T) {
	target := searchURL("rick", SectionAlbums)
	f := &fakeRunner{failures: map[string]error{target: errors.New("network down")}}
	c := newTestClient(f)

	_, err := c.SearchAlbums(context.Background(), "rick", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func TestClient_ExpandAlbum(t *testing.T) {
	album := playlist.Playlist{
		ID:    "MPREb_abc",
		Name:  "Greatest",
		Kind:  playlist.KindAlbum,
		Owner: "Queen",
		URL:   "https://music.youtube.com/browse/MPREb_abc",
	}
	f := &fakeRunner{outputs: map[string]string{
		album.URL: `{"id": "v1", "title": "One"}` + "\n" + `{"id": "v2", "title": "Two", "channel": "Freddie"}` + "\n",
	}}
	c := newTestClient(f)

	tracks, err := c.Expand(context.Background(), album)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, []string{"Queen"}, tracks[0].Artists, "album artist fills the gap")
	assert.Equal(t, "Greatest", tracks[0].Album)
	assert.Equal(t, []string{"Freddie"}, tracks[1].Artists)
}

func TestClient_ExpandPlaylistUsesPlaylistAPI(t *testing.T) {
	pl := playlist.Playlist{
		Name: "Mix",
		Kind: playlist.KindPlaylist,
		URL:  "https://music.youtube.com/playlist?list=PL123",
	}
	f := &fakeRunner{}
	c := newTestClient(f)
	c.playlistItems = func(_ context.Context, listID string) ([]playlistItem, error) {
		assert.Equal(t, "PL123", listID)
		return []playlistItem{{VideoID: "a1", Title: "A"}, {VideoID: "", Title: "gone"}, {VideoID: "b2", Title: "B"}}, nil
	}

	tracks, err := c.Expand(context.Background(), pl)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "a1", tracks[0].ID)
	assert.Equal(t, MusicWatchURL+"a1", tracks[0].URL)
	assert.Empty(t, f.requests, "yt-dlp not needed")
}

func TestClient_ExpandPlaylistFallsBack(t *testing.T) {
	pl := playlist.Playlist{
		Name: "Mix",
		Kind: playlist.KindPlaylist,
		URL:  "https://music.youtube.com/playlist?list=PL123",
	}
	f := &fakeRunner{outputs: map[string]string{pl.URL: `{"id": "a1", "title": "A"}`}}
	c := newTestClient(f)

	tracks, err := c.Expand(context.Background(), pl)
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
	assert.Len(t, f.requests, 1)
}

func TestLookPath_NotFound(t *testing.T) {
	_, err := LookPath("ytmusic-definitely-not-ytdlp")
	assert.ErrorIs(t, err, ErrNotFound)
}
