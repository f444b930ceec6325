package catalog

import (
	"context"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/infra/lastfm"
)

type fakeYouTube struct {
	songs     []track.Track
	videos    []track.Track
	albums    []playlist.Playlist
	playlists []playlist.Playlist
	expanded  []track.Track
	err       error

	lastLimit int
}

func (f *fakeYouTube) SearchSongs(ctx context.Context, query string, limit int) ([]track.Track, error) {
	f.lastLimit = limit
	return f.songs, f.err
}

func (f *fakeYouTube) SearchVideos(ctx context.Context, query string, limit int) ([]track.Track, error) {
	f.lastLimit = limit
	return f.videos, f.err
}

func (f *fakeYouTube) SearchAlbums(ctx context.Context, query string, limit int) ([]playlist.Playlist, error) {
	return f.albums, f.err
}

func (f *fakeYouTube) SearchPlaylists(ctx context.Context, query string, limit int) ([]playlist.Playlist, error) {
	return f.playlists, f.err
}

func (f *fakeYouTube) Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error) {
	return f.expanded, f.err
}

type fakeSpotify struct {
	tracks    []track.Track
	albums    []playlist.Playlist
	playlists []playlist.Playlist
	expanded  []track.Track
	err       error

	gotTrackRef    string
	gotPlaylistRef string
	albumExpanded  bool
}

func (f *fakeSpotify) GetTrack(ctx context.Context, trackID string) (*track.Track, error) {
	f.gotTrackRef = trackID
	if f.err != nil {
		return nil, f.err
	}
	return &track.Track{ID: "sp1", Title: "Direct", Source: track.SourceSpotify}, nil
}

func (f *fakeSpotify) GetPlaylist(ctx context.Context, playlistID string) (*playlist.Playlist, error) {
	f.gotPlaylistRef = playlistID
	if f.err != nil {
		return nil, f.err
	}
	return &playlist.Playlist{ID: "pl1", Name: "Direct List", Kind: playlist.KindPlaylist, Source: track.SourceSpotify}, nil
}

func (f *fakeSpotify) SearchTracks(ctx context.Context, query string, limit int) ([]track.Track, error) {
	return f.tracks, f.err
}

func (f *fakeSpotify) SearchAlbums(ctx context.Context, query string, limit int) ([]playlist.Playlist, error) {
	return f.albums, f.err
}

func (f *fakeSpotify) SearchPlaylists(ctx context.Context, query string, limit int) ([]playlist.Playlist, error) {
	return f.playlists, f.err
}

func (f *fakeSpotify) GetAlbumTracks(ctx context.Context, album playlist.Playlist) ([]track.Track, error) {
	f.albumExpanded = true
	return f.expanded, f.err
}

func (f *fakeSpotify) GetPlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error) {
	f.gotPlaylistRef = playlistURL
	return f.expanded, f.err
}

type fakeLastFm struct {
	similar []lastfm.SimilarTrack
	tags    []lastfm.Tag
	top     map[string][]lastfm.TopTrack
	err     error

	topCalls []string
}

func (f *fakeLastFm) GetSimilarTracks(ctx context.Context, trackName, artistName string, limit int) ([]lastfm.SimilarTrack, error) {
	return f.similar, f.err
}

func (f *fakeLastFm) GetTopTags(ctx context.Context, trackName, artistName string, limit int) ([]lastfm.Tag, error) {
	return f.tags, nil
}

func (f *fakeLastFm) GetTopTracks(ctx context.Context, tagName string, limit int) ([]lastfm.TopTrack, error) {
	f.topCalls = append(f.topCalls, tagName)
	return f.top[tagName], nil
}

// stubProvider is a Provider with canned answers.
type stubProvider struct {
	name    string
	source  track.Source
	results Results
	err     error
	calls   int
}

func (s *stubProvider) Search(ctx context.Context, query string, kind Kind, limit int) (Results, error) {
	s.calls++
	if s.err != nil {
		return Results{}, s.err
	}
	r := s.results
	r.Kind = kind
	r.Query = query
	return r, nil
}

func (s *stubProvider) Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error) {
	return s.results.Tracks, s.err
}

func (s *stubProvider) Source() track.Source { return s.source }

func (s *stubProvider) Name() string { return s.name }
