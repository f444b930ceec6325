// Package ytdlp searches YouTube Music and resolves audio streams with yt-dlp.
package ytdlp

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	goytdlp "github.com/lrstanley/go-ytdlp"
	zlog "github.com/rs/zerolog/log"
	ytplaylist "github.com/ytget/ytdlp/v2"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

// Errors
var (
	ErrNotFound = errors.New("yt-dlp not found in PATH")
	ErrNoStream = errors.New("no playable stream found")
)

// YouTube Music search sections.
const (
	SectionSongs     = "songs"
	SectionVideos    = "videos"
	SectionAlbums    = "albums"
	SectionPlaylists = "community+playlists"
)

const (
	defaultTimeout = 60 * time.Second
	defaultFormat  = "bestaudio"
)

// Config represents yt-dlp configuration.
type Config struct {
	Path    string        // Executable name or path
	Format  string        // Format selector for stream resolution
	Timeout time.Duration // Per-invocation timeout
}

// request describes one yt-dlp invocation.
type request struct {
	target string
	getURL bool // -f <format> -g
	flat   bool // --flat-playlist --dump-json
	items  int  // --playlist-items 1:N (flat only)
}

// playlistItem is one entry returned by the playlist API.
type playlistItem struct {
	VideoID string
	Title   string
}

// Client runs yt-dlp.
type Client struct {
	config Config

	run           func(ctx context.Context, req request) (string, error)
	playlistItems func(ctx context.Context, listID string) ([]playlistItem, error)
}

// New creates a new yt-dlp client.
func New(cfg Config) *Client {
	if cfg.Format == "" {
		cfg.Format = defaultFormat
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{config: cfg}
	c.run = c.exec
	c.playlistItems = fetchPlaylistItems
	return c
}

// LookPath resolves the yt-dlp executable.
func LookPath(path string) (string, error) {
	if path == "" {
		path = "yt-dlp"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", errors.Wrapf(ErrNotFound, "%s", path)
	}
	return resolved, nil
}

// SearchSongs searches songs in YouTube Music.
func (c *Client) SearchSongs(ctx context.Context, query string, limit int) ([]track.Track, error) {
	out, err := c.run(ctx, request{target: searchURL(query, SectionSongs), flat: true, items: limit})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search songs for %q", query)
	}
	return parseTracks(out, limit), nil
}

// SearchVideos searches regular YouTube videos.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]track.Track, error) {
	if limit <= 0 {
		limit = 10
	}
	target := fmt.Sprintf("ytsearch%d:%s", limit, query)
	out, err := c.run(ctx, request{target: target, flat: true})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search videos for %q", query)
	}
	return parseTracks(out, limit), nil
}

// SearchAlbums searches albums in YouTube Music.
func (c *Client) SearchAlbums(ctx context.Context, query string, limit int) ([]playlist.Playlist, error) {
	out, err := c.run(ctx, request{target: searchURL(query, SectionAlbums), flat: true, items: limit})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search albums for %q", query)
	}
	return parsePlaylists(out, playlist.KindAlbum, limit), nil
}

// SearchPlaylists searches community playlists in YouTube Music.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]playlist.Playlist, error) {
	out, err := c.run(ctx, request{target: searchURL(query, SectionPlaylists), flat: true, items: limit})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search playlists for %q", query)
	}
	return parsePlaylists(out, playlist.KindPlaylist, limit), nil
}

// Expand lists the tracks of an album or playlist.
// Collections with a list= ID go through the playlist API first.
func (c *Client) Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error) {
	if listID := extractListID(pl.URL); listID != "" {
		tracks, err := c.expandList(ctx, listID, pl)
		if err == nil && len(tracks) > 0 {
			return tracks, nil
		}
		zlog.Debug().Msgf("ytdlp: playlist API failed, falling back to yt-dlp: list=%s error=%v", listID, err)
	}

	out, err := c.run(ctx, request{target: pl.URL, flat: true})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list tracks of %q", pl.Name)
	}

	tracks := parseTracks(out, 0)
	for i := range tracks {
		fillFromCollection(&tracks[i], pl)
	}
	return tracks, nil
}

// Resolve returns a playable audio URL for the track.
// Tracks with a video ID try music.youtube.com, then www.youtube.com;
// other tracks are looked up by "artist - title".
func (c *Client) Resolve(ctx context.Context, t track.Track) (string, error) {
	var targets []string
	if t.HasVideoID() {
		targets = []string{MusicWatchURL + t.ID, VideoWatchURL + t.ID}
	} else {
		targets = []string{"ytsearch1:" + t.Query()}
	}

	var lastErr error
	for _, target := range targets {
		out, err := c.run(ctx, request{target: target, getURL: true})
		if err != nil {
			lastErr = err
			zlog.Debug().Msgf("ytdlp: stream resolution failed: target=%s error=%v", target, err)
			continue
		}
		if u := firstURL(out); u != "" {
			return u, nil
		}
		lastErr = ErrNoStream
	}
	return "", errors.Wrapf(lastErr, "failed to resolve stream for %q", t.Title)
}

func (c *Client) expandList(ctx context.Context, listID string, pl playlist.Playlist) ([]track.Track, error) {
	items, err := c.playlistItems(ctx, listID)
	if err != nil {
		return nil, err
	}

	tracks := make([]track.Track, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		t := track.Track{
			ID:     it.VideoID,
			Title:  it.Title,
			URL:    MusicWatchURL + it.VideoID,
			Source: track.SourceYouTube,
		}
		fillFromCollection(&t, pl)
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// exec runs yt-dlp through go-ytdlp.
func (c *Client) exec(ctx context.Context, req request) (string, error) {
	cmd := goytdlp.New().NoWarnings()
	if c.config.Path != "" {
		cmd.SetExecutable(c.config.Path)
	}
	if req.getURL {
		cmd.Format(c.config.Format).GetURL()
	}
	if req.flat {
		cmd.FlatPlaylist().DumpJSON()
		if req.items > 0 {
			cmd.PlaylistItems(fmt.Sprintf("1:%d", req.items))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	result, err := cmd.Run(ctx, req.target)
	if err != nil {
		return "", errors.Wrap(err, "yt-dlp failed")
	}
	zlog.Debug().Msgf("ytdlp: done: target=%s elapsed=%v", req.target, time.Since(start))
	return result.Stdout, nil
}

// fetchPlaylistItems lists a playlist with the pure-Go playlist client.
func fetchPlaylistItems(ctx context.Context, listID string) ([]playlistItem, error) {
	items, err := ytplaylist.New().GetPlaylistItemsAll(ctx, listID, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get playlist items: list=%s", listID)
	}

	result := make([]playlistItem, 0, len(items))
	for _, it := range items {
		result = append(result, playlistItem{VideoID: it.VideoID, Title: it.Title})
	}
	return result, nil
}

// fillFromCollection fills metadata missing from flat entries.
func fillFromCollection(t *track.Track, pl playlist.Playlist) {
	if pl.Kind == playlist.KindAlbum {
		if t.Album == "" {
			t.Album = pl.Name
		}
		if len(t.Artists) == 0 && pl.Owner != "" {
			t.Artists = splitArtists(pl.Owner)
		}
	}
}

func splitArtists(s string) []string {
	parts := strings.Split(s, ", ")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
