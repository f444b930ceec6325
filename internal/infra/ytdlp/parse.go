package ytdlp

import (
	"bufio"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

// URL templates
const (
	MusicWatchURL = "https://music.youtube.com/watch?v="
	VideoWatchURL = "https://www.youtube.com/watch?v="
	PlaylistURL   = "https://music.youtube.com/playlist?list="
)

const (
	topicSuffix   = " - Topic"
	playlistParam = "list"
)

// entry is one line of yt-dlp --flat-playlist --dump-json output.
type entry struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Duration      *float64 `json:"duration"`
	Channel       string   `json:"channel"`
	Uploader      string   `json:"uploader"`
	Artist        string   `json:"artist"`
	Artists       []string `json:"artists"`
	Album         string   `json:"album"`
	ReleaseYear   int      `json:"release_year"`
	PlaylistCount int      `json:"playlist_count"`
}

// parseEntries decodes JSON lines, skipping anything that is not an object.
func parseEntries(out string) []entry {
	var entries []entry
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			zlog.Debug().Msgf("ytdlp: skipping malformed entry: %v", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// artists returns the best artist names available for an entry.
func (e entry) artists() []string {
	if len(e.Artists) > 0 {
		return e.Artists
	}
	for _, name := range []string{e.Artist, e.Channel, e.Uploader} {
		name = strings.TrimSpace(strings.TrimSuffix(name, topicSuffix))
		if name != "" {
			return []string{name}
		}
	}
	return nil
}

func (e entry) duration() time.Duration {
	if e.Duration == nil || *e.Duration <= 0 {
		return 0
	}
	return time.Duration(*e.Duration * float64(time.Second))
}

// toTrack converts a video entry. Entries without a video ID are dropped.
func (e entry) toTrack() (track.Track, bool) {
	if e.ID == "" || e.Title == "" {
		return track.Track{}, false
	}
	return track.Track{
		ID:       e.ID,
		Title:    e.Title,
		Artists:  e.artists(),
		Album:    e.Album,
		Duration: e.duration(),
		URL:      MusicWatchURL + e.ID,
		Source:   track.SourceYouTube,
	}, true
}

// toPlaylist converts an album or playlist entry.
func (e entry) toPlaylist(kind playlist.Kind) (playlist.Playlist, bool) {
	link := e.URL
	if link == "" && e.ID != "" {
		link = PlaylistURL + e.ID
	}
	if link == "" || e.Title == "" {
		return playlist.Playlist{}, false
	}

	id := e.ID
	if listID := extractListID(link); listID != "" {
		id = listID
	}

	owner := ""
	if names := e.artists(); len(names) > 0 {
		owner = strings.Join(names, ", ")
	}

	return playlist.Playlist{
		ID:         id,
		Name:       e.Title,
		Kind:       kind,
		Owner:      owner,
		Year:       playlist.FormatYear(e.ReleaseYear),
		URL:        link,
		Source:     track.SourceYouTube,
		TrackCount: e.PlaylistCount,
	}, true
}

func parseTracks(out string, limit int) []track.Track {
	var tracks []track.Track
	for _, e := range parseEntries(out) {
		if t, ok := e.toTrack(); ok {
			tracks = append(tracks, t)
		}
		if limit > 0 && len(tracks) == limit {
			break
		}
	}
	return tracks
}

func parsePlaylists(out string, kind playlist.Kind, limit int) []playlist.Playlist {
	var playlists []playlist.Playlist
	for _, e := range parseEntries(out) {
		if p, ok := e.toPlaylist(kind); ok {
			playlists = append(playlists, p)
		}
		if limit > 0 && len(playlists) == limit {
			break
		}
	}
	return playlists
}

// firstURL returns the first http(s) line of yt-dlp -g output.
func firstURL(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			return line
		}
	}
	return ""
}

// extractListID returns the list= parameter of a YouTube URL.
func extractListID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get(playlistParam)
}

// searchURL builds the YouTube Music search URL for a result section.
func searchURL(query, section string) string {
	return "https://music.youtube.com/search?q=" + url.QueryEscape(query) + "#" + section
}
