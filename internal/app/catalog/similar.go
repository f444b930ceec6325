package catalog

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/domain/track"
)

// Number of tags tried when Last.fm knows no similar tracks.
const fallbackTagCount = 3

// SimilarFinder finds tracks similar to a seed track with Last.fm.
// Results carry no ID and are resolved by "artist - title" at play time.
type SimilarFinder struct {
	lastfm LastFmClient
	limit  int
}

// NewSimilarFinder creates a new SimilarFinder.
func NewSimilarFinder(client LastFmClient, limit int) *SimilarFinder {
	if limit <= 0 {
		limit = 20
	}
	return &SimilarFinder{
		lastfm: client,
		limit:  limit,
	}
}

// Find returns up to limit tracks similar to seed, excluding the seed itself.
// When Last.fm has no similar tracks, the top tracks of the seed's top tag are used.
func (f *SimilarFinder) Find(ctx context.Context, seed track.Track) (Results, error) {
	if len(seed.Artists) == 0 || seed.Title == "" {
		return Results{}, errors.Wrapf(ErrNoArtist, "%q", seed.Title)
	}
	artist := seed.Artists[0]
	results := Results{Kind: KindSongs, Query: seed.Query(), Provider: "Last.fm"}

	similar, err := f.lastfm.GetSimilarTracks(ctx, seed.Title, artist, f.limit)
	if err != nil {
		return Results{}, errors.Wrap(err, "failed to get similar tracks")
	}
	for _, s := range similar {
		t := lastfmTrack(s.Name, s.Artist)
		t.Duration = s.Duration
		results.Tracks = appendUnlessSeed(results.Tracks, t, seed)
	}
	if len(results.Tracks) > 0 {
		return results, nil
	}

	zlog.Debug().Msgf("catalog: no similar tracks, falling back to tags: artist=%s title=%s", artist, seed.Title)
	tags, err := f.lastfm.GetTopTags(ctx, seed.Title, artist, fallbackTagCount)
	if err != nil {
		return Results{}, errors.Wrap(err, "failed to get track tags")
	}
	for _, tag := range tags {
		top, err := f.lastfm.GetTopTracks(ctx, tag.Name, f.limit)
		if err != nil {
			zlog.Warn().Msgf("catalog: failed to get top tracks: tag=%s error=%v", tag.Name, err)
			continue
		}
		for _, tt := range top {
			results.Tracks = appendUnlessSeed(results.Tracks, lastfmTrack(tt.Name, tt.Artist), seed)
		}
		if len(results.Tracks) > 0 {
			break
		}
	}

	if len(results.Tracks) > f.limit {
		results.Tracks = results.Tracks[:f.limit]
	}
	return results, nil
}

func lastfmTrack(name, artist string) track.Track {
	t := track.Track{
		Title:  name,
		Source: track.SourceLastFM,
	}
	if artist != "" {
		t.Artists = []string{artist}
	}
	return t
}

func appendUnlessSeed(tracks []track.Track, t track.Track, seed track.Track) []track.Track {
	if strings.EqualFold(t.Title, seed.Title) && strings.EqualFold(t.Artist(), seed.Artists[0]) {
		return tracks
	}
	return append(tracks, t)
}
