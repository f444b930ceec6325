package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/infra/lastfm"
)

var seed = track.Track{ID: "v1", Title: "Karma Police", Artists: []string{"Radiohead"}, Source: track.SourceYouTube}

func TestSimilarFinder_Similar(t *testing.T) {
	lf := &fakeLastFm{similar: []lastfm.SimilarTrack{
		{Name: "No Surprises", Artist: "Radiohead", Match: 1, Duration: 229 * time.Second},
		{Name: "karma police", Artist: "radiohead", Match: 0.9},
		{Name: "Teardrop", Artist: "Massive Attack", Match: 0.8},
	}}

	results, err := NewSimilarFinder(lf, 10).Find(context.Background(), seed)
	require.NoError(t, err)

	require.Len(t, results.Tracks, 2)
	assert.Equal(t, KindSongs, results.Kind)
	assert.Equal(t, "No Surprises", results.Tracks[0].Title)
	assert.Equal(t, 229*time.Second, results.Tracks[0].Duration)
	assert.Equal(t, track.SourceLastFM, results.Tracks[0].Source)
	assert.Empty(t, results.Tracks[0].ID)
	assert.Equal(t, "Massive Attack - Teardrop", results.Tracks[1].Query())
	assert.Empty(t, lf.topCalls)
}

func TestSimilarFinder_TagFallback(t *testing.T) {
	lf := &fakeLastFm{
		tags: []lastfm.Tag{{Name: "obscure"}, {Name: "alternative"}},
		top: map[string][]lastfm.TopTrack{
			"alternative": {
				{Name: "Creep", Artist: "Radiohead"},
				{Name: "Karma Police", Artist: "Radiohead"},
			},
		},
	}

	results, err := NewSimilarFinder(lf, 10).Find(context.Background(), seed)
	require.NoError(t, err)

	require.Len(t, results.Tracks, 1)
	assert.Equal(t, "Creep", results.Tracks[0].Title)
	assert.Equal(t, []string{"obscure", "alternative"}, lf.topCalls)
}

func TestSimilarFinder_Errors(t *testing.T) {
	_, err := NewSimilarFinder(&fakeLastFm{}, 10).Find(context.Background(), track.Track{Title: "No Artist"})
	assert.True(t, errors.Is(err, ErrNoArtist))

	_, err = NewSimilarFinder(&fakeLastFm{err: errors.New("down")}, 10).Find(context.Background(), seed)
	assert.Error(t, err)
}

func TestSimilarFinder_NothingFound(t *testing.T) {
	results, err := NewSimilarFinder(&fakeLastFm{}, 10).Find(context.Background(), seed)
	require.NoError(t, err)
	assert.True(t, results.IsEmpty())
}
