package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

// Song search modes.
const (
	ModeMusic = "music" // YouTube Music song section
	ModeVideo = "video" // Regular YouTube video search
)

type YouTubeProviderConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode" default:"music" validate:"oneof=music video"`
}

// YouTubeProvider searches YouTube Music through yt-dlp.
type YouTubeProvider struct {
	client YouTubeClient
	config *YouTubeProviderConfig
}

// NewYouTubeProvider creates a new YouTubeProvider.
// Settings may be empty.
func NewYouTubeProvider(client YouTubeClient, settings map[string]any) (*YouTubeProvider, error) {
	if client == nil {
		return nil, errors.New("yt-dlp client is required")
	}

	var config YouTubeProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &YouTubeProvider{
		client: client,
		config: &config,
	}, nil
}

// Search implements Provider.
func (p *YouTubeProvider) Search(ctx context.Context, query string, kind Kind, limit int) (Results, error) {
	results := Results{Kind: kind, Query: query}
	var err error

	switch kind {
	case KindSongs:
		if p.config.Mode == ModeVideo {
			results.Tracks, err = p.client.SearchVideos(ctx, query, limit)
		} else {
			results.Tracks, err = p.client.SearchSongs(ctx, query, limit)
		}
	case KindAlbums:
		results.Playlists, err = p.client.SearchAlbums(ctx, query, limit)
	case KindPlaylists:
		results.Playlists, err = p.client.SearchPlaylists(ctx, query, limit)
	default:
		return Results{}, errors.Newf("unsupported search kind: %s", kind)
	}

	if err != nil {
		return Results{}, err
	}
	return results, nil
}

// Expand implements Provider.
func (p *YouTubeProvider) Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error) {
	return p.client.Expand(ctx, pl)
}

// Source implements Provider.
func (p *YouTubeProvider) Source() track.Source {
	return track.SourceYouTube
}

// Name implements Provider.
func (p *YouTubeProvider) Name() string {
	return "youtube"
}
