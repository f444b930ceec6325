package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/infra/spotify"
)

type SpotifyProviderConfig struct {
	Market string `yaml:"market" mapstructure:"market" validate:"omitempty,len=2"`
}

// SpotifyProvider searches the Spotify catalog.
// Its tracks carry no stream and are resolved by "artist - title" at play time.
// A Spotify track or playlist URL as query is looked up directly.
type SpotifyProvider struct {
	client SpotifyClient
}

// NewSpotifyProvider creates a new SpotifyProvider.
// The market setting overrides the global Spotify market.
func NewSpotifyProvider(ctx context.Context, cfg spotify.Config, factory SpotifyFactory, settings map[string]any) (*SpotifyProvider, error) {
	if factory == nil {
		return nil, errors.New("spotify factory is required")
	}

	var config SpotifyProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	if config.Market != "" {
		cfg.Market = config.Market
	}

	client, err := factory(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create spotify client")
	}

	return &SpotifyProvider{client: client}, nil
}

// Search implements Provider.
func (p *SpotifyProvider) Search(ctx context.Context, query string, kind Kind, limit int) (Results, error) {
	results := Results{Kind: kind, Query: query}

	switch kind {
	case KindSongs:
		if spotify.IsTrackRef(query) {
			t, err := p.client.GetTrack(ctx, query)
			if err != nil {
				return Results{}, err
			}
			results.Tracks = []track.Track{*t}
			return results, nil
		}
		tracks, err := p.client.SearchTracks(ctx, query, limit)
		if err != nil {
			return Results{}, err
		}
		results.Tracks = tracks

	case KindAlbums:
		albums, err := p.client.SearchAlbums(ctx, query, limit)
		if err != nil {
			return Results{}, err
		}
		results.Playlists = albums

	case KindPlaylists:
		if spotify.IsPlaylistRef(query) {
			pl, err := p.client.GetPlaylist(ctx, query)
			if err != nil {
				return Results{}, err
			}
			results.Playlists = []playlist.Playlist{*pl}
			return results, nil
		}
		playlists, err := p.client.SearchPlaylists(ctx, query, limit)
		if err != nil {
			return Results{}, err
		}
		results.Playlists = playlists

	default:
		return Results{}, errors.Newf("unsupported search kind: %s", kind)
	}

	return results, nil
}

// Expand implements Provider.
func (p *SpotifyProvider) Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error) {
	zlog.Debug().Msgf("catalog: expanding spotify collection: kind=%s id=%s", pl.Kind, pl.ID)
	if pl.Kind == playlist.KindAlbum {
		return p.client.GetAlbumTracks(ctx, pl)
	}
	ref := pl.URL
	if ref == "" {
		ref = pl.ID
	}
	return p.client.GetPlaylistTracks(ctx, ref)
}

// Source implements Provider.
func (p *SpotifyProvider) Source() track.Source {
	return track.SourceSpotify
}

// Name implements Provider.
func (p *SpotifyProvider) Name() string {
	return "spotify"
}
