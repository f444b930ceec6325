package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/app/filter"
	"github.com/osa030/ytmusic/internal/infra/config"
	"github.com/osa030/ytmusic/internal/infra/spotify"
)

// NewSpotifyClient is the SpotifyFactory backed by the Spotify Web API.
func NewSpotifyClient(ctx context.Context, cfg spotify.Config) (SpotifyClient, error) {
	client, err := spotify.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewProviderChainFromConfig creates a provider chain from configuration.
func NewProviderChainFromConfig(ctx context.Context, cfg *config.Config, youtube YouTubeClient, newSpotify SpotifyFactory) (*ProviderChain, error) {
	if len(cfg.Search.Providers) == 0 {
		return nil, errors.New("no search providers configured")
	}

	var providers []ProviderWithMetadata

	for i, pcfg := range cfg.Search.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("catalog: creating provider: index=%d type=%s settings=%+v", i+1, pcfg.Type, pcfg.Settings)
		switch pcfg.Type {
		case config.ProviderYouTube:
			provider, err = NewYouTubeProvider(youtube, pcfg.Settings)

		case config.ProviderSpotify:
			provider, err = NewSpotifyProvider(ctx, spotify.Config{
				ClientID:     cfg.Spotify.ClientID,
				ClientSecret: cfg.Spotify.ClientSecret,
				Market:       cfg.Spotify.Market,
				RefreshToken: cfg.Spotify.RefreshToken,
			}, newSpotify, pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		displayName := pcfg.DisplayName
		if displayName == "" {
			displayName = provider.Name()
		}
		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: displayName,
		})

		zlog.Info().Msgf("catalog: registered provider: index=%d type=%s display_name=%s", i+1, pcfg.Type, displayName)
	}

	filters, err := filter.NewChainFromConfig(cfg.Search.Filters)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create search filters")
	}

	chain := NewProviderChain(providers)
	chain.SetFilters(filters)
	return chain, nil
}
