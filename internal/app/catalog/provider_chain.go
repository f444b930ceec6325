package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/app/filter"
	"github.com/osa030/ytmusic/internal/domain/playlist"
	"github.com/osa030/ytmusic/internal/domain/track"
)

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// ProviderChain tries providers in order until one returns results.
type ProviderChain struct {
	providers []ProviderWithMetadata
	filters   *filter.Chain
}

// NewProviderChain creates a new provider chain.
func NewProviderChain(providers []ProviderWithMetadata) *ProviderChain {
	return &ProviderChain{
		providers: providers,
	}
}

// SetFilters sets the filters applied to song results.
func (c *ProviderChain) SetFilters(filters *filter.Chain) {
	c.filters = filters
}

// Search returns the results of the first provider with a non-empty answer.
// It fails only when every provider failed.
func (c *ProviderChain) Search(ctx context.Context, query string, kind Kind, limit int) (Results, error) {
	var errs error
	failed := 0

	for i, pm := range c.providers {
		zlog.Debug().Msgf("catalog: trying provider: index=%d total=%d name=%s kind=%s",
			i+1, len(c.providers), pm.DisplayName, kind)

		results, err := pm.Provider.Search(ctx, query, kind, limit)
		if err != nil {
			if ctx.Err() != nil {
				return Results{}, ctx.Err()
			}
			zlog.Warn().Msgf("catalog: provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "%s", pm.DisplayName))
			failed++
			continue
		}

		if c.filters != nil && len(results.Tracks) > 0 {
			results.Tracks = c.filters.Apply(results.Tracks)
		}
		if results.IsEmpty() {
			zlog.Debug().Msgf("catalog: provider returned no results: provider=%s", pm.DisplayName)
			continue
		}

		results.Provider = pm.DisplayName
		zlog.Info().Msgf("catalog: provider returned results: provider=%s kind=%s count=%d",
			pm.DisplayName, kind, results.Len())
		return results, nil
	}

	if failed > 0 && failed == len(c.providers) {
		return Results{}, errors.Wrap(errs, "all providers failed")
	}
	return Results{Kind: kind, Query: query}, nil
}

// Expand lists the tracks of a collection with the provider it came from.
func (c *ProviderChain) Expand(ctx context.Context, pl playlist.Playlist) ([]track.Track, error) {
	for _, pm := range c.providers {
		if pm.Provider.Source() == pl.Source {
			tracks, err := pm.Provider.Expand(ctx, pl)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to open %q", pl.Name)
			}
			return tracks, nil
		}
	}
	return nil, errors.Wrapf(ErrNoProvider, "%s", pl.Source)
}

// Providers returns the display names of the chained providers.
func (c *ProviderChain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, pm := range c.providers {
		names[i] = pm.DisplayName
	}
	return names
}

// Name returns the chain name.
func (c *ProviderChain) Name() string {
	return "provider_chain"
}
