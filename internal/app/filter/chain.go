package filter

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/domain/track"
	"github.com/osa030/ytmusic/internal/infra/config"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// NewChainFromConfig creates a chain from the configured filters, in order.
func NewChainFromConfig(cfgs []config.FilterConfig) (*Chain, error) {
	c := NewChain()
	for i, fc := range cfgs {
		f, err := New(fc.Name, fc.Settings)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create filter (index %d)", i)
		}
		c.Add(f)
		zlog.Info().Msgf("filter: registered filter: index=%d name=%s", i+1, fc.Name)
	}
	return c, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Check runs all filters in sequence.
// Returns immediately if any filter rejects the track.
func (c *Chain) Check(t track.Track, kept []track.Track) Result {
	for _, f := range c.filters {
		result := f.Check(t, kept)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply returns the tracks accepted by every filter, preserving order.
func (c *Chain) Apply(tracks []track.Track) []track.Track {
	if len(c.filters) == 0 {
		return tracks
	}

	kept := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		result := c.Check(t, kept)
		if !result.Accepted {
			zlog.Debug().Msgf("filter: dropped result: title=%s code=%s", t.Title, result.Code)
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
