// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Client is a Last.fm API client.
// Answers are cached for the lifetime of the client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	cacheMu sync.RWMutex
	cache   map[string]any
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey  string
	Timeout time.Duration
}

// SimilarTrack represents a similar track from Last.fm.
type SimilarTrack struct {
	Name     string
	Artist   string
	Match    float64       // Similarity score (0-1)
	Duration time.Duration // Zero if unknown
}

// Tag represents a Last.fm tag.
type Tag struct {
	Name  string
	Count int // Tag count/frequency
}

// TopTrack represents a top track for a tag.
type TopTrack struct {
	Name   string
	Artist string
}

// GetSimilarResponse represents the response from track.getSimilar API.
type GetSimilarResponse struct {
	SimilarTracks struct {
		Track []struct {
			Name     string  `json:"name"`
			Match    numeric `json:"match"`
			Duration numeric `json:"duration"`
			Artist   struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"similartracks"`
}

// GetTopTagsResponse represents the response from track.getTopTags API.
type GetTopTagsResponse struct {
	TopTags struct {
		Tag []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"tag"`
	} `json:"toptags"`
}

// GetTopTracksResponse represents the response from tag.getTopTracks API.
type GetTopTracksResponse struct {
	Tracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"tracks"`
}

// numeric decodes numbers that Last.fm sometimes sends as strings.
type numeric float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *numeric) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid number %s", string(data))
	}
	*n = numeric(v)
	return nil
}

// LastFMError represents an error response from Last.fm API.
type LastFMError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    "https://ws.audioscrobbler.com/2.0/",
		httpClient: &http.Client{Timeout: timeout},
		cache:      make(map[string]any),
	}, nil
}

// GetSimilarTracks retrieves similar tracks from Last.fm based on track name and artist.
// Reference: https://www.last.fm/api/show/track.getSimilar
func (c *Client) GetSimilarTracks(ctx context.Context, trackName, artistName string, limit int) ([]SimilarTrack, error) {
	if trackName == "" || artistName == "" {
		return nil, errors.New("track name and artist name are required")
	}
	limit = clampLimit(limit, 20)

	key := fmt.Sprintf("similar:%s:%s:%d", strings.ToLower(artistName), strings.ToLower(trackName), limit)
	return cached(c, key, func() ([]SimilarTrack, error) {
		params := url.Values{}
		params.Set("method", "track.getSimilar")
		params.Set("artist", artistName)
		params.Set("track", trackName)
		params.Set("limit", strconv.Itoa(limit))
		params.Set("autocorrect", "1")

		var response GetSimilarResponse
		if err := c.call(ctx, params, &response); err != nil {
			return nil, err
		}

		tracks := make([]SimilarTrack, 0, len(response.SimilarTracks.Track))
		for _, t := range response.SimilarTracks.Track {
			tracks = append(tracks, SimilarTrack{
				Name:     t.Name,
				Artist:   t.Artist.Name,
				Match:    float64(t.Match),
				Duration: time.Duration(float64(t.Duration) * float64(time.Second)),
			})
		}
		return tracks, nil
	})
}

// GetTopTags retrieves top tags for a track from Last.fm.
// Reference: https://www.last.fm/api/show/track.getTopTags
func (c *Client) GetTopTags(ctx context.Context, trackName, artistName string, limit int) ([]Tag, error) {
	if trackName == "" || artistName == "" {
		return nil, errors.New("track name and artist name are required")
	}
	limit = clampLimit(limit, 10)

	key := fmt.Sprintf("tracktag:%s:%s:%d", strings.ToLower(artistName), strings.ToLower(trackName), limit)
	return cached(c, key, func() ([]Tag, error) {
		params := url.Values{}
		params.Set("method", "track.getTopTags")
		params.Set("artist", artistName)
		params.Set("track", trackName)
		params.Set("autocorrect", "1")

		var response GetTopTagsResponse
		if err := c.call(ctx, params, &response); err != nil {
			return nil, err
		}

		// The API has no limit parameter for this method
		n := min(limit, len(response.TopTags.Tag))
		tags := make([]Tag, 0, n)
		for _, t := range response.TopTags.Tag[:n] {
			tags = append(tags, Tag{Name: t.Name, Count: t.Count})
		}
		return tags, nil
	})
}

// GetTopTracks retrieves top tracks for a tag from Last.fm.
// Reference: https://www.last.fm/api/show/tag.getTopTracks
func (c *Client) GetTopTracks(ctx context.Context, tagName string, limit int) ([]TopTrack, error) {
	if tagName == "" {
		return nil, errors.New("tag name is required")
	}
	limit = clampLimit(limit, 20)

	key := fmt.Sprintf("tagtracks:%s:%d", strings.ToLower(tagName), limit)
	return cached(c, key, func() ([]TopTrack, error) {
		params := url.Values{}
		params.Set("method", "tag.getTopTracks")
		params.Set("tag", tagName)
		params.Set("limit", strconv.Itoa(limit))

		var response GetTopTracksResponse
		if err := c.call(ctx, params, &response); err != nil {
			return nil, err
		}

		tracks := make([]TopTrack, 0, len(response.Tracks.Track))
		for _, t := range response.Tracks.Track {
			tracks = append(tracks, TopTrack{Name: t.Name, Artist: t.Artist.Name})
		}
		return tracks, nil
	})
}

// cached returns the cached answer for key, or fetches and caches it.
// Failures are not cached.
func cached[T any](c *Client, key string, fetch func() (T, error)) (T, error) {
	c.cacheMu.RLock()
	v, ok := c.cache[key]
	c.cacheMu.RUnlock()
	if ok {
		zlog.Debug().Msgf("lastfm: cache hit: key=%s", key)
		return v.(T), nil
	}

	result, err := fetch()
	if err != nil {
		return result, err
	}

	c.cacheMu.Lock()
	c.cache[key] = result
	c.cacheMu.Unlock()
	return result, nil
}

// clampLimit applies the default for non-positive limits and the API maximum of 100.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, 100)
}

// call performs a GET request and decodes the JSON body into out.
func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	// Check for Last.fm API errors
	var apiError LastFMError
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error != 0 {
		return errors.Errorf("last.fm API error %d: %s", apiError.Error, apiError.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("last.fm API returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}
