package filter

import (
	"regexp"
	"strings"

	"github.com/osa030/ytmusic/internal/domain/track"
)

const codeDuplicateTrack = "duplicate_track"

var (
	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),                     // "- 2011 Remaster"
		regexp.MustCompile(`\s*[\(\[][^\)\]]*remaster[^\)\]]*[\)\]]`),           // "(Remastered 2023)", "[Remastered]"
		regexp.MustCompile(`\s*-\s*remaster(ed)?(\s+version)?$`),                // "- Remastered Version"
		regexp.MustCompile(`\s*[\(\[][^\)\]]*(version|edit|audio|video)[\)\]]`), // "(Single Version)", "(Official Video)"
		regexp.MustCompile(`\s*[\(\[]live[\)\]]`),                               // "(Live)"
		regexp.MustCompile(`\s*-\s*(live|radio edit|single version)$`),          // "- Live"
	}
	spaces = regexp.MustCompile(`\s+`)
)

// DuplicateTrackFilter drops repeated songs from a result list.
// Detects:
// - Exact track ID matches
// - Re-releases (normalized title + same main artist), e.g. remasters, edits, official videos
// Excludes:
// - Cover songs (same title but different artist)
type DuplicateTrackFilter struct{}

// NewDuplicateTrackFilter creates a new duplicate track filter.
func NewDuplicateTrackFilter() *DuplicateTrackFilter {
	return &DuplicateTrackFilter{}
}

// Name returns the filter name.
func (f *DuplicateTrackFilter) Name() string {
	return "duplicate_track_filter"
}

// Description returns the filter description.
func (f *DuplicateTrackFilter) Description() string {
	return "Hides results that repeat an earlier song (remasters and edits included); covers are kept"
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateTrackFilter) ValidateConfig(map[string]any) error {
	return nil
}

// Check checks if the track repeats one already kept.
func (f *DuplicateTrackFilter) Check(t track.Track, kept []track.Track) Result {
	for _, k := range kept {
		if t.ID != "" && k.ID == t.ID {
			return Reject(codeDuplicateTrack)
		}
		if isSameSong(k, t) {
			return Reject(codeDuplicateTrack)
		}
	}
	return Accept()
}

// isSameSong reports whether two tracks are versions of one song by the same artist.
func isSameSong(a, b track.Track) bool {
	if normalizeTitle(a.Title) != normalizeTitle(b.Title) {
		return false
	}
	return isSameArtist(a, b)
}

// normalizeTitle strips version decorations and lowercases the title.
func normalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	normalized = spaces.ReplaceAllString(strings.TrimSpace(normalized), " ")
	return strings.TrimRight(normalized, " -")
}

// isSameArtist compares the main artists, case-insensitively.
func isSameArtist(a, b track.Track) bool {
	if len(a.Artists) == 0 || len(b.Artists) == 0 {
		return false
	}
	return strings.EqualFold(a.Artists[0], b.Artists[0])
}

func init() {
	Register("duplicate_track_filter", func() Filter {
		return NewDuplicateTrackFilter()
	})
}
