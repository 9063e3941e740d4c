package filter

import (
	"strconv"
	"strings"
)

// All disables the category or year predicate.
const All = "All"

// State is the user's live filter selection. Category "" and Year 0 mean All.
type State struct {
	SearchQuery   string `json:"searchQuery"`
	Category      string `json:"category"`
	Year          int    `json:"year"`
	PearlsOnly    bool   `json:"pearlsOnly"`
	FavoritesOnly bool   `json:"favoritesOnly"`
}

func (s State) categoryActive() bool {
	return s.Category != "" && s.Category != All
}

func (s State) yearActive() bool {
	return s.Year != 0
}

// ParseYear maps "All", "" and garbage to 0.
func ParseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, All) {
		return 0
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 0 {
		return 0
	}
	return y
}

// FavoriteSet is the caller's bookmarked thread ids. A nil set means the
// caller is anonymous, so a favorites-only filter admits nothing.
type FavoriteSet map[string]struct{}

func NewFavoriteSet(ids []string) FavoriteSet {
	set := make(FavoriteSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (f FavoriteSet) Contains(threadID string) bool {
	if f == nil {
		return false
	}
	_, ok := f[threadID]
	return ok
}
