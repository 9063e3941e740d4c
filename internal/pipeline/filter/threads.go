package filter

import (
	"sort"
	"strings"

	"github.com/yungbote/pearls-backend/internal/domain/content"
)

type Facets struct {
	Categories     []string       `json:"categories"`
	Years          []int          `json:"years"`
	CategoryCounts map[string]int `json:"categoryCounts"`
}

type Stats struct {
	TotalThreads   int `json:"totalThreads"`
	TotalTweets    int `json:"totalTweets"`
	TotalPearls    int `json:"totalPearls"`
	TotalWithMedia int `json:"totalWithMedia"`
	FilteredCount  int `json:"filteredCount"`
}

type Result struct {
	Visible []content.ResolvedThread `json:"threads"`
	Facets  Facets                   `json:"facets"`
	Stats   Stats                    `json:"stats"`
}

// Apply keeps the threads that pass every active predicate, preserving order.
// Facets and totals describe the whole effective set, not the visible subset.
func Apply(threads []content.ResolvedThread, st State, favs FavoriteSet) Result {
	visible := make([]content.ResolvedThread, 0, len(threads))
	query := strings.ToLower(st.SearchQuery)
	for i := range threads {
		if Match(&threads[i], st, query, favs) {
			visible = append(visible, threads[i])
		}
	}
	stats := ComputeStats(threads)
	stats.FilteredCount = len(visible)
	return Result{
		Visible: visible,
		Facets:  ComputeFacets(threads),
		Stats:   stats,
	}
}

// Match evaluates the predicates in order: search, category, year, pearls,
// favorites. query must already be lower-cased.
func Match(t *content.ResolvedThread, st State, query string, favs FavoriteSet) bool {
	if query != "" && !threadMatchesQuery(t, query) {
		return false
	}
	if st.categoryActive() && !t.HasCategory(st.Category) {
		return false
	}
	if st.yearActive() && t.Year != st.Year {
		return false
	}
	if st.PearlsOnly && !t.IsPearl {
		return false
	}
	if st.FavoritesOnly && !favs.Contains(t.ID) {
		return false
	}
	return true
}

func threadMatchesQuery(t *content.ResolvedThread, query string) bool {
	for _, tw := range t.Tweets {
		if strings.Contains(strings.ToLower(tw.Text), query) {
			return true
		}
	}
	return false
}

func ComputeFacets(threads []content.ResolvedThread) Facets {
	cats := make(map[string]int)
	years := make(map[int]struct{})
	for i := range threads {
		seen := make(map[string]struct{}, len(threads[i].Categories))
		for _, c := range threads[i].Categories {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			cats[c]++
		}
		if threads[i].Year != 0 {
			years[threads[i].Year] = struct{}{}
		}
	}
	f := Facets{
		Categories:     make([]string, 0, len(cats)),
		Years:          make([]int, 0, len(years)),
		CategoryCounts: make(map[string]int, len(cats)+1),
	}
	for c, n := range cats {
		f.Categories = append(f.Categories, c)
		f.CategoryCounts[c] = n
	}
	f.CategoryCounts[All] = len(threads)
	sort.Strings(f.Categories)
	for y := range years {
		f.Years = append(f.Years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(f.Years)))
	return f
}

func ComputeStats(threads []content.ResolvedThread) Stats {
	s := Stats{TotalThreads: len(threads)}
	for i := range threads {
		s.TotalTweets += threads[i].TweetCount
		if threads[i].IsPearl {
			s.TotalPearls++
		}
		if len(threads[i].Media) > 0 {
			s.TotalWithMedia++
		}
	}
	return s
}
