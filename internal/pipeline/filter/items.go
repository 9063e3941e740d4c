package filter

import (
	"sort"
	"strings"

	"github.com/yungbote/pearls-backend/internal/domain/content"
)

// ItemCategories is the fixed category list of the flat single-item view.
var ItemCategories = []string{All, "Pearl", "Image", "Video", "Echo", "Case Study", "Hemodynamics", "General"}

// Item is one surviving tweet presented on its own, carrying its thread's labels.
type Item struct {
	ThreadID    string          `json:"threadId"`
	TweetIndex  int             `json:"tweetIndex"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	Year        int             `json:"year"`
	Text        string          `json:"text"`
	DisplayText string          `json:"displayText"`
	Media       []content.Media `json:"media"`
	URLs        []string        `json:"urls,omitempty"`
	Hashtags    []string        `json:"hashtags,omitempty"`
	Categories  []string        `json:"categories"`
	IsPearl     bool            `json:"isPearl"`
}

type ItemStats struct {
	Total         int `json:"total"`
	Pearls        int `json:"pearls"`
	WithMedia     int `json:"withMedia"`
	FilteredCount int `json:"filteredCount"`
}

type ItemResult struct {
	Items  []Item    `json:"tweets"`
	Facets Facets    `json:"facets"`
	Stats  ItemStats `json:"stats"`
}

// Flatten lists every surviving tweet in corpus order.
func Flatten(threads []content.ResolvedThread) []Item {
	var out []Item
	for i := range threads {
		t := &threads[i]
		for _, tw := range t.Tweets {
			out = append(out, Item{
				ThreadID:    t.ID,
				TweetIndex:  tw.Index,
				Type:        t.Type,
				Date:        firstNonEmpty(tw.Date, t.Date),
				Year:        t.Year,
				Text:        tw.Text,
				DisplayText: tw.DisplayText,
				Media:       tw.Media,
				URLs:        tw.URLs,
				Hashtags:    content.ExtractHashtags(tw.Text),
				Categories:  t.Categories,
				IsPearl:     t.IsPearl,
			})
		}
	}
	return out
}

// ApplyItems filters the flat view. Search matches text or any hashtag.
func ApplyItems(items []Item, st State, favs FavoriteSet) ItemResult {
	query := strings.ToLower(st.SearchQuery)
	visible := make([]Item, 0, len(items))
	for i := range items {
		if matchItem(&items[i], st, query, favs) {
			visible = append(visible, items[i])
		}
	}
	res := ItemResult{Items: visible, Facets: itemFacets(items)}
	res.Stats.Total = len(items)
	res.Stats.FilteredCount = len(visible)
	for i := range items {
		if items[i].IsPearl {
			res.Stats.Pearls++
		}
		if len(items[i].Media) > 0 {
			res.Stats.WithMedia++
		}
	}
	return res
}

func matchItem(it *Item, st State, query string, favs FavoriteSet) bool {
	if query != "" && !itemMatchesQuery(it, query) {
		return false
	}
	if st.categoryActive() && !hasString(it.Categories, st.Category) {
		return false
	}
	if st.yearActive() && it.Year != st.Year {
		return false
	}
	if st.PearlsOnly && !it.IsPearl {
		return false
	}
	if st.FavoritesOnly && !favs.Contains(it.ThreadID) {
		return false
	}
	return true
}

func itemMatchesQuery(it *Item, query string) bool {
	if strings.Contains(strings.ToLower(it.Text), query) {
		return true
	}
	for _, tag := range it.Hashtags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func itemFacets(items []Item) Facets {
	years := make(map[int]struct{})
	for i := range items {
		if items[i].Year != 0 {
			years[items[i].Year] = struct{}{}
		}
	}
	f := Facets{
		Categories:     append([]string(nil), ItemCategories...),
		CategoryCounts: make(map[string]int, len(ItemCategories)),
	}
	for _, c := range ItemCategories {
		if c == All {
			f.CategoryCounts[c] = len(items)
			continue
		}
		n := 0
		for i := range items {
			if hasString(items[i].Categories, c) {
				n++
			}
		}
		f.CategoryCounts[c] = n
	}
	for y := range years {
		f.Years = append(f.Years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(f.Years)))
	return f
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
