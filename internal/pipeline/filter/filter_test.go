package filter

import (
	"reflect"
	"testing"

	"github.com/yungbote/pearls-backend/internal/domain/content"
)

func rthread(id string, year int, pearl bool, cats []string, texts ...string) content.ResolvedThread {
	t := content.ResolvedThread{ID: id, Year: year, IsPearl: pearl, Categories: cats}
	for i, txt := range texts {
		t.Tweets = append(t.Tweets, content.ResolvedTweet{Index: i, Text: txt})
	}
	t.TweetCount = len(t.Tweets)
	return t
}

func sample() []content.ResolvedThread {
	a := rthread("A", 2023, true, []string{"Pearl", "Echo"}, "1/ LV filling pressures", "2/ E/e' ratio")
	a.Media = []content.Media{{Type: content.MediaImage, Path: "a.jpg"}}
	return []content.ResolvedThread{
		a,
		rthread("B", 2022, false, []string{"Case Study"}, "A case of HFpEF with AF"),
		rthread("C", 2023, false, []string{"Hemodynamics", "Echo"}, "Exercise hemodynamics", "Invasive CPET"),
		rthread("D", 2021, true, nil, "Untagged pearl"),
	}
}

func ids(threads []content.ResolvedThread) []string {
	out := make([]string, 0, len(threads))
	for _, t := range threads {
		out = append(out, t.ID)
	}
	return out
}

func TestApplyCategoryOnly(t *testing.T) {
	threads := []content.ResolvedThread{
		rthread("P", 2023, false, []string{"Pearl"}, "x"),
		rthread("Q", 2023, false, []string{"General"}, "y"),
	}
	res := Apply(threads, State{Category: "Pearl", Year: 0}, nil)
	if got := ids(res.Visible); !reflect.DeepEqual(got, []string{"P"}) {
		t.Fatalf("visible=%v, want [P]", got)
	}
}

func TestApplyFavoritesOnlyAnonymous(t *testing.T) {
	res := Apply(sample(), State{FavoritesOnly: true}, nil)
	if len(res.Visible) != 0 {
		t.Fatalf("anonymous favorites-only should be empty, got %v", ids(res.Visible))
	}
	res = Apply(sample(), State{FavoritesOnly: true}, NewFavoriteSet([]string{"C", "missing"}))
	if got := ids(res.Visible); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("visible=%v, want [C]", got)
	}
}

func TestApplySearchIsCaseInsensitiveAcrossTweets(t *testing.T) {
	res := Apply(sample(), State{SearchQuery: "cpet"}, nil)
	if got := ids(res.Visible); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("visible=%v, want [C]", got)
	}
	res = Apply(sample(), State{SearchQuery: "E/E'"}, nil)
	if got := ids(res.Visible); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("visible=%v, want [A]", got)
	}
}

func TestApplyPreservesOrderAndCombinesPredicates(t *testing.T) {
	res := Apply(sample(), State{Year: 2023, Category: "Echo"}, nil)
	if got := ids(res.Visible); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Fatalf("visible=%v, want [A C]", got)
	}
	res = Apply(sample(), State{Year: 2023, Category: "Echo", PearlsOnly: true}, nil)
	if got := ids(res.Visible); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("visible=%v, want [A]", got)
	}
}

func TestFacetsCoverWholeEffectiveSet(t *testing.T) {
	res := Apply(sample(), State{SearchQuery: "nothing matches this"}, nil)
	if len(res.Visible) != 0 {
		t.Fatalf("expected empty visible set")
	}
	wantCats := []string{"Case Study", "Echo", "Hemodynamics", "Pearl"}
	if !reflect.DeepEqual(res.Facets.Categories, wantCats) {
		t.Fatalf("categories=%v, want %v", res.Facets.Categories, wantCats)
	}
	if !reflect.DeepEqual(res.Facets.Years, []int{2023, 2022, 2021}) {
		t.Fatalf("years=%v", res.Facets.Years)
	}
	if res.Facets.CategoryCounts["Echo"] != 2 || res.Facets.CategoryCounts[All] != 4 {
		t.Fatalf("counts=%v", res.Facets.CategoryCounts)
	}
	want := Stats{TotalThreads: 4, TotalTweets: 6, TotalPearls: 2, TotalWithMedia: 1, FilteredCount: 0}
	if res.Stats != want {
		t.Fatalf("stats=%+v, want %+v", res.Stats, want)
	}
}

func TestAddingPredicateNeverGrowsVisibleSet(t *testing.T) {
	threads := sample()
	favs := NewFavoriteSet([]string{"A", "B"})
	bases := []State{
		{},
		{SearchQuery: "e"},
		{Category: "Echo"},
		{Year: 2023},
		{PearlsOnly: true},
		{FavoritesOnly: true},
	}
	extend := []func(State) (State, bool){
		func(s State) (State, bool) { ok := s.SearchQuery == ""; s.SearchQuery = "hemo"; return s, ok },
		func(s State) (State, bool) { ok := s.Category == ""; s.Category = "Pearl"; return s, ok },
		func(s State) (State, bool) { ok := s.Year == 0; s.Year = 2022; return s, ok },
		func(s State) (State, bool) { ok := !s.PearlsOnly; s.PearlsOnly = true; return s, ok },
		func(s State) (State, bool) { ok := !s.FavoritesOnly; s.FavoritesOnly = true; return s, ok },
	}
	for _, base := range bases {
		for _, f := range []FavoriteSet{nil, favs} {
			before := len(Apply(threads, base, f).Visible)
			for i, ext := range extend {
				next, ok := ext(base)
				if !ok {
					continue
				}
				after := len(Apply(threads, next, f).Visible)
				if after > before {
					t.Fatalf("predicate %d grew visible set from %d to %d (base %+v)", i, before, after, base)
				}
			}
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	st := State{Category: "Echo"}
	once := Apply(sample(), st, nil)
	twice := Apply(once.Visible, st, nil)
	if !reflect.DeepEqual(ids(once.Visible), ids(twice.Visible)) {
		t.Fatalf("re-filtering changed result: %v vs %v", ids(once.Visible), ids(twice.Visible))
	}
}

func TestParseYear(t *testing.T) {
	cases := map[string]int{"": 0, "All": 0, "all": 0, "2023": 2023, "abc": 0, "-5": 0}
	for in, want := range cases {
		if got := ParseYear(in); got != want {
			t.Fatalf("ParseYear(%q)=%d, want %d", in, got, want)
		}
	}
}

func TestFacetsSkipUndatedYear(t *testing.T) {
	threads := append(sample(), rthread("U", 0, false, []string{"General"}, "no date"))
	res := Apply(threads, State{}, nil)
	if !reflect.DeepEqual(res.Facets.Years, []int{2023, 2022, 2021}) {
		t.Fatalf("years=%v, undated threads must not add a year", res.Facets.Years)
	}
	if res.Stats.FilteredCount != len(threads) {
		t.Fatalf("undated thread should still be visible: %+v", res.Stats)
	}
}
