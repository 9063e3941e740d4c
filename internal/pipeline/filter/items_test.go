package filter

import (
	"testing"

	"github.com/yungbote/pearls-backend/internal/domain/content"
)

func TestFlattenKeepsOriginalIndices(t *testing.T) {
	th := rthread("A", 2023, true, []string{"Pearl"}, "first", "third")
	th.Tweets[1].Index = 2
	items := Flatten([]content.ResolvedThread{th})
	if len(items) != 2 || items[1].TweetIndex != 2 || items[1].ThreadID != "A" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestApplyItemsSearchesHashtags(t *testing.T) {
	threads := []content.ResolvedThread{
		rthread("A", 2023, true, []string{"Pearl", "Video"}, "Look at this #Echocardiography clip"),
		rthread("B", 2022, false, []string{"General"}, "No tags here"),
	}
	res := ApplyItems(Flatten(threads), State{SearchQuery: "echocardio"}, nil)
	if len(res.Items) != 1 || res.Items[0].ThreadID != "A" {
		t.Fatalf("unexpected items: %+v", res.Items)
	}
	if res.Facets.CategoryCounts["Video"] != 1 || res.Facets.CategoryCounts[All] != 2 || res.Facets.CategoryCounts["Echo"] != 0 {
		t.Fatalf("counts=%v", res.Facets.CategoryCounts)
	}
	if res.Stats.Total != 2 || res.Stats.Pearls != 1 || res.Stats.FilteredCount != 1 {
		t.Fatalf("stats=%+v", res.Stats)
	}
	if len(res.Facets.Categories) != len(ItemCategories) {
		t.Fatalf("categories=%v", res.Facets.Categories)
	}
}
