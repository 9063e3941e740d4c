package resolve

import (
	"github.com/yungbote/pearls-backend/internal/domain/content"
	"github.com/yungbote/pearls-backend/internal/domain/overlay"
)

// Report summarizes what a resolution pass skipped or neutralized.
type Report struct {
	Threads           int `json:"threads"`
	Resolved          int `json:"resolved"`
	DeletedThreads    int `json:"deleted_threads"`
	EvaporatedThreads int `json:"evaporated_threads"`
	DeletedTweets     int `json:"deleted_tweets"`
	AppliedEdits      int `json:"applied_edits"`
	SkippedThreads    int `json:"skipped_threads"`
	SkippedDeletions  int `json:"skipped_deletions"`
	SkippedEdits      int `json:"skipped_edits"`
}

// Resolve applies tombstones, then edits, to the corpus and returns the
// effective threads in corpus order. It has no side effects and never panics
// on bad records.
func Resolve(threads []content.Thread, deletions []overlay.DeletedItem, edits []overlay.TweetEdit) []content.ResolvedThread {
	out, _ := ResolveWithReport(threads, deletions, edits)
	return out
}

func ResolveWithReport(threads []content.Thread, deletions []overlay.DeletedItem, edits []overlay.TweetEdit) ([]content.ResolvedThread, Report) {
	ix := BuildIndex(deletions, edits)
	rep := Report{
		Threads:          len(threads),
		SkippedDeletions: ix.SkippedDeletions,
		SkippedEdits:     ix.SkippedEdits,
	}
	out := make([]content.ResolvedThread, 0, len(threads))
	for i := range threads {
		t := &threads[i]
		if t.ID == "" {
			rep.SkippedThreads++
			continue
		}
		if ix.ThreadDeleted(t.ID) {
			rep.DeletedThreads++
			continue
		}
		rt, st := resolveThread(ix, t)
		rep.DeletedTweets += st.deleted
		rep.AppliedEdits += st.edited
		if len(rt.Tweets) == 0 {
			rep.EvaporatedThreads++
			continue
		}
		out = append(out, rt)
	}
	rep.Resolved = len(out)
	return out, rep
}

type threadStats struct {
	deleted int
	edited  int
}

func resolveThread(ix *Index, t *content.Thread) (content.ResolvedThread, threadStats) {
	var st threadStats
	rt := content.ResolvedThread{
		ID:         t.ID,
		Type:       t.Type,
		Date:       t.Date,
		Year:       t.Year,
		IsPearl:    t.IsPearl,
		Categories: append([]string(nil), t.Categories...),
		Answer:     t.Answer,
		Tweets:     make([]content.ResolvedTweet, 0, len(t.Tweets)),
	}
	touched := ix.Touches(t.ID)
	for idx := range t.Tweets {
		if touched && ix.TweetDeleted(t.ID, idx) {
			st.deleted++
			continue
		}
		tw := &t.Tweets[idx]
		if tw.Malformed {
			continue
		}
		rtw := content.ResolvedTweet{
			Index:     idx,
			Date:      tw.Date,
			Timestamp: tw.Timestamp,
			Text:      tw.Text,
			Media:     append([]content.Media(nil), tw.Media...),
		}
		if touched {
			if e := ix.Edit(t.ID, idx); e != nil && applyEdit(&rtw, e) {
				st.edited++
			}
		}
		decorate(&rtw)
		rt.Tweets = append(rt.Tweets, rtw)
	}
	rt.TweetCount = len(rt.Tweets)
	rt.Mutated = st.deleted > 0 || st.edited > 0
	if rt.Mutated {
		rt.Media = aggregateMedia(t, rt.Tweets)
	} else {
		rt.Media = append([]content.Media(nil), t.Media...)
	}
	return rt, st
}

// applyEdit reports whether the edit changed anything.
func applyEdit(tw *content.ResolvedTweet, e *overlay.TweetEdit) bool {
	changed := false
	if e.EditedText != nil {
		tw.Text = *e.EditedText
		changed = true
	}
	if hidden := e.HiddenMediaPaths(); len(hidden) > 0 {
		drop := make(map[string]struct{}, len(hidden))
		for _, p := range hidden {
			drop[p] = struct{}{}
		}
		kept := tw.Media[:0]
		for _, m := range tw.Media {
			if _, ok := drop[m.Path]; ok {
				changed = true
				continue
			}
			kept = append(kept, m)
		}
		tw.Media = kept
	}
	tw.Edited = changed
	return changed
}

func decorate(tw *content.ResolvedTweet) {
	n, rest := content.SplitOrdinal(tw.Text)
	tw.Ordinal = n
	tw.DisplayText = rest
	tw.URLs = content.ExtractURLs(tw.Text)
}

// aggregateMedia keeps thread-level media still shown by a surviving tweet, plus
// entries that never belonged to any tweet of the original thread.
func aggregateMedia(t *content.Thread, surviving []content.ResolvedTweet) []content.Media {
	visible := make(map[string]struct{})
	for _, tw := range surviving {
		for _, m := range tw.Media {
			visible[m.Path] = struct{}{}
		}
	}
	owned := make(map[string]struct{})
	for _, tw := range t.Tweets {
		for _, m := range tw.Media {
			owned[m.Path] = struct{}{}
		}
	}
	out := make([]content.Media, 0, len(t.Media))
	for _, m := range t.Media {
		_, shown := visible[m.Path]
		_, belongs := owned[m.Path]
		if shown || !belongs {
			out = append(out, m)
		}
	}
	return out
}
