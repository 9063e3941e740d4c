package resolve

import (
	"github.com/yungbote/pearls-backend/internal/domain/overlay"
)

type tweetKey struct {
	threadID string
	index    int
}

// Index is the overlay partitioned for lookup: thread tombstones, per-thread
// tweet tombstones, and edits keyed by (thread id, original tweet index).
type Index struct {
	deletedThreads map[string]struct{}
	deletedTweets  map[string]map[int]struct{}
	edits          map[tweetKey]*overlay.TweetEdit
	touched        map[string]struct{}

	SkippedDeletions int
	SkippedEdits     int
}

// BuildIndex never fails; malformed records are counted and skipped.
func BuildIndex(deletions []overlay.DeletedItem, edits []overlay.TweetEdit) *Index {
	ix := &Index{
		deletedThreads: make(map[string]struct{}),
		deletedTweets:  make(map[string]map[int]struct{}),
		edits:          make(map[tweetKey]*overlay.TweetEdit, len(edits)),
		touched:        make(map[string]struct{}),
	}
	for i := range deletions {
		d := &deletions[i]
		if !d.Valid() {
			ix.SkippedDeletions++
			continue
		}
		ix.touched[d.ThreadID] = struct{}{}
		if d.ItemType == overlay.ItemTypeThread {
			ix.deletedThreads[d.ThreadID] = struct{}{}
			continue
		}
		set, ok := ix.deletedTweets[d.ThreadID]
		if !ok {
			set = make(map[int]struct{})
			ix.deletedTweets[d.ThreadID] = set
		}
		set[*d.TweetIndex] = struct{}{}
	}
	for i := range edits {
		e := &edits[i]
		if !e.Valid() {
			ix.SkippedEdits++
			continue
		}
		key := tweetKey{threadID: e.ThreadID, index: e.TweetIndex}
		// Storage keeps one row per key; if a feed ever carries two, the newer wins.
		if prev, ok := ix.edits[key]; ok && prev.EditedAt.After(e.EditedAt) {
			continue
		}
		ix.edits[key] = e
		ix.touched[e.ThreadID] = struct{}{}
	}
	return ix
}

func (ix *Index) ThreadDeleted(threadID string) bool {
	_, ok := ix.deletedThreads[threadID]
	return ok
}

func (ix *Index) TweetDeleted(threadID string, index int) bool {
	set, ok := ix.deletedTweets[threadID]
	if !ok {
		return false
	}
	_, ok = set[index]
	return ok
}

func (ix *Index) Edit(threadID string, index int) *overlay.TweetEdit {
	return ix.edits[tweetKey{threadID: threadID, index: index}]
}

// Touches reports whether any overlay record references the thread.
func (ix *Index) Touches(threadID string) bool {
	_, ok := ix.touched[threadID]
	return ok
}
