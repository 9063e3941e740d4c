package services

import (
	"errors"
	"reflect"
	"testing"

	types "github.com/yungbote/pearls-backend/internal/domain"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/pointers"
)

func countRows(t *testing.T, h *harness, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAdminCommandsRejectWithoutWriting(t *testing.T) {
	h := newHarness(t)
	cases := []struct {
		name string
		user *types.User
		want error
	}{
		{name: "anonymous", user: nil, want: pkgerrors.ErrUnauthorized},
		{name: "member", user: h.member, want: pkgerrors.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := as(tc.user)
			errs := []error{
				h.gateway.DeleteThread(ctx, "T1"),
				h.gateway.DeleteTweet(ctx, "T1", 0),
				h.gateway.RestoreThread(ctx, "T1"),
				h.gateway.RestoreTweet(ctx, "T1", 0),
				h.gateway.SaveTweetEdit(ctx, SaveTweetEditInput{ThreadID: "T1", EditedText: pointers.String("x")}),
				h.gateway.DeleteTweetEdit(ctx, "T1", 0),
			}
			for i, err := range errs {
				if !errors.Is(err, tc.want) {
					t.Fatalf("command %d: got %v, want %v", i, err, tc.want)
				}
			}
		})
	}
	if n := countRows(t, h, &types.DeletedItem{}); n != 0 {
		t.Fatalf("deleted_items rows=%d, want 0", n)
	}
	if n := countRows(t, h, &types.TweetEdit{}); n != 0 {
		t.Fatalf("tweet_edits rows=%d, want 0", n)
	}
	if h.bus.count() != 0 {
		t.Fatalf("rejected commands must not publish")
	}
}

func TestFavoritesRequireUser(t *testing.T) {
	h := newHarness(t)
	ctx := as(nil)
	if _, err := h.gateway.ListFavorites(ctx); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("ListFavorites: %v", err)
	}
	if err := h.gateway.AddFavorite(ctx, "T1"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("AddFavorite: %v", err)
	}
	if _, err := h.gateway.ToggleFavorite(ctx, "T1"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if n := countRows(t, h, &types.Favorite{}); n != 0 {
		t.Fatalf("favorites rows=%d, want 0", n)
	}
}

func TestInvalidTargets(t *testing.T) {
	h := newHarness(t)
	ctx := as(h.admin)
	if err := h.gateway.DeleteThread(ctx, "  "); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("blank thread id: %v", err)
	}
	if err := h.gateway.DeleteTweet(ctx, "T1", -1); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("negative index: %v", err)
	}
}

func TestDeleteTweetIsIdempotentAndInvalidates(t *testing.T) {
	h := newHarness(t)
	ctx := as(h.admin)

	before, err := h.store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := h.gateway.DeleteTweet(ctx, "T1", 1); err != nil {
			t.Fatalf("DeleteTweet #%d: %v", i, err)
		}
	}
	if n := countRows(t, h, &types.DeletedItem{}); n != 1 {
		t.Fatalf("deleted_items rows=%d, want 1", n)
	}
	after, err := h.store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if after.Version == before.Version || len(after.Deletions) != 1 {
		t.Fatalf("snapshot not refreshed: before=%d after=%d deletions=%d", before.Version, after.Version, len(after.Deletions))
	}
	if h.bus.count() != 2 {
		t.Fatalf("published %d invalidations, want 2", h.bus.count())
	}

	thread, err := h.content.Thread(ctx, "T1")
	if err != nil {
		t.Fatalf("Thread: %v", err)
	}
	if got := thread.OriginalIndices(); !reflect.DeepEqual(got, []int{0, 2}) || thread.TweetCount != 2 {
		t.Fatalf("indices=%v tweet_count=%d", got, thread.TweetCount)
	}

	if err := h.gateway.RestoreTweet(ctx, "T1", 1); err != nil {
		t.Fatalf("RestoreTweet: %v", err)
	}
	thread, _ = h.content.Thread(ctx, "T1")
	if len(thread.Tweets) != 3 {
		t.Fatalf("restore left %d tweets", len(thread.Tweets))
	}
}

func TestDeleteThreadHidesItUntilRestored(t *testing.T) {
	h := newHarness(t)
	ctx := as(h.admin)
	if err := h.gateway.DeleteThread(ctx, "T2"); err != nil {
		t.Fatalf("DeleteThread: %v", err)
	}
	if _, err := h.content.Thread(ctx, "T2"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("deleted thread still served: %v", err)
	}
	if err := h.gateway.RestoreThread(ctx, "T2"); err != nil {
		t.Fatalf("RestoreThread: %v", err)
	}
	if _, err := h.content.Thread(ctx, "T2"); err != nil {
		t.Fatalf("restored thread missing: %v", err)
	}
}

func TestSaveTweetEditReplacesPriorEdit(t *testing.T) {
	h := newHarness(t)
	ctx := as(h.admin)

	first := SaveTweetEditInput{ThreadID: "T1", TweetIndex: 0, EditedText: pointers.String("New text"), HiddenMedia: []string{"a.jpg"}}
	if err := h.gateway.SaveTweetEdit(ctx, first); err != nil {
		t.Fatalf("SaveTweetEdit: %v", err)
	}
	thread, _ := h.content.Thread(ctx, "T1")
	if tw := thread.Tweets[0]; tw.Text != "New text" || len(tw.Media) != 0 {
		t.Fatalf("first edit not applied: %+v", tw)
	}

	second := SaveTweetEditInput{ThreadID: "T1", TweetIndex: 0, HiddenMedia: []string{"a.jpg"}}
	if err := h.gateway.SaveTweetEdit(ctx, second); err != nil {
		t.Fatalf("SaveTweetEdit: %v", err)
	}
	if n := countRows(t, h, &types.TweetEdit{}); n != 1 {
		t.Fatalf("tweet_edits rows=%d, want 1", n)
	}
	thread, _ = h.content.Thread(ctx, "T1")
	if tw := thread.Tweets[0]; tw.Text != "1/ Old text" || len(tw.Media) != 0 {
		t.Fatalf("nil text should fall back to original: %+v", tw)
	}

	if err := h.gateway.DeleteTweetEdit(ctx, "T1", 0); err != nil {
		t.Fatalf("DeleteTweetEdit: %v", err)
	}
	thread, _ = h.content.Thread(ctx, "T1")
	if tw := thread.Tweets[0]; tw.Edited || len(tw.Media) != 1 {
		t.Fatalf("edit removal should restore original: %+v", tw)
	}
}

func TestFavoritesAreASet(t *testing.T) {
	h := newHarness(t)
	ctx := as(h.member)
	for i := 0; i < 2; i++ {
		if err := h.gateway.AddFavorite(ctx, "T1"); err != nil {
			t.Fatalf("AddFavorite: %v", err)
		}
	}
	ids, err := h.gateway.ListFavorites(ctx)
	if err != nil || !reflect.DeepEqual(ids, []string{"T1"}) {
		t.Fatalf("ListFavorites=%v err=%v", ids, err)
	}

	on, err := h.gateway.ToggleFavorite(ctx, "T1")
	if err != nil || on {
		t.Fatalf("toggle off: on=%v err=%v", on, err)
	}
	on, err = h.gateway.ToggleFavorite(ctx, "T3")
	if err != nil || !on {
		t.Fatalf("toggle on: on=%v err=%v", on, err)
	}
	if err := h.gateway.RemoveFavorite(ctx, "T3"); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if err := h.gateway.RemoveFavorite(ctx, "T3"); err != nil {
		t.Fatalf("RemoveFavorite twice: %v", err)
	}
	ids, _ = h.gateway.ListFavorites(ctx)
	if len(ids) != 0 {
		t.Fatalf("favorites=%v, want empty", ids)
	}
	if h.bus.count() != 0 {
		t.Fatalf("favorites must not invalidate the shared overlay")
	}
}
