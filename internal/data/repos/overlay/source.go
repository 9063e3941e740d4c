package overlay

import (
	"context"

	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/pkg/dbctx"
)

// SnapshotSource reads both overlay tables for the overlay cache.
type SnapshotSource struct {
	Deletions DeletedItemRepo
	Edits     TweetEditRepo
}

func (s SnapshotSource) ListDeletedItems(ctx context.Context) ([]types.DeletedItem, error) {
	return s.Deletions.List(dbctx.Context{Ctx: ctx})
}

func (s SnapshotSource) ListTweetEdits(ctx context.Context) ([]types.TweetEdit, error) {
	return s.Edits.List(dbctx.Context{Ctx: ctx})
}
