package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/pearls-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, openID, role string) *types.User {
	tb.Helper()
	u := &types.User{
		OpenID:       openID,
		Name:         fmt.Sprintf("user %s", openID),
		Role:         role,
		LastSignedIn: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTweetDeletion(tb testing.TB, ctx context.Context, tx *gorm.DB, threadID string, idx int) *types.DeletedItem {
	tb.Helper()
	d := &types.DeletedItem{ItemType: types.ItemTypeTweet, ThreadID: threadID, TweetIndex: &idx}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed deletion: %v", err)
	}
	return d
}
