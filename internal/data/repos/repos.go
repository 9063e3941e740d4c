package repos

import (
	"github.com/yungbote/pearls-backend/internal/data/repos/overlay"
	"github.com/yungbote/pearls-backend/internal/data/repos/user"
)

type UserRepo = user.UserRepo

type DeletedItemRepo = overlay.DeletedItemRepo
type TweetEditRepo = overlay.TweetEditRepo
type FavoriteRepo = overlay.FavoriteRepo

type OverlaySnapshotSource = overlay.SnapshotSource

var (
	NewUserRepo        = user.NewUserRepo
	NewDeletedItemRepo = overlay.NewDeletedItemRepo
	NewTweetEditRepo   = overlay.NewTweetEditRepo
	NewFavoriteRepo    = overlay.NewFavoriteRepo
)
