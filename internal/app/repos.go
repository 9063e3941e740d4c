package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pearls-backend/internal/data/repos"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type Repos struct {
	User        repos.UserRepo
	DeletedItem repos.DeletedItemRepo
	TweetEdit   repos.TweetEditRepo
	Favorite    repos.FavoriteRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		DeletedItem: repos.NewDeletedItemRepo(db, log),
		TweetEdit:   repos.NewTweetEditRepo(db, log),
		Favorite:    repos.NewFavoriteRepo(db, log),
	}
}

// overlaySource reads the overlay tables for the overlay store.
func (r Repos) overlaySource() repos.OverlaySnapshotSource {
	return repos.OverlaySnapshotSource{Deletions: r.DeletedItem, Edits: r.TweetEdit}
}
