package overlay

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/pkg/dbctx"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type FavoriteRepo interface {
	ListThreadIDs(dbc dbctx.Context, userID uint) ([]string, error)
	Add(dbc dbctx.Context, userID uint, threadID string) (bool, error)
	Remove(dbc dbctx.Context, userID uint, threadID string) (bool, error)
	Exists(dbc dbctx.Context, userID uint, threadID string) (bool, error)
}

type favoriteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	return &favoriteRepo{db: db, log: baseLog.With("repo", "FavoriteRepo")}
}

func (r *favoriteRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *favoriteRepo) ListThreadIDs(dbc dbctx.Context, userID uint) ([]string, error) {
	var ids []string
	if userID == 0 {
		return ids, nil
	}
	if err := r.tx(dbc).Model(&types.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Pluck("thread_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Add is a set insert: the unique (user_id, thread_id) index turns a repeat
// into a no-op. The bool reports whether a row was written.
func (r *favoriteRepo) Add(dbc dbctx.Context, userID uint, threadID string) (bool, error) {
	res := r.tx(dbc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "thread_id"}},
		DoNothing: true,
	}).Create(&types.Favorite{UserID: userID, ThreadID: threadID})
	return res.RowsAffected > 0, res.Error
}

func (r *favoriteRepo) Remove(dbc dbctx.Context, userID uint, threadID string) (bool, error) {
	res := r.tx(dbc).
		Where("user_id = ? AND thread_id = ?", userID, threadID).
		Delete(&types.Favorite{})
	return res.RowsAffected > 0, res.Error
}

func (r *favoriteRepo) Exists(dbc dbctx.Context, userID uint, threadID string) (bool, error) {
	var count int64
	if err := r.tx(dbc).Model(&types.Favorite{}).
		Where("user_id = ? AND thread_id = ?", userID, threadID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
