package overlay

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/pkg/dbctx"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type DeletedItemRepo interface {
	List(dbc dbctx.Context) ([]types.DeletedItem, error)
	AddThread(dbc dbctx.Context, threadID string, actorID *uint) (bool, error)
	AddTweet(dbc dbctx.Context, threadID string, tweetIndex int, actorID *uint) (bool, error)
	RemoveThread(dbc dbctx.Context, threadID string) (int64, error)
	RemoveTweet(dbc dbctx.Context, threadID string, tweetIndex int) (int64, error)
}

type deletedItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeletedItemRepo(db *gorm.DB, baseLog *logger.Logger) DeletedItemRepo {
	return &deletedItemRepo{db: db, log: baseLog.With("repo", "DeletedItemRepo")}
}

func (r *deletedItemRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *deletedItemRepo) List(dbc dbctx.Context) ([]types.DeletedItem, error) {
	var out []types.DeletedItem
	if err := r.tx(dbc).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AddThread inserts a thread tombstone unless one exists. The bool reports
// whether a row was written.
func (r *deletedItemRepo) AddThread(dbc dbctx.Context, threadID string, actorID *uint) (bool, error) {
	return r.insertIfAbsent(dbc, &types.DeletedItem{
		ItemType:  types.ItemTypeThread,
		ThreadID:  threadID,
		DeletedBy: actorID,
	})
}

func (r *deletedItemRepo) AddTweet(dbc dbctx.Context, threadID string, tweetIndex int, actorID *uint) (bool, error) {
	idx := tweetIndex
	return r.insertIfAbsent(dbc, &types.DeletedItem{
		ItemType:   types.ItemTypeTweet,
		ThreadID:   threadID,
		TweetIndex: &idx,
		DeletedBy:  actorID,
	})
}

func (r *deletedItemRepo) insertIfAbsent(dbc dbctx.Context, item *types.DeletedItem) (bool, error) {
	created := false
	err := r.tx(dbc).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&types.DeletedItem{}).
			Where("item_type = ? AND thread_id = ?", item.ItemType, item.ThreadID)
		if item.TweetIndex != nil {
			q = q.Where("tweet_index = ?", *item.TweetIndex)
		} else {
			q = q.Where("tweet_index IS NULL")
		}
		var existing types.DeletedItem
		err := q.Limit(1).Take(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *deletedItemRepo) RemoveThread(dbc dbctx.Context, threadID string) (int64, error) {
	res := r.tx(dbc).
		Where("item_type = ? AND thread_id = ?", types.ItemTypeThread, threadID).
		Delete(&types.DeletedItem{})
	return res.RowsAffected, res.Error
}

// RemoveTweet deletes only tweet tombstones; a thread tombstone on the same
// thread is left in place.
func (r *deletedItemRepo) RemoveTweet(dbc dbctx.Context, threadID string, tweetIndex int) (int64, error) {
	res := r.tx(dbc).
		Where("item_type = ? AND thread_id = ? AND tweet_index = ?", types.ItemTypeTweet, threadID, tweetIndex).
		Delete(&types.DeletedItem{})
	return res.RowsAffected, res.Error
}
