package overlay

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/pkg/dbctx"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

type TweetEditRepo interface {
	List(dbc dbctx.Context) ([]types.TweetEdit, error)
	Get(dbc dbctx.Context, threadID string, tweetIndex int) (*types.TweetEdit, error)
	Upsert(dbc dbctx.Context, edit *types.TweetEdit) error
	Delete(dbc dbctx.Context, threadID string, tweetIndex int) (int64, error)
}

type tweetEditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTweetEditRepo(db *gorm.DB, baseLog *logger.Logger) TweetEditRepo {
	return &tweetEditRepo{db: db, log: baseLog.With("repo", "TweetEditRepo")}
}

func (r *tweetEditRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *tweetEditRepo) List(dbc dbctx.Context) ([]types.TweetEdit, error) {
	var out []types.TweetEdit
	if err := r.tx(dbc).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tweetEditRepo) Get(dbc dbctx.Context, threadID string, tweetIndex int) (*types.TweetEdit, error) {
	var e types.TweetEdit
	err := r.tx(dbc).
		Where("thread_id = ? AND tweet_index = ?", threadID, tweetIndex).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert writes the edit for (thread_id, tweet_index), replacing every
// content column of an existing row. A nil EditedText stored over a previous
// text edit therefore reverts that tweet to its original text.
func (r *tweetEditRepo) Upsert(dbc dbctx.Context, edit *types.TweetEdit) error {
	return r.tx(dbc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "thread_id"}, {Name: "tweet_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"edited_text", "hidden_media", "edited_at", "edited_by"}),
	}).Create(edit).Error
}

func (r *tweetEditRepo) Delete(dbc dbctx.Context, threadID string, tweetIndex int) (int64, error) {
	res := r.tx(dbc).
		Where("thread_id = ? AND tweet_index = ?", threadID, tweetIndex).
		Delete(&types.TweetEdit{})
	return res.RowsAffected, res.Error
}
