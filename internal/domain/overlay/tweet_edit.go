package overlay

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// TweetEdit replaces a tweet's text and/or suppresses some of its media. At most
// one row exists per (thread_id, tweet_index). A nil EditedText or empty
// HiddenMedia leaves that part of the original tweet untouched.
type TweetEdit struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID    string         `gorm:"type:varchar(64);not null;column:thread_id;uniqueIndex:idx_tweet_edit_target,priority:1" json:"threadId"`
	TweetIndex  int            `gorm:"not null;column:tweet_index;uniqueIndex:idx_tweet_edit_target,priority:2" json:"tweetIndex"`
	EditedText  *string        `gorm:"type:text;column:edited_text" json:"editedText"`
	HiddenMedia datatypes.JSON `gorm:"column:hidden_media" json:"hiddenMedia"`
	EditedAt    time.Time      `gorm:"not null;column:edited_at" json:"editedAt"`
	EditedBy    *uint          `gorm:"column:edited_by" json:"editedBy"`
}

func (TweetEdit) TableName() string { return "tweet_edits" }

func (e *TweetEdit) Valid() bool {
	return e != nil && e.ThreadID != "" && e.TweetIndex >= 0
}

// HiddenMediaPaths decodes the suppressed paths. Undecodable payloads yield nil.
func (e *TweetEdit) HiddenMediaPaths() []string {
	if e == nil || len(e.HiddenMedia) == 0 {
		return nil
	}
	var paths []string
	if err := json.Unmarshal(e.HiddenMedia, &paths); err != nil {
		return nil
	}
	return paths
}

// EncodeHiddenMedia turns a path list into the stored column value; nil and
// empty lists both mean "no suppression" and are stored as NULL.
func EncodeHiddenMedia(paths []string) datatypes.JSON {
	if len(paths) == 0 {
		return nil
	}
	raw, err := json.Marshal(paths)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
