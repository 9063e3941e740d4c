package overlay

import "time"

const (
	ItemTypeThread = "thread"
	ItemTypeTweet  = "tweet"
)

// DeletedItem is a tombstone over the corpus. TweetIndex is nil for thread
// tombstones and otherwise indexes the thread's original tweet sequence.
type DeletedItem struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemType   string    `gorm:"type:varchar(16);not null;column:item_type;index:idx_deleted_item_target,priority:2" json:"itemType"`
	ThreadID   string    `gorm:"type:varchar(64);not null;column:thread_id;index:idx_deleted_item_target,priority:1" json:"threadId"`
	TweetIndex *int      `gorm:"column:tweet_index" json:"tweetIndex"`
	DeletedAt  time.Time `gorm:"not null;autoCreateTime;column:deleted_at" json:"deletedAt"`
	DeletedBy  *uint     `gorm:"column:deleted_by" json:"deletedBy"`
}

func (DeletedItem) TableName() string { return "deleted_items" }

// Valid reports whether the record carries the fields resolution needs.
func (d *DeletedItem) Valid() bool {
	if d == nil || d.ThreadID == "" {
		return false
	}
	switch d.ItemType {
	case ItemTypeThread:
		return true
	case ItemTypeTweet:
		return d.TweetIndex != nil && *d.TweetIndex >= 0
	default:
		return false
	}
}
