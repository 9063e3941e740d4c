package overlay

import "time"

// Favorite marks a thread as bookmarked by a user. Existence is membership.
type Favorite struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;column:user_id;uniqueIndex:idx_favorite_user_thread,priority:1" json:"userId"`
	ThreadID  string    `gorm:"type:varchar(64);not null;column:thread_id;uniqueIndex:idx_favorite_user_thread,priority:2" json:"threadId"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"createdAt"`
}

func (Favorite) TableName() string { return "favorites" }
