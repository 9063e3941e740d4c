package domain

import (
	"github.com/yungbote/pearls-backend/internal/domain/content"
	"github.com/yungbote/pearls-backend/internal/domain/overlay"
	"github.com/yungbote/pearls-backend/internal/domain/user"
)

type User = user.User

type DeletedItem = overlay.DeletedItem
type TweetEdit = overlay.TweetEdit
type Favorite = overlay.Favorite

type Thread = content.Thread
type Tweet = content.Tweet
type Media = content.Media
type ResolvedThread = content.ResolvedThread
type ResolvedTweet = content.ResolvedTweet

const (
	RoleUser  = user.RoleUser
	RoleAdmin = user.RoleAdmin

	ItemTypeThread = overlay.ItemTypeThread
	ItemTypeTweet  = overlay.ItemTypeTweet
)

var EncodeHiddenMedia = overlay.EncodeHiddenMedia

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&overlay.DeletedItem{},
		&overlay.TweetEdit{},
		&overlay.Favorite{},
	}
}
