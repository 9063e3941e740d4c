package user

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OpenID       string    `gorm:"type:varchar(64);uniqueIndex;not null;column:open_id" json:"openId"`
	Name         string    `gorm:"column:name" json:"name"`
	Email        string    `gorm:"type:varchar(320);column:email" json:"email"`
	LoginMethod  string    `gorm:"type:varchar(64);column:login_method" json:"loginMethod"`
	Role         string    `gorm:"type:varchar(16);not null;default:user;column:role" json:"role"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	LastSignedIn time.Time `gorm:"not null;column:last_signed_in" json:"lastSignedIn"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
