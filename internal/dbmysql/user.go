package dbmysql

import (
	"time"
)

// User is a profile keyed by the identity provider subject
type User struct {
	UserID    string    `gorm:"primaryKey;column:user_id;size:128" json:"uid"`
	Email     string    `gorm:"column:email;size:255" json:"email"`
	Username  string    `gorm:"column:username;size:50;index" json:"username"`
	Bio       string    `gorm:"column:bio;type:text" json:"bio"`
	PhotoURL  string    `gorm:"column:photo_url;size:1024" json:"photoURL"`
	Interests []string  `gorm:"column:interests;type:json;serializer:json" json:"interests"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// derived from the follows table, never stored on the row
	Followers []string `gorm:"-" json:"followers"`
	Following []string `gorm:"-" json:"following"`
}
