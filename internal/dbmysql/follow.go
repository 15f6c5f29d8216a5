package dbmysql

import (
	"time"
)

// Follow is one directed edge: FollowerID follows FolloweeID. The composite
// key keeps the adjacency lists free of duplicates.
type Follow struct {
	FollowerID string    `gorm:"primaryKey;column:follower_id;size:128;check:chk_follows_not_self,follower_id <> followee_id" json:"followerId"`
	FolloweeID string    `gorm:"primaryKey;column:followee_id;size:128;index" json:"followeeId"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
