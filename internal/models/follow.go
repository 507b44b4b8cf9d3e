package models

import "time"

// Follow is a directed edge of the social graph. A user's followings are the
// FollowingIDs of their rows ordered by CreatedAt.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  string    `json:"follower_id" gorm:"size:128;index;uniqueIndex:idx_follower_following"`
	FollowingID string    `json:"following_id" gorm:"size:128;index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}
