package user

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travelgram/internal/dbmysql"
)

//go:generate mockgen -source=follow_repository.go -destination=mock_follow_repository.go -package=user

// FollowRepository stores directed follow edges. Both mutations are
// idempotent.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	edge := &dbmysql.Follow{FollowerID: followerID, FolloweeID: followeeID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(edge).Error
	return dbErr("follow", err)
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&dbmysql.Follow{}).Error
	return dbErr("unfollow", err)
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&dbmysql.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at").
		Pluck("followee_id", &ids).Error
	return ids, dbErr("list following", err)
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&dbmysql.Follow{}).
		Where("followee_id = ?", userID).
		Order("created_at").
		Pluck("follower_id", &ids).Error
	return ids, dbErr("list followers", err)
}
