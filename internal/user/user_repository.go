package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"travelgram/internal/common"
	"travelgram/internal/dbmysql"
)

//go:generate mockgen -source=user_repository.go -destination=mock_user_repository.go -package=user

// UserRepository covers the profile rows of the social graph
type UserRepository interface {
	CreateUser(ctx context.Context, user *dbmysql.User) error
	GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error)
	UpdateUser(ctx context.Context, user *dbmysql.User) error
	CheckUserExists(ctx context.Context, userID string) (bool, error)

	// case-insensitive substring match on username
	SearchByUsername(ctx context.Context, query string) ([]*dbmysql.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmysql.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *dbmysql.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: user %s already exists", common.ErrConflict, user.UserID)
		}
		return dbErr("create user", err)
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, userID)
		}
		return nil, dbErr("get user", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *dbmysql.User) error {
	return dbErr("update user", r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) CheckUserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.User{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, dbErr("count users", err)
}

func (r *userRepository) SearchByUsername(ctx context.Context, query string) ([]*dbmysql.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	users := []*dbmysql.User{}
	err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE ?", pattern).
		Order("username").
		Find(&users).Error
	return users, dbErr("search users", err)
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmysql.User, error) {
	users := []*dbmysql.User{}
	if len(userIDs) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users).Error
	return users, dbErr("get users", err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// dbErr passes nil through
func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: mysql %s: %w", common.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: mysql %s: %v", common.ErrRepository, op, err)
}
