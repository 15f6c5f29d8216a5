package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"travelgram/internal/common"
	"travelgram/internal/dbmysql"
)

//go:generate mockgen -source=user_service.go -destination=mock_user_service.go -package=user

const minSearchLength = 2

// ProfileInput carries editable profile fields; nil means unchanged
type ProfileInput struct {
	Email     *string   `json:"email"`
	Username  *string   `json:"username"`
	Bio       *string   `json:"bio"`
	PhotoURL  *string   `json:"photoURL"`
	Interests *[]string `json:"interests"`
}

type UserService interface {
	CreateProfile(ctx context.Context, userID string, in ProfileInput) (*dbmysql.User, error)
	GetProfile(ctx context.Context, userID string) (*dbmysql.User, error)
	UpdateProfile(ctx context.Context, requesterID, userID string, in ProfileInput) (*dbmysql.User, error)
	SearchUsers(ctx context.Context, query string) ([]*dbmysql.User, error)

	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	ListFollowers(ctx context.Context, userID string) ([]*dbmysql.User, error)
	ListFollowing(ctx context.Context, userID string) ([]*dbmysql.User, error)

	// used by the feed composer
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	ProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*dbmysql.User, error)
}

type userService struct {
	userRepo   UserRepository
	followRepo FollowRepository
	logger     *zap.Logger
}

func NewUserService(userRepo UserRepository, followRepo FollowRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, followRepo: followRepo, logger: logger}
}

func (s *userService) CreateProfile(ctx context.Context, userID string, in ProfileInput) (*dbmysql.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	if in.Username == nil {
		return nil, fmt.Errorf("%w: username is required", common.ErrValidation)
	}

	user := &dbmysql.User{UserID: userID, Interests: []string{}}
	if err := applyProfileInput(user, in); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.CheckUserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: profile already exists", common.ErrConflict)
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	user.Followers = []string{}
	user.Following = []string{}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dbmysql.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Followers, err = s.followRepo.FollowerIDs(ctx, userID); err != nil {
		return nil, err
	}
	if user.Following, err = s.followRepo.FollowingIDs(ctx, userID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, requesterID, userID string, in ProfileInput) (*dbmysql.User, error) {
	if requesterID != userID {
		return nil, fmt.Errorf("%w: cannot edit another user's profile", common.ErrForbidden)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := applyProfileInput(user, in); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SearchUsers returns every username containing query, case-insensitively.
// Queries shorter than two characters (counted as sent) return nothing.
func (s *userService) SearchUsers(ctx context.Context, query string) ([]*dbmysql.User, error) {
	if utf8.RuneCountInString(query) < minSearchLength {
		return []*dbmysql.User{}, nil
	}
	return s.userRepo.SearchByUsername(ctx, query)
}

func (s *userService) Follow(ctx context.Context, followerID, targetID string) error {
	if err := s.checkPair(ctx, followerID, targetID); err != nil {
		return err
	}
	if err := s.followRepo.Follow(ctx, followerID, targetID); err != nil {
		return err
	}
	s.logger.Debug("user followed", zap.String("follower", followerID), zap.String("target", targetID))
	return nil
}

func (s *userService) Unfollow(ctx context.Context, followerID, targetID string) error {
	if err := s.checkPair(ctx, followerID, targetID); err != nil {
		return err
	}
	if err := s.followRepo.Unfollow(ctx, followerID, targetID); err != nil {
		return err
	}
	s.logger.Debug("user unfollowed", zap.String("follower", followerID), zap.String("target", targetID))
	return nil
}

// checkPair rejects self edges and requires both ends to exist
func (s *userService) checkPair(ctx context.Context, followerID, targetID string) error {
	if followerID == "" || targetID == "" {
		return fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	if followerID == targetID {
		return fmt.Errorf("%w: you cannot follow yourself", common.ErrValidation)
	}
	for _, id := range []string{followerID, targetID} {
		exists, err := s.userRepo.CheckUserExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: user %s", common.ErrNotFound, id)
		}
	}
	return nil
}

func (s *userService) ListFollowers(ctx context.Context, userID string) ([]*dbmysql.User, error) {
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.followRepo.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetUsersByIDs(ctx, ids)
}

func (s *userService) ListFollowing(ctx context.Context, userID string) ([]*dbmysql.User, error) {
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetUsersByIDs(ctx, ids)
}

// FollowingIDs returns ErrNotFound when the user has no profile yet
func (s *userService) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	exists, err := s.userRepo.CheckUserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, userID)
	}
	return s.followRepo.FollowingIDs(ctx, userID)
}

func (s *userService) ProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*dbmysql.User, error) {
	users, err := s.userRepo.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*dbmysql.User, len(users))
	for _, u := range users {
		out[u.UserID] = u
	}
	return out, nil
}

func applyProfileInput(user *dbmysql.User, in ProfileInput) error {
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := common.ValidateUsername(username); err != nil {
			return err
		}
		user.Username = username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := common.ValidateEmail(email); err != nil {
			return err
		}
		user.Email = email
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > 500 {
			return fmt.Errorf("%w: bio must be at most 500 characters", common.ErrValidation)
		}
		user.Bio = *in.Bio
	}
	if in.PhotoURL != nil {
		user.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}
	if in.Interests != nil {
		user.Interests = append([]string{}, (*in.Interests)...)
	}
	return nil
}

// IsNotFound is a small helper for callers that treat a missing profile as empty
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
