package services

import (
	"context"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories"
	"github.com/anonto42/socialhub/backend/validators"
)

// UserService manages profiles and the follow graph.
type UserService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	notifier Notifier
}

func NewUserService(users repositories.UserRepository, follows repositories.FollowRepository, notifier Notifier) *UserService {
	return &UserService{users: users, follows: follows, notifier: notifier}
}

// Register creates the profile of an authenticated principal.
func (s *UserService) Register(ctx context.Context, principalID string, req models.RegisterUserRequest) (*models.User, error) {
	if principalID == "" {
		return nil, apperrors.New(apperrors.KindUnauthorized, "User not authenticated")
	}
	if err := validators.Struct(req); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByID(ctx, principalID)
	if err == nil {
		return nil, apperrors.Conflict("User already registered")
	}
	if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	user := &models.User{ID: principalID, Username: req.Username, Email: req.Email}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	user.Followings = []string{}
	return user, nil
}

// Get returns a user with their followings populated.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	followings, err := s.follows.GetFollowingIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Followings = followings
	return user, nil
}

// Follow adds targetID to followerID's followings.
func (s *UserService) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return apperrors.Validation("Cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, followerID); err != nil {
		return err
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	following, err := s.follows.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if following {
		return apperrors.Conflict("Already following this user")
	}
	if err := s.follows.CreateFollow(ctx, &models.Follow{FollowerID: followerID, FollowingID: targetID}); err != nil {
		return err
	}

	notifyBestEffort(ctx, s.notifier, followerID, models.CreateNotificationRequest{
		ReceiverID: targetID,
		Type:       models.NotificationFollow,
	})
	return nil
}

// Unfollow removes targetID from followerID's followings.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID string) error {
	if err := s.follows.DeleteFollow(ctx, followerID, targetID); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return apperrors.Conflict("You are not following this user")
		}
		return err
	}

	notifyBestEffort(ctx, s.notifier, followerID, models.CreateNotificationRequest{
		ReceiverID: targetID,
		Type:       models.NotificationUnfollow,
	})
	return nil
}

// Followings returns the ids userID follows, oldest follow first.
func (s *UserService) Followings(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.GetFollowingIDs(ctx, userID)
}
