package services

import (
	"context"

	"github.com/dmitrijs2005/chirp/internal/client/cache"
	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

const (
	noticeFollowed       = "Followed"
	noticeFollowFailed   = "Failed to follow"
	noticeUnfollowed     = "Unfollowed"
	noticeUnfollowFailed = "Failed to unfollow"
)

// UserService covers users and the follow graph.
type UserService struct {
	api    *client.API
	cache  *cache.QueryCache
	logger logging.Logger
}

func NewUserService(d Deps) *UserService {
	d = d.withDefaults()
	return &UserService{api: d.API, cache: d.Cache, logger: d.Logger.With("service", "users")}
}

// Me returns the session user.
func (s *UserService) Me(ctx context.Context) (models.User, error) {
	return cache.Query(ctx, s.cache, KeyMe, func(ctx context.Context) (models.User, error) {
		u, err := s.api.Users.Me(ctx)
		if err != nil {
			return models.User{}, err
		}
		return *u, nil
	})
}

func (s *UserService) User(ctx context.Context, id int64) (models.User, error) {
	return cache.Query(ctx, s.cache, UserKey(id), func(ctx context.Context) (models.User, error) {
		u, err := s.api.Users.ByID(ctx, id)
		if err != nil {
			return models.User{}, err
		}
		return *u, nil
	})
}

func (s *UserService) UserPosts(ctx context.Context, id int64) ([]models.Post, error) {
	return cache.Query(ctx, s.cache, UserPostsKey(id), func(ctx context.Context) ([]models.Post, error) {
		return s.api.Users.Posts(ctx, id)
	})
}

func (s *UserService) UserReplies(ctx context.Context, id int64) ([]models.Post, error) {
	return cache.Query(ctx, s.cache, UserRepliesKey(id), func(ctx context.Context) ([]models.Post, error) {
		return s.api.Users.Replies(ctx, id)
	})
}

func (s *UserService) UserFollowCounts(ctx context.Context, id int64) (models.FollowCounts, error) {
	return cache.Query(ctx, s.cache, UserFollowCountsKey(id), func(ctx context.Context) (models.FollowCounts, error) {
		return s.api.Users.FollowCounts(ctx, id)
	})
}

func (s *UserService) Followers(ctx context.Context) ([]models.Follow, error) {
	return cache.Query(ctx, s.cache, KeyFollowers, s.api.Follows.Followers)
}

func (s *UserService) Followees(ctx context.Context) ([]models.Follow, error) {
	return cache.Query(ctx, s.cache, KeyFollowees, s.api.Follows.Followees)
}

func (s *UserService) FollowCounts(ctx context.Context) (models.FollowCounts, error) {
	return cache.Query(ctx, s.cache, KeyFollowCounts, s.api.Follows.Counts)
}

func (s *UserService) IsFollowing(ctx context.Context, userID int64) (bool, error) {
	return cache.Query(ctx, s.cache, FollowingKey(userID), func(ctx context.Context) (bool, error) {
		return s.api.Follows.IsFollowing(ctx, userID)
	})
}

// followKeys are refreshed after any change of the follow graph.
func followKeys(userID int64) []cache.Key {
	return []cache.Key{KeyFollowees, KeyFollowCounts, FollowingKey(userID), UserFollowCountsKey(userID)}
}

func (s *UserService) Follow(ctx context.Context, userID int64) (*models.Follow, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*models.Follow]{
		Name: "follow",
		Run: func(ctx context.Context) (*models.Follow, error) {
			return s.api.Follows.Follow(ctx, userID)
		},
		Invalidate:    followKeys(userID),
		SuccessNotice: noticeFollowed,
		FailureNotice: noticeFollowFailed,
	})
}

func (s *UserService) Unfollow(ctx context.Context, userID int64) error {
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[struct{}]{
		Name: "unfollow",
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Follows.Unfollow(ctx, userID)
		},
		Invalidate:    followKeys(userID),
		SuccessNotice: noticeUnfollowed,
		FailureNotice: noticeUnfollowFailed,
	})
	return err
}
