package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
)

func (s *Store) Follow(ctx context.Context, followerID, followeeID int64) (models.Follow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if followerID == followeeID {
		return models.Follow{}, fmt.Errorf("%w: cannot follow yourself", common.ErrorValidation)
	}
	if _, ok := s.users[followeeID]; !ok {
		return models.Follow{}, common.ErrorNotFound
	}
	if s.findFollow(followerID, followeeID) != nil {
		return models.Follow{}, common.ErrorAlreadyExists
	}
	f := &models.Follow{
		ID:               s.nextID(),
		FollowerID:       followerID,
		FollowerUsername: s.username(followerID),
		FolloweeID:       followeeID,
		FolloweeUsername: s.username(followeeID),
		CreatedAt:        s.now(),
	}
	s.follows[f.ID] = f
	return *f, nil
}

func (s *Store) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.findFollow(followerID, followeeID)
	if f == nil {
		return common.ErrorNotFound
	}
	delete(s.follows, f.ID)
	return nil
}

func (s *Store) findFollow(followerID, followeeID int64) *models.Follow {
	for _, f := range s.follows {
		if f.FollowerID == followerID && f.FolloweeID == followeeID {
			return f
		}
	}
	return nil
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followeeID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findFollow(followerID, followeeID) != nil
}

// Followers lists the relationships in which userID is followed.
func (s *Store) Followers(ctx context.Context, userID int64) []models.Follow {
	return s.followList(func(f *models.Follow) bool { return f.FolloweeID == userID })
}

// Followees lists the relationships in which userID follows someone.
func (s *Store) Followees(ctx context.Context, userID int64) []models.Follow {
	return s.followList(func(f *models.Follow) bool { return f.FollowerID == userID })
}

func (s *Store) followList(keep func(f *models.Follow) bool) []models.Follow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Follow{}
	for _, f := range s.follows {
		if keep(f) {
			out = append(out, *f)
		}
	}
	sortBy(out, func(a, b models.Follow) bool { return a.ID > b.ID })
	return out
}

func (s *Store) FollowCounts(ctx context.Context, userID int64) models.FollowCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c models.FollowCounts
	for _, f := range s.follows {
		if f.FolloweeID == userID {
			c.FollowersCount++
		}
		if f.FollowerID == userID {
			c.FolloweesCount++
		}
	}
	return c
}
