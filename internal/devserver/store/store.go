// Package store keeps the reference server's state in memory: users, login
// sessions, posts and their relationships, follows and media records.
//
// Read methods take the viewing user so per-viewer fields of a post
// (isLikedByMe, likeIdByMe, ...) are filled in.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

type session struct {
	models.AuthSession
	userID int64
}

type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq int64

	users    map[int64]*User
	byName   map[string]int64
	sessions map[string]*session

	posts   map[int64]*post
	likes   map[int64]*models.Like
	reposts map[int64]*models.Repost
	follows map[int64]*models.Follow
	media   map[int64]*Media
}

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]*User),
		byName:   make(map[string]int64),
		sessions: make(map[string]*session),
		posts:    make(map[int64]*post),
		likes:    make(map[int64]*models.Like),
		reposts:  make(map[int64]*models.Repost),
		follows:  make(map[int64]*models.Follow),
		media:    make(map[int64]*Media),
	}
}

// nextID must be called with mu held. Ids are shared by every resource kind.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) CreateUser(ctx context.Context, username string, passwordHash []byte) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u := &User{ID: s.nextID(), Username: username, PasswordHash: passwordHash, CreatedAt: s.now()}
	s.users[u.ID] = u
	s.byName[username] = u.ID
	return u, nil
}

func (s *Store) UserByName(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s.users[id], nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (s *Store) username(id int64) string {
	if u, ok := s.users[id]; ok {
		return u.Username
	}
	return ""
}

// CreateSession opens a login session for userID and returns its id.
func (s *Store) CreateSession(ctx context.Context, userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := uuid.NewString()
	s.sessions[id] = &session{
		AuthSession: models.AuthSession{SessionID: id, CreatedAt: now, LastAccessedAt: now},
		userID:      userID,
	}
	return id
}

// TouchSession checks that sessionID is open for userID and records the
// access.
func (s *Store) TouchSession(ctx context.Context, sessionID string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.userID != userID {
		return common.ErrUnauthorized
	}
	sess.LastAccessedAt = s.now()
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sessions lists the open sessions of userID, oldest first.
func (s *Store) Sessions(ctx context.Context, userID int64) []models.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AuthSession
	for _, sess := range s.sessions {
		if sess.userID == userID {
			out = append(out, sess.AuthSession)
		}
	}
	sortBy(out, func(a, b models.AuthSession) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return out
}
