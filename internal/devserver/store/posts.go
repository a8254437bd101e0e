package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
)

type post struct {
	id         int64
	content    string
	userID     int64
	mediaIDs   []int64
	parentID   *int64
	quoteID    *int64
	viewCount  int
	createdAt  time.Time
	modifiedAt time.Time
}

func sortBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func ptr(v int64) *int64 { return &v }

// view renders p for viewer. Must be called with mu held.
func (s *Store) view(p *post, viewer int64) models.Post {
	out := models.Post{
		ID:         p.id,
		Content:    p.content,
		UserID:     p.userID,
		Username:   s.username(p.userID),
		MediaIDs:   slices.Clone(p.mediaIDs),
		ParentID:   p.parentID,
		QuoteID:    p.quoteID,
		ViewCount:  p.viewCount,
		CreatedAt:  p.createdAt,
		ModifiedAt: p.modifiedAt,
	}
	if out.MediaIDs == nil {
		out.MediaIDs = []int64{}
	}
	for _, l := range s.likes {
		if l.PostID != p.id {
			continue
		}
		out.LikeCount++
		if l.UserID == viewer {
			out.IsLikedByMe = true
			out.LikeIDByMe = ptr(l.ID)
		}
	}
	for _, r := range s.reposts {
		if r.RepostID != p.id {
			continue
		}
		out.RepostCount++
		if r.UserID == viewer {
			out.IsRepostedByMe = true
			out.RepostIDByMe = ptr(r.ID)
		}
	}
	for _, c := range s.posts {
		if c.parentID != nil && *c.parentID == p.id {
			out.ReplyCount++
		}
	}
	return out
}

// list renders every post accepted by keep, newest first. Must be called
// with mu held.
func (s *Store) list(viewer int64, keep func(p *post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, s.view(p, viewer))
		}
	}
	sortBy(out, func(a, b models.Post) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}

func (s *Store) insertPost(userID int64, content string, mediaIDs []int64, parentID, quoteID *int64) *post {
	now := s.now()
	p := &post{
		id:         s.nextID(),
		content:    content,
		userID:     userID,
		mediaIDs:   slices.Clone(mediaIDs),
		parentID:   parentID,
		quoteID:    quoteID,
		createdAt:  now,
		modifiedAt: now,
	}
	s.posts[p.id] = p
	return p
}

// CreatePost publishes a top-level post. Every media id must belong to the
// author and be confirmed.
func (s *Store) CreatePost(ctx context.Context, userID int64, content string, mediaIDs []int64) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range mediaIDs {
		m, ok := s.media[id]
		if !ok || m.UserID != userID {
			return models.Post{}, fmt.Errorf("%w: unknown media %d", common.ErrorValidation, id)
		}
		if m.Status != models.MediaStatusCompleted {
			return models.Post{}, fmt.Errorf("%w: media %d is not uploaded", common.ErrorValidation, id)
		}
	}
	p := s.insertPost(userID, content, mediaIDs, nil, nil)
	return s.view(p, userID), nil
}

// owned returns the post id when it exists and belongs to userID. Must be
// called with mu held.
func (s *Store) owned(userID, id int64) (*post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.userID != userID {
		return nil, common.ErrForbidden
	}
	return p, nil
}

func (s *Store) UpdatePost(ctx context.Context, userID, id int64, content string) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.owned(userID, id)
	if err != nil {
		return models.Post{}, err
	}
	p.content = content
	p.modifiedAt = s.now()
	return s.view(p, userID), nil
}

// DeletePost removes the post together with its likes and reposts.
func (s *Store) DeletePost(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	delete(s.posts, id)
	for lid, l := range s.likes {
		if l.PostID == id {
			delete(s.likes, lid)
		}
	}
	for rid, r := range s.reposts {
		if r.RepostID == id {
			delete(s.reposts, rid)
		}
	}
	return nil
}

func (s *Store) Post(ctx context.Context, viewer, id int64) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, common.ErrorNotFound
	}
	p.viewCount++
	return s.view(p, viewer), nil
}

// Posts lists every top-level post.
func (s *Store) Posts(ctx context.Context, viewer int64) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(viewer, func(p *post) bool { return p.parentID == nil })
}

// Timeline lists top-level posts of viewer and of the users viewer follows,
// plus posts viewer reposted, newest first, at most limit entries.
func (s *Store) Timeline(ctx context.Context, viewer int64, limit int) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	authors := map[int64]bool{viewer: true}
	for _, f := range s.follows {
		if f.FollowerID == viewer {
			authors[f.FolloweeID] = true
		}
	}
	reposted := map[int64]bool{}
	for _, r := range s.reposts {
		if authors[r.UserID] {
			reposted[r.RepostID] = true
		}
	}
	out := s.list(viewer, func(p *post) bool {
		return p.parentID == nil && (authors[p.userID] || reposted[p.id])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UserPosts lists the top-level posts written by author.
func (s *Store) UserPosts(ctx context.Context, viewer, author int64) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(viewer, func(p *post) bool { return p.userID == author && p.parentID == nil })
}

// UserReplies lists the replies written by author.
func (s *Store) UserReplies(ctx context.Context, viewer, author int64) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(viewer, func(p *post) bool { return p.userID == author && p.parentID != nil })
}

// LikedPosts lists the posts viewer liked.
func (s *Store) LikedPosts(ctx context.Context, viewer int64) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	liked := map[int64]bool{}
	for _, l := range s.likes {
		if l.UserID == viewer {
			liked[l.PostID] = true
		}
	}
	return s.list(viewer, func(p *post) bool { return liked[p.id] })
}

func (s *Store) Like(ctx context.Context, userID, postID int64) (models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return models.Like{}, common.ErrorNotFound
	}
	for _, l := range s.likes {
		if l.PostID == postID && l.UserID == userID {
			return models.Like{}, common.ErrorAlreadyExists
		}
	}
	l := &models.Like{
		ID:          s.nextID(),
		UserID:      userID,
		Username:    s.username(userID),
		PostID:      postID,
		PostContent: p.content,
		CreatedAt:   s.now(),
	}
	s.likes[l.ID] = l
	return *l, nil
}

func (s *Store) Unlike(ctx context.Context, userID, likeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.likes[likeID]
	if !ok {
		return common.ErrorNotFound
	}
	if l.UserID != userID {
		return common.ErrForbidden
	}
	delete(s.likes, likeID)
	return nil
}

func (s *Store) LikeByID(ctx context.Context, likeID int64) (models.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.likes[likeID]
	if !ok {
		return models.Like{}, common.ErrorNotFound
	}
	return *l, nil
}

// Likes lists the likes given by userID, newest first.
func (s *Store) Likes(ctx context.Context, userID int64) []models.Like {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Like{}
	for _, l := range s.likes {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sortBy(out, func(a, b models.Like) bool { return a.ID > b.ID })
	return out
}

func (s *Store) Repost(ctx context.Context, userID, postID int64) (models.Repost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return models.Repost{}, common.ErrorNotFound
	}
	for _, r := range s.reposts {
		if r.RepostID == postID && r.UserID == userID {
			return models.Repost{}, common.ErrorAlreadyExists
		}
	}
	r := &models.Repost{
		ID:        s.nextID(),
		UserID:    userID,
		Username:  s.username(userID),
		RepostID:  postID,
		CreatedAt: s.now(),
	}
	s.reposts[r.ID] = r
	return *r, nil
}

func (s *Store) Unrepost(ctx context.Context, userID, repostID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reposts[repostID]
	if !ok {
		return common.ErrorNotFound
	}
	if r.UserID != userID {
		return common.ErrForbidden
	}
	delete(s.reposts, repostID)
	return nil
}

func (s *Store) RepostByID(ctx context.Context, repostID int64) (models.Repost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reposts[repostID]
	if !ok {
		return models.Repost{}, common.ErrorNotFound
	}
	return *r, nil
}

// Reposts lists the reposts made by userID, newest first.
func (s *Store) Reposts(ctx context.Context, userID int64) []models.Repost {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Repost{}
	for _, r := range s.reposts {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sortBy(out, func(a, b models.Repost) bool { return a.ID > b.ID })
	return out
}

func (s *Store) reply(p *post) models.Reply {
	return models.Reply{
		ID:         p.id,
		Content:    p.content,
		UserID:     p.userID,
		Username:   s.username(p.userID),
		ParentID:   *p.parentID,
		CreatedAt:  p.createdAt,
		ModifiedAt: p.modifiedAt,
	}
}

func (s *Store) CreateReply(ctx context.Context, userID, parentID int64, content string) (models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[parentID]; !ok {
		return models.Reply{}, common.ErrorNotFound
	}
	p := s.insertPost(userID, content, nil, ptr(parentID), nil)
	return s.reply(p), nil
}

// Replies lists the replies to parentID, oldest first.
func (s *Store) Replies(ctx context.Context, parentID int64) []models.Reply {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Reply{}
	for _, p := range s.posts {
		if p.parentID != nil && *p.parentID == parentID {
			out = append(out, s.reply(p))
		}
	}
	sortBy(out, func(a, b models.Reply) bool { return a.ID < b.ID })
	return out
}

func (s *Store) quote(p *post) models.Quote {
	return models.Quote{
		ID:         p.id,
		Content:    p.content,
		UserID:     p.userID,
		Username:   s.username(p.userID),
		QuoteID:    *p.quoteID,
		CreatedAt:  p.createdAt,
		ModifiedAt: p.modifiedAt,
	}
}

// CreateQuote publishes a top-level post quoting quotedID.
func (s *Store) CreateQuote(ctx context.Context, userID, quotedID int64, content string) (models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[quotedID]; !ok {
		return models.Quote{}, common.ErrorNotFound
	}
	p := s.insertPost(userID, content, nil, nil, ptr(quotedID))
	return s.quote(p), nil
}

// Quotes lists the quotes written by userID, newest first.
func (s *Store) Quotes(ctx context.Context, userID int64) []models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Quote{}
	for _, p := range s.posts {
		if p.quoteID != nil && p.userID == userID {
			out = append(out, s.quote(p))
		}
	}
	sortBy(out, func(a, b models.Quote) bool { return a.ID > b.ID })
	return out
}
