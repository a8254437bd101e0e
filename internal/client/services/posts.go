package services

import (
	"context"

	"github.com/dmitrijs2005/chirp/internal/client/cache"
	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

const (
	noticeLikeFailed       = "Failed to like post"
	noticeUnlikeFailed     = "Failed to unlike post"
	noticeReposted         = "Reposted"
	noticeRepostFailed     = "Failed to repost"
	noticeUnreposted       = "Repost removed"
	noticeUnrepostFailed   = "Failed to remove repost"
	noticePostCreated      = "Post created"
	noticePostCreateFailed = "Failed to create post"
	noticePostUpdated      = "Post updated"
	noticePostUpdateFailed = "Failed to update post"
	noticePostDeleted      = "Post deleted"
	noticePostDeleteFailed = "Failed to delete post"
	noticeReplyCreated     = "Reply posted"
	noticeReplyFailed      = "Failed to post reply"
	noticeReplyDeleted     = "Reply deleted"
	noticeReplyDeleteFail  = "Failed to delete reply"
	noticeQuoteCreated     = "Quote posted"
	noticeQuoteFailed      = "Failed to post quote"
	noticeQuoteDeleted     = "Quote deleted"
	noticeQuoteDeleteFail  = "Failed to delete quote"
)

// PostService reads and writes posts and everything attached to them.
type PostService struct {
	api    *client.API
	cache  *cache.QueryCache
	limit  int
	logger logging.Logger
}

func NewPostService(d Deps) *PostService {
	d = d.withDefaults()
	return &PostService{
		api:    d.API,
		cache:  d.Cache,
		limit:  d.TimelineLimit,
		logger: d.Logger.With("service", "posts"),
	}
}

func (s *PostService) Timeline(ctx context.Context) ([]models.Post, error) {
	return cache.Query(ctx, s.cache, KeyTimeline, func(ctx context.Context) ([]models.Post, error) {
		return s.api.Timeline.Get(ctx, s.limit)
	})
}

func (s *PostService) Posts(ctx context.Context) ([]models.Post, error) {
	return cache.Query(ctx, s.cache, KeyPosts, s.api.Posts.List)
}

func (s *PostService) Post(ctx context.Context, id int64) (models.Post, error) {
	return cache.Query(ctx, s.cache, PostKey(id), func(ctx context.Context) (models.Post, error) {
		p, err := s.api.Posts.ByID(ctx, id)
		if err != nil {
			return models.Post{}, err
		}
		return *p, nil
	})
}

func (s *PostService) MyPosts(ctx context.Context) ([]models.Post, error) {
	return cache.Query(ctx, s.cache, KeyProfilePosts, s.api.Profile.MyPosts)
}

func (s *PostService) MyReplies(ctx context.Context) ([]models.Post, error) {
	return cache.Query(ctx, s.cache, KeyProfileReplies, s.api.Profile.MyReplies)
}

func (s *PostService) MyLikes(ctx context.Context) ([]models.Post, error) {
	return cache.Query(ctx, s.cache, KeyProfileLikes, s.api.Profile.MyLikes)
}

func (s *PostService) Likes(ctx context.Context) ([]models.Like, error) {
	return cache.Query(ctx, s.cache, KeyLikes, s.api.Likes.List)
}

func (s *PostService) Reposts(ctx context.Context) ([]models.Repost, error) {
	return cache.Query(ctx, s.cache, KeyReposts, s.api.Reposts.List)
}

func (s *PostService) Replies(ctx context.Context, postID int64) ([]models.Reply, error) {
	return cache.Query(ctx, s.cache, RepliesKey(postID), func(ctx context.Context) ([]models.Reply, error) {
		return s.api.Replies.ByPost(ctx, postID)
	})
}

func (s *PostService) Quotes(ctx context.Context) ([]models.Quote, error) {
	return cache.Query(ctx, s.cache, KeyQuotes, s.api.Quotes.List)
}

// cachedPost returns the post as currently shown by any cached feed.
func (s *PostService) cachedPost(id int64) (models.Post, bool) {
	var values []any
	for _, k := range s.cache.Keys(feedKeys()...) {
		if v, ok := s.cache.Get(k); ok {
			values = append(values, v)
		}
	}
	return findPost(values, id)
}

// LikeIDOf returns the id of the current user's like of the post, if a
// cached copy knows it.
func (s *PostService) LikeIDOf(postID int64) (int64, bool) {
	p, ok := s.cachedPost(postID)
	if !ok || p.LikeIDByMe == nil {
		return 0, false
	}
	return *p.LikeIDByMe, true
}

// RepostIDOf is LikeIDOf for reposts.
func (s *PostService) RepostIDOf(postID int64) (int64, bool) {
	p, ok := s.cachedPost(postID)
	if !ok || p.RepostIDByMe == nil {
		return 0, false
	}
	return *p.RepostIDByMe, true
}

// Like likes the post. Every cached copy shows the like immediately and
// learns the like id once the server confirms.
func (s *PostService) Like(ctx context.Context, postID int64) (*models.Like, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*models.Like]{
		Name: "like",
		Keys: feedKeys(),
		Apply: func(_ cache.Key, old any) any {
			return mapPost(old, postID, liked)
		},
		Run: func(ctx context.Context) (*models.Like, error) {
			return s.api.Likes.Create(ctx, postID)
		},
		Reconcile: func(_ cache.Key, cur any, like *models.Like) any {
			if like == nil {
				return cur
			}
			return mapPost(cur, postID, withLikeID(like.ID))
		},
		Invalidate:    []cache.Key{KeyProfileLikes},
		FailureNotice: noticeLikeFailed,
	})
}

func (s *PostService) Unlike(ctx context.Context, postID, likeID int64) error {
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[struct{}]{
		Name: "unlike",
		Keys: feedKeys(),
		Apply: func(_ cache.Key, old any) any {
			return mapPost(old, postID, unliked)
		},
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Likes.Delete(ctx, likeID)
		},
		Invalidate:    []cache.Key{KeyProfileLikes},
		FailureNotice: noticeUnlikeFailed,
	})
	return err
}

func (s *PostService) Repost(ctx context.Context, postID int64) (*models.Repost, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*models.Repost]{
		Name: "repost",
		Keys: feedKeys(),
		Apply: func(_ cache.Key, old any) any {
			return mapPost(old, postID, reposted)
		},
		Run: func(ctx context.Context) (*models.Repost, error) {
			return s.api.Reposts.Create(ctx, postID)
		},
		Reconcile: func(_ cache.Key, cur any, r *models.Repost) any {
			if r == nil {
				return cur
			}
			return mapPost(cur, postID, withRepostID(r.ID))
		},
		SuccessNotice: noticeReposted,
		FailureNotice: noticeRepostFailed,
	})
}

func (s *PostService) Unrepost(ctx context.Context, postID, repostID int64) error {
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[struct{}]{
		Name: "unrepost",
		Keys: feedKeys(),
		Apply: func(_ cache.Key, old any) any {
			return mapPost(old, postID, unreposted)
		},
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Reposts.Delete(ctx, repostID)
		},
		SuccessNotice: noticeUnreposted,
		FailureNotice: noticeUnrepostFailed,
	})
	return err
}

// DeletePost removes the post from every cached list before the server
// confirms the deletion.
func (s *PostService) DeletePost(ctx context.Context, postID int64) error {
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[struct{}]{
		Name: "delete post",
		Keys: feedKeys(),
		Apply: func(_ cache.Key, old any) any {
			return removePost(old, postID)
		},
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Posts.Delete(ctx, postID)
		},
		Invalidate:    []cache.Key{KeyProfilePosts},
		SuccessNotice: noticePostDeleted,
		FailureNotice: noticePostDeleteFailed,
	})
	return err
}

func (s *PostService) CreatePost(ctx context.Context, content string, mediaIDs []int64) (*models.Post, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*models.Post]{
		Name: "create post",
		Run: func(ctx context.Context) (*models.Post, error) {
			return s.api.Posts.Create(ctx, models.PostCreateRequest{Content: content, MediaIDs: mediaIDs})
		},
		Invalidate:    []cache.Key{KeyPosts, KeyTimeline, KeyProfilePosts},
		SuccessNotice: noticePostCreated,
		FailureNotice: noticePostCreateFailed,
	})
}

// UpdatePost stores the server's copy of the edited post under its own key
// and refreshes the lists embedding it.
func (s *PostService) UpdatePost(ctx context.Context, id int64, content string) (*models.Post, error) {
	p, err := cache.Mutate(ctx, s.cache, cache.Mutation[*models.Post]{
		Name: "update post",
		Run: func(ctx context.Context) (*models.Post, error) {
			return s.api.Posts.Update(ctx, id, models.PostUpdateRequest{Content: content})
		},
		Invalidate:    []cache.Key{KeyPosts, KeyTimeline},
		SuccessNotice: noticePostUpdated,
		FailureNotice: noticePostUpdateFailed,
	})
	if err == nil && p != nil {
		s.cache.Set(PostKey(p.ID), *p)
	}
	return p, err
}

func (s *PostService) CreateReply(ctx context.Context, postID int64, content string) (*models.Reply, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*models.Reply]{
		Name: "create reply",
		Run: func(ctx context.Context) (*models.Reply, error) {
			return s.api.Replies.Create(ctx, postID, content)
		},
		Invalidate:    []cache.Key{RepliesKey(postID), KeyPosts, KeyTimeline, KeyProfileReplies},
		SuccessNotice: noticeReplyCreated,
		FailureNotice: noticeReplyFailed,
	})
}

func (s *PostService) DeleteReply(ctx context.Context, postID, replyID int64) error {
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[struct{}]{
		Name: "delete reply",
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Replies.Delete(ctx, replyID)
		},
		Invalidate:    []cache.Key{RepliesKey(postID), KeyPosts, KeyTimeline, KeyProfileReplies},
		SuccessNotice: noticeReplyDeleted,
		FailureNotice: noticeReplyDeleteFail,
	})
	return err
}

func (s *PostService) CreateQuote(ctx context.Context, postID int64, content string) (*models.Quote, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*models.Quote]{
		Name: "create quote",
		Run: func(ctx context.Context) (*models.Quote, error) {
			return s.api.Quotes.Create(ctx, postID, content)
		},
		Invalidate:    []cache.Key{KeyPosts, KeyTimeline, KeyQuotes},
		SuccessNotice: noticeQuoteCreated,
		FailureNotice: noticeQuoteFailed,
	})
}

func (s *PostService) DeleteQuote(ctx context.Context, quoteID int64) error {
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[struct{}]{
		Name: "delete quote",
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Quotes.Delete(ctx, quoteID)
		},
		Invalidate:    []cache.Key{KeyPosts, KeyTimeline, KeyQuotes},
		SuccessNotice: noticeQuoteDeleted,
		FailureNotice: noticeQuoteDeleteFail,
	})
	return err
}
