package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
)

func postPath(id int64) string {
	return fmt.Sprintf("%s/posts/%d", common.APIPrefix, id)
}

type PostService struct{ c *Client }

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return valueOf(Get[[]models.Post](ctx, s.c, common.APIPrefix+"/posts"))
}

func (s *PostService) ByID(ctx context.Context, id int64) (*models.Post, error) {
	return required(Get[models.Post](ctx, s.c, postPath(id)))
}

func (s *PostService) Create(ctx context.Context, req models.PostCreateRequest) (*models.Post, error) {
	if req.MediaIDs == nil {
		req.MediaIDs = []int64{}
	}
	return Post[models.Post](ctx, s.c, common.APIPrefix+"/posts", req)
}

func (s *PostService) Update(ctx context.Context, id int64, req models.PostUpdateRequest) (*models.Post, error) {
	return Put[models.Post](ctx, s.c, postPath(id), req)
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	return Delete(ctx, s.c, postPath(id), nil)
}

type LikeService struct{ c *Client }

func (s *LikeService) List(ctx context.Context) ([]models.Like, error) {
	return valueOf(Get[[]models.Like](ctx, s.c, common.APIPrefix+"/likes"))
}

func (s *LikeService) ByID(ctx context.Context, id int64) (*models.Like, error) {
	return required(Get[models.Like](ctx, s.c, fmt.Sprintf("%s/likes/%d", common.APIPrefix, id)))
}

func (s *LikeService) Create(ctx context.Context, postID int64) (*models.Like, error) {
	return Post[models.Like](ctx, s.c, common.APIPrefix+"/likes", models.LikeCreateRequest{PostID: postID})
}

func (s *LikeService) Delete(ctx context.Context, likeID int64) error {
	return Delete(ctx, s.c, fmt.Sprintf("%s/likes/%d", common.APIPrefix, likeID), nil)
}

type RepostService struct{ c *Client }

func (s *RepostService) List(ctx context.Context) ([]models.Repost, error) {
	return valueOf(Get[[]models.Repost](ctx, s.c, common.APIPrefix+"/reposts"))
}

func (s *RepostService) ByID(ctx context.Context, id int64) (*models.Repost, error) {
	return required(Get[models.Repost](ctx, s.c, fmt.Sprintf("%s/reposts/%d", common.APIPrefix, id)))
}

func (s *RepostService) Create(ctx context.Context, postID int64) (*models.Repost, error) {
	return Post[models.Repost](ctx, s.c, common.APIPrefix+"/reposts", models.RepostCreateRequest{PostID: postID})
}

func (s *RepostService) Delete(ctx context.Context, repostID int64) error {
	return Delete(ctx, s.c, fmt.Sprintf("%s/reposts/%d", common.APIPrefix, repostID), nil)
}

type ReplyService struct{ c *Client }

func (s *ReplyService) Create(ctx context.Context, postID int64, content string) (*models.Reply, error) {
	return Post[models.Reply](ctx, s.c, postPath(postID)+"/replies", models.ReplyRequest{Content: content})
}

func (s *ReplyService) ByPost(ctx context.Context, postID int64) ([]models.Reply, error) {
	return valueOf(Get[[]models.Reply](ctx, s.c, postPath(postID)+"/replies"))
}

func (s *ReplyService) Update(ctx context.Context, replyID int64, content string) (*models.Reply, error) {
	return Put[models.Reply](ctx, s.c, fmt.Sprintf("%s/replies/%d", common.APIPrefix, replyID), models.ReplyRequest{Content: content})
}

func (s *ReplyService) Delete(ctx context.Context, replyID int64) error {
	return Delete(ctx, s.c, fmt.Sprintf("%s/replies/%d", common.APIPrefix, replyID), nil)
}

type QuoteService struct{ c *Client }

func (s *QuoteService) Create(ctx context.Context, postID int64, content string) (*models.Quote, error) {
	return Post[models.Quote](ctx, s.c, postPath(postID)+"/quotes", models.QuoteCreateRequest{Content: content})
}

func (s *QuoteService) List(ctx context.Context) ([]models.Quote, error) {
	return valueOf(Get[[]models.Quote](ctx, s.c, common.APIPrefix+"/quotes"))
}

func (s *QuoteService) ByID(ctx context.Context, id int64) (*models.Quote, error) {
	return required(Get[models.Quote](ctx, s.c, fmt.Sprintf("%s/quotes/%d", common.APIPrefix, id)))
}

func (s *QuoteService) Delete(ctx context.Context, id int64) error {
	return Delete(ctx, s.c, fmt.Sprintf("%s/quotes/%d", common.APIPrefix, id), nil)
}

type FollowService struct{ c *Client }

func (s *FollowService) Follow(ctx context.Context, followeeID int64) (*models.Follow, error) {
	return Post[models.Follow](ctx, s.c, common.APIPrefix+"/follows", models.FollowRequest{FolloweeID: followeeID})
}

// Unfollow identifies the relationship by followee in the request body.
func (s *FollowService) Unfollow(ctx context.Context, followeeID int64) error {
	return Delete(ctx, s.c, common.APIPrefix+"/follows", models.FollowRequest{FolloweeID: followeeID})
}

func (s *FollowService) Followers(ctx context.Context) ([]models.Follow, error) {
	return valueOf(Get[[]models.Follow](ctx, s.c, common.APIPrefix+"/follows/followers"))
}

func (s *FollowService) Followees(ctx context.Context) ([]models.Follow, error) {
	return valueOf(Get[[]models.Follow](ctx, s.c, common.APIPrefix+"/follows/followees"))
}

func (s *FollowService) Counts(ctx context.Context) (models.FollowCounts, error) {
	return valueOf(Get[models.FollowCounts](ctx, s.c, common.APIPrefix+"/follow_counts"))
}

func (s *FollowService) IsFollowing(ctx context.Context, followeeID int64) (bool, error) {
	return valueOf(Get[bool](ctx, s.c, fmt.Sprintf("%s/follows/check/%d", common.APIPrefix, followeeID)))
}
