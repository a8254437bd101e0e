package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
)

type AuthService struct{ c *Client }

// Login posts the credentials as a form. The server answers by setting the
// session and CSRF cookies.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	_, err := s.c.PostForm(ctx, common.APIPrefix+"/login", form)
	return err
}

func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.c.Request(ctx, http.MethodPost, common.APIPrefix+"/logout", nil)
	return err
}

func (s *AuthService) Sessions(ctx context.Context) ([]models.AuthSession, error) {
	resp, err := Get[models.AuthSessionsResponse](ctx, s.c, common.APIPrefix+"/sessions")
	if err != nil || resp == nil {
		return nil, err
	}
	return resp.Sessions, nil
}

type UserService struct{ c *Client }

func (s *UserService) Signup(ctx context.Context, req models.UserSignupRequest) (*models.User, error) {
	return Post[models.User](ctx, s.c, common.APIPrefix+"/users/signup", req)
}

// Me returns the session user. A 401 here is what sends the user to the
// login screen.
func (s *UserService) Me(ctx context.Context) (*models.User, error) {
	return required(Get[models.User](ctx, s.c, common.SessionEndpoint))
}

func (s *UserService) ByID(ctx context.Context, id int64) (*models.User, error) {
	return required(Get[models.User](ctx, s.c, fmt.Sprintf("%s/users/%d", common.APIPrefix, id)))
}

func (s *UserService) Posts(ctx context.Context, id int64) ([]models.Post, error) {
	return valueOf(Get[[]models.Post](ctx, s.c, fmt.Sprintf("%s/users/%d/posts", common.APIPrefix, id)))
}

func (s *UserService) Replies(ctx context.Context, id int64) ([]models.Post, error) {
	return valueOf(Get[[]models.Post](ctx, s.c, fmt.Sprintf("%s/users/%d/replies", common.APIPrefix, id)))
}

func (s *UserService) FollowCounts(ctx context.Context, id int64) (models.FollowCounts, error) {
	return valueOf(Get[models.FollowCounts](ctx, s.c, fmt.Sprintf("%s/users/%d/follow-counts", common.APIPrefix, id)))
}

type ProfileService struct{ c *Client }

func (s *ProfileService) MyPosts(ctx context.Context) ([]models.Post, error) {
	return valueOf(Get[[]models.Post](ctx, s.c, common.APIPrefix+"/profile/posts"))
}

func (s *ProfileService) MyReplies(ctx context.Context) ([]models.Post, error) {
	return valueOf(Get[[]models.Post](ctx, s.c, common.APIPrefix+"/profile/replies"))
}

func (s *ProfileService) MyLikes(ctx context.Context) ([]models.Post, error) {
	return valueOf(Get[[]models.Post](ctx, s.c, common.APIPrefix+"/profile/likes"))
}

// DefaultTimelineLimit is the page size used when the caller passes 0.
const DefaultTimelineLimit = 50

type TimelineService struct{ c *Client }

func (s *TimelineService) Get(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = DefaultTimelineLimit
	}
	return valueOf(Get[[]models.Post](ctx, s.c, fmt.Sprintf("%s/timelines?limit=%d", common.APIPrefix, limit)))
}
