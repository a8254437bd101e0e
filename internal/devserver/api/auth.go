package api

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/devserver/auth"
	"github.com/dmitrijs2005/chirp/internal/devserver/store"
	"github.com/gin-gonic/gin"
)

func userView(u *store.User) models.User {
	return models.User{ID: u.ID, Username: u.Username}
}

// login accepts form credentials and opens a session.
func (s *Server) login(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.PostForm("username")
	password := c.PostForm("password")

	u, err := s.store.UserByName(ctx, username)
	if err == nil {
		err = auth.CheckPassword(u.PasswordHash, password)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrUnauthorized) {
			abort(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		s.fail(c, err)
		return
	}

	sessionID := s.store.CreateSession(ctx, u.ID)
	token, err := auth.GenerateToken(u.ID, sessionID, s.secret, s.sessionTTL)
	if err != nil {
		s.store.DeleteSession(ctx, sessionID)
		s.fail(c, err)
		return
	}
	s.setSessionCookie(c, token)
	s.setCSRFCookie(c, auth.NewCSRFToken())

	s.logger.Info(ctx, "user logged in", "user_id", u.ID)
	c.JSON(http.StatusOK, userView(u))
}

func (s *Server) logout(c *gin.Context) {
	s.store.DeleteSession(c.Request.Context(), c.GetString(ctxSessionID))
	s.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) sessions(c *gin.Context) {
	c.JSON(http.StatusOK, models.AuthSessionsResponse{
		Sessions: s.store.Sessions(c.Request.Context(), currentUser(c)),
	})
}

func (s *Server) signup(c *gin.Context) {
	var req models.UserSignupRequest
	if !bind(c, &req) {
		return
	}
	if req.Username == "" || len(req.Password) < 4 {
		abort(c, http.StatusBadRequest, "username and a password of at least 4 characters are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	u, err := s.store.CreateUser(c.Request.Context(), req.Username, hash)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, userView(u))
}

func (s *Server) me(c *gin.Context) {
	u, err := s.store.UserByID(c.Request.Context(), currentUser(c))
	if err != nil {
		// The account vanished under a live session.
		abort(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (s *Server) userByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	u, err := s.store.UserByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

func (s *Server) userPosts(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.UserPosts(c.Request.Context(), currentUser(c), id))
}

func (s *Server) userReplies(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.UserReplies(c.Request.Context(), currentUser(c), id))
}

func (s *Server) userFollowCounts(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.FollowCounts(c.Request.Context(), id))
}
