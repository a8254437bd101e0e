package api

import (
	"net/http"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/gin-gonic/gin"
)

func (s *Server) listLikes(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Likes(c.Request.Context(), currentUser(c)))
}

func (s *Server) createLike(c *gin.Context) {
	var req models.LikeCreateRequest
	if !bind(c, &req) {
		return
	}
	l, err := s.store.Like(c.Request.Context(), currentUser(c), req.PostID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (s *Server) getLike(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	l, err := s.store.LikeByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) deleteLike(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.Unlike(c.Request.Context(), currentUser(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listReposts(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Reposts(c.Request.Context(), currentUser(c)))
}

func (s *Server) createRepost(c *gin.Context) {
	var req models.RepostCreateRequest
	if !bind(c, &req) {
		return
	}
	r, err := s.store.Repost(c.Request.Context(), currentUser(c), req.PostID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) getRepost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := s.store.RepostByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) deleteRepost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.Unrepost(c.Request.Context(), currentUser(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) follow(c *gin.Context) {
	var req models.FollowRequest
	if !bind(c, &req) {
		return
	}
	f, err := s.store.Follow(c.Request.Context(), currentUser(c), req.FolloweeID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) unfollow(c *gin.Context) {
	var req models.FollowRequest
	if !bind(c, &req) {
		return
	}
	if err := s.store.Unfollow(c.Request.Context(), currentUser(c), req.FolloweeID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) followers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Followers(c.Request.Context(), currentUser(c)))
}

func (s *Server) followees(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Followees(c.Request.Context(), currentUser(c)))
}

func (s *Server) followCounts(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.FollowCounts(c.Request.Context(), currentUser(c)))
}

func (s *Server) isFollowing(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.IsFollowing(c.Request.Context(), currentUser(c), id))
}
