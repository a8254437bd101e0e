package api

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/gin-gonic/gin"
)

const defaultTimelineLimit = 50

func (s *Server) listPosts(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Posts(c.Request.Context(), currentUser(c)))
}

func (s *Server) createPost(c *gin.Context) {
	var req models.PostCreateRequest
	if !bind(c, &req) {
		return
	}
	if req.Content == "" && len(req.MediaIDs) == 0 {
		abort(c, http.StatusBadRequest, "a post needs content or media")
		return
	}
	if len(req.MediaIDs) > common.MaxAttachments {
		abort(c, http.StatusBadRequest, common.ErrTooManyAttachments.Error())
		return
	}
	p, err := s.store.CreatePost(c.Request.Context(), currentUser(c), req.Content, req.MediaIDs)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := s.store.Post(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updatePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.PostUpdateRequest
	if !bind(c, &req) {
		return
	}
	p, err := s.store.UpdatePost(c.Request.Context(), currentUser(c), id, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// deletePost serves posts, replies and quotes: all three are posts.
func (s *Server) deletePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeletePost(c.Request.Context(), currentUser(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listReplies(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.Replies(c.Request.Context(), id))
}

func (s *Server) createReply(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.ReplyRequest
	if !bind(c, &req) {
		return
	}
	r, err := s.store.CreateReply(c.Request.Context(), currentUser(c), id, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) updateReply(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.ReplyRequest
	if !bind(c, &req) {
		return
	}
	p, err := s.store.UpdatePost(c.Request.Context(), currentUser(c), id, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	if p.ParentID == nil {
		abort(c, http.StatusNotFound, "Not found")
		return
	}
	c.JSON(http.StatusOK, models.Reply{
		ID:         p.ID,
		Content:    p.Content,
		UserID:     p.UserID,
		Username:   p.Username,
		ParentID:   *p.ParentID,
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
	})
}

func (s *Server) createQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.QuoteCreateRequest
	if !bind(c, &req) {
		return
	}
	q, err := s.store.CreateQuote(c.Request.Context(), currentUser(c), id, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (s *Server) listQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Quotes(c.Request.Context(), currentUser(c)))
}

func (s *Server) getQuote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := s.store.Post(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if p.QuoteID == nil {
		abort(c, http.StatusNotFound, "Not found")
		return
	}
	c.JSON(http.StatusOK, models.Quote{
		ID:         p.ID,
		Content:    p.Content,
		UserID:     p.UserID,
		Username:   p.Username,
		QuoteID:    *p.QuoteID,
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
	})
}

func (s *Server) timeline(c *gin.Context) {
	limit := defaultTimelineLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			abort(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, s.store.Timeline(c.Request.Context(), currentUser(c), limit))
}

func (s *Server) myPosts(c *gin.Context) {
	uid := currentUser(c)
	c.JSON(http.StatusOK, s.store.UserPosts(c.Request.Context(), uid, uid))
}

func (s *Server) myReplies(c *gin.Context) {
	uid := currentUser(c)
	c.JSON(http.StatusOK, s.store.UserReplies(c.Request.Context(), uid, uid))
}

func (s *Server) myLikes(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.LikedPosts(c.Request.Context(), currentUser(c)))
}
