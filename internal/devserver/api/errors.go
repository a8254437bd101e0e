package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Status: status, Message: msg})
}

// fail maps a store or storage error to its HTTP status.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		abort(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrForbidden), errors.Is(err, common.ErrInvalidCSRF):
		abort(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, common.ErrorNotFound):
		abort(c, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		abort(c, http.StatusConflict, "Already exists")
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		abort(c, http.StatusInternalServerError, "Internal server error")
	}
}

// idParam parses the :name path parameter, answering 400 on failure.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// bind decodes the JSON body into dst, answering 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
