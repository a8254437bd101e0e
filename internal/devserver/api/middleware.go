package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/devserver/auth"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "userID"
	ctxSessionID = "sessionID"
)

// requestLogger logs one line per request and feeds the request metrics.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		s.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// csrf implements the double-submit cookie check: every unsafe request other
// than login and signup must echo the XSRF-TOKEN cookie in X-XSRF-TOKEN.
// Responses to requests without the cookie receive a fresh one.
func (s *Server) csrf() gin.HandlerFunc {
	exempt := map[string]bool{
		common.APIPrefix + "/login":        true,
		common.APIPrefix + "/users/signup": true,
	}
	return func(c *gin.Context) {
		cookie, err := c.Cookie(common.CSRFCookieName)
		if err != nil || cookie == "" {
			s.setCSRFCookie(c, auth.NewCSRFToken())
		}

		if isSafeMethod(c.Request.Method) || exempt[c.FullPath()] {
			c.Next()
			return
		}
		header := c.GetHeader(common.CSRFHeaderName)
		if cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			abort(c, http.StatusForbidden, "Invalid CSRF token")
			return
		}
		c.Next()
	}
}

// authenticate resolves the SESSION cookie to a user and an open session.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(common.SessionCookieName)
		if err != nil || token == "" {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, sessionID, err := auth.ParseToken(token, s.secret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err := s.store.TouchSession(c.Request.Context(), sessionID, userID); err != nil {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxSessionID, sessionID)
		c.Next()
	}
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

// The CSRF cookie must stay readable by the client, so it is not HttpOnly.
func (s *Server) setCSRFCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.CSRFCookieName, token, 0, "/", "", s.secureCookies, false)
}

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, token, int(s.sessionTTL.Seconds()), "/", "", s.secureCookies, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetCookie(common.SessionCookieName, "", -1, "/", "", s.secureCookies, true)
}
