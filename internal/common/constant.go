// Package common contains shared constants and sentinel errors used across
// the chirp client and the reference API server.
package common

// API paths shared by the client and the reference server.
const (
	APIPrefix = "/api/v1"

	// SessionEndpoint is the "current session identity" endpoint. A 401 here
	// is the only response that sends the user back to the login screen.
	SessionEndpoint = APIPrefix + "/users/me"
)

// Screens the client may navigate to.
const (
	LoginPath  = "/login"
	SignupPath = "/signup"
)

// Cookie and header names of the session and anti-forgery protocol.
const (
	SessionCookieName = "SESSION"
	CSRFCookieName    = "XSRF-TOKEN"
	CSRFHeaderName    = "X-XSRF-TOKEN"
)

// ChunkSize is the fixed byte size of one multi-part upload chunk. Client
// and server must agree on it, otherwise reassembled objects are corrupt.
const ChunkSize int64 = 8 << 20

// MaxAttachments is the default upper bound of attachments per post.
const MaxAttachments = 4
