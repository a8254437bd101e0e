package models

import "time"

type User struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	ProfileMediaID  *int64  `json:"profileMediaId"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

type UserSignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthSession describes one active login of the current user.
type AuthSession struct {
	SessionID      string    `json:"sessionId"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

type AuthSessionsResponse struct {
	Sessions []AuthSession `json:"sessions"`
}
