// Package models defines the resources exchanged with the chirp API.
package models

import "time"

// Post is a timeline entry as returned by the API. The *ByMe fields describe
// the relationship of the current session user to the post.
type Post struct {
	ID             int64     `json:"id"`
	Content        string    `json:"content"`
	UserID         int64     `json:"userId"`
	Username       string    `json:"username"`
	RepostCount    int       `json:"repostCount"`
	LikeCount      int       `json:"likeCount"`
	ReplyCount     int       `json:"replyCount"`
	ViewCount      int       `json:"viewCount"`
	MediaIDs       []int64   `json:"mediaIds"`
	ParentID       *int64    `json:"parentId"`
	QuoteID        *int64    `json:"quoteId"`
	RepostID       *int64    `json:"repostId"`
	CreatedAt      time.Time `json:"createdAt"`
	ModifiedAt     time.Time `json:"modifiedAt"`
	IsLikedByMe    bool      `json:"isLikedByMe"`
	LikeIDByMe     *int64    `json:"likeIdByMe"`
	IsRepostedByMe bool      `json:"isRepostedByMe"`
	RepostIDByMe   *int64    `json:"repostIdByMe"`
}

type PostCreateRequest struct {
	Content  string  `json:"content"`
	MediaIDs []int64 `json:"mediaIds"`
}

type PostUpdateRequest struct {
	Content string `json:"content"`
}
