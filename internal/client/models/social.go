package models

import "time"

type Like struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"`
	PostID      int64     `json:"postId"`
	PostContent string    `json:"postContent"`
	CreatedAt   time.Time `json:"createdAt"`
}

type LikeCreateRequest struct {
	PostID int64 `json:"postId"`
}

// Repost links the reposting user to the original post (RepostID).
type Repost struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	RepostID  int64     `json:"repostId"`
	CreatedAt time.Time `json:"createdAt"`
}

type RepostCreateRequest struct {
	PostID int64 `json:"postId"`
}

type Reply struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	UserID     int64     `json:"userId"`
	Username   string    `json:"username"`
	ParentID   int64     `json:"parentId"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

type ReplyRequest struct {
	Content string `json:"content"`
}

type Quote struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	UserID     int64     `json:"userId"`
	Username   string    `json:"username"`
	QuoteID    int64     `json:"quoteId"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

type QuoteCreateRequest struct {
	Content string `json:"content"`
}

type Follow struct {
	ID               int64     `json:"id"`
	FollowerID       int64     `json:"followerId"`
	FollowerUsername string    `json:"followerUsername"`
	FolloweeID       int64     `json:"followeeId"`
	FolloweeUsername string    `json:"followeeUsername"`
	CreatedAt        time.Time `json:"createdAt"`
}

type FollowRequest struct {
	FolloweeID int64 `json:"followeeId"`
}

type FollowCounts struct {
	FollowersCount int `json:"followersCount"`
	FolloweesCount int `json:"followeesCount"`
}
