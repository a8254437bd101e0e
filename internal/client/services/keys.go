package services

import "github.com/dmitrijs2005/chirp/internal/client/cache"

// Query identities. Each key holds its own copy of the posts it embeds.
var (
	KeyPosts          = cache.K("posts")
	KeyTimeline       = cache.K("timeline")
	KeyProfilePosts   = cache.K("profile", "posts")
	KeyProfileReplies = cache.K("profile", "replies")
	KeyProfileLikes   = cache.K("profile", "likes")
	KeyFollowers      = cache.K("follows", "followers")
	KeyFollowees      = cache.K("follows", "followees")
	KeyFollowCounts   = cache.K("follow-counts")
	KeyLikes          = cache.K("likes")
	KeyReposts        = cache.K("reposts")
	KeyQuotes         = cache.K("quotes")
	KeyMe             = cache.K("me")
)

func PostKey(id int64) cache.Key { return cache.K("posts", id) }

func UserKey(id int64) cache.Key { return cache.K("users", id) }

func UserPostsKey(id int64) cache.Key { return cache.K("users", id, "posts") }

func UserRepliesKey(id int64) cache.Key { return cache.K("users", id, "replies") }

func UserFollowCountsKey(id int64) cache.Key { return cache.K("users", id, "follow-counts") }

func RepliesKey(postID int64) cache.Key { return cache.K("replies", postID) }

func FollowingKey(userID int64) cache.Key { return cache.K("follows", "check", userID) }

func MediaURLKey(id int64) cache.Key { return cache.K("media", id, "url") }

// feedKeys are the keys every post counter mutation rewrites optimistically.
// The posts prefix also covers the single-post keys.
func feedKeys() []cache.Key {
	return []cache.Key{KeyPosts, KeyTimeline}
}
