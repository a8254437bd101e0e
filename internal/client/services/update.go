package services

import "github.com/dmitrijs2005/chirp/internal/client/models"

// mapPost applies fn to the post with the given id inside a cached value.
// Lists are copied, never modified in place, so the previous value stays
// valid as a rollback snapshot.
func mapPost(old any, id int64, fn func(models.Post) models.Post) any {
	switch v := old.(type) {
	case []models.Post:
		out := make([]models.Post, len(v))
		for i, p := range v {
			if p.ID == id {
				p = fn(p)
			}
			out[i] = p
		}
		return out
	case models.Post:
		if v.ID == id {
			return fn(v)
		}
	}
	return old
}

// removePost drops the post from cached lists. Single-post values are left
// for the refetch to resolve.
func removePost(old any, id int64) any {
	v, ok := old.([]models.Post)
	if !ok {
		return old
	}
	out := make([]models.Post, 0, len(v))
	for _, p := range v {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func decrement(n int) int {
	return max(0, n-1)
}

func liked(p models.Post) models.Post {
	p.LikeCount++
	p.IsLikedByMe = true
	return p
}

func unliked(p models.Post) models.Post {
	p.LikeCount = decrement(p.LikeCount)
	p.IsLikedByMe = false
	p.LikeIDByMe = nil
	return p
}

func reposted(p models.Post) models.Post {
	p.RepostCount++
	p.IsRepostedByMe = true
	return p
}

func unreposted(p models.Post) models.Post {
	p.RepostCount = decrement(p.RepostCount)
	p.IsRepostedByMe = false
	p.RepostIDByMe = nil
	return p
}

func withLikeID(id int64) func(models.Post) models.Post {
	return func(p models.Post) models.Post {
		p.LikeIDByMe = &id
		return p
	}
}

func withRepostID(id int64) func(models.Post) models.Post {
	return func(p models.Post) models.Post {
		p.RepostIDByMe = &id
		return p
	}
}

// findPost looks the post up in cached values.
func findPost(values []any, id int64) (models.Post, bool) {
	for _, v := range values {
		switch p := v.(type) {
		case models.Post:
			if p.ID == id {
				return p, true
			}
		case []models.Post:
			for _, item := range p {
				if item.ID == id {
					return item, true
				}
			}
		}
	}
	return models.Post{}, false
}
