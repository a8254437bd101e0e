// Package services contains the application services of the chirp client:
// cached queries and the mutations that keep those caches consistent.
//
// Counter mutations (like, unlike, repost, unrepost) and post deletion are
// optimistic. They rewrite every cached copy of the post before the server
// answers and restore the previous values verbatim when it refuses. All other
// writes only invalidate the affected keys once they settle.
package services

import (
	"github.com/dmitrijs2005/chirp/internal/client/cache"
	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/dmitrijs2005/chirp/internal/client/notify"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

// Deps carries what every service needs.
type Deps struct {
	API      *client.API
	Cache    *cache.QueryCache
	Notifier notify.Notifier
	Logger   logging.Logger
	// TimelineLimit is the timeline page size; zero selects the API default.
	TimelineLimit int
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.Nop()
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.TimelineLimit <= 0 {
		d.TimelineLimit = client.DefaultTimelineLimit
	}
	return d
}

// Services groups the client services sharing one cache.
type Services struct {
	Auth  *AuthService
	Posts *PostService
	Users *UserService
	Media *MediaService
}

func New(d Deps) *Services {
	d = d.withDefaults()
	return &Services{
		Auth:  NewAuthService(d),
		Posts: NewPostService(d),
		Users: NewUserService(d),
		Media: NewMediaService(d),
	}
}
