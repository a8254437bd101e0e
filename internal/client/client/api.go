package client

// API groups the typed endpoint services of the remote contract.
type API struct {
	Client *Client

	Auth     *AuthService
	Users    *UserService
	Posts    *PostService
	Likes    *LikeService
	Reposts  *RepostService
	Replies  *ReplyService
	Quotes   *QuoteService
	Follows  *FollowService
	Profile  *ProfileService
	Timeline *TimelineService
	Media    *MediaService
}

// NewAPI wires every endpoint service onto c.
func NewAPI(c *Client) *API {
	return &API{
		Client:   c,
		Auth:     &AuthService{c: c},
		Users:    &UserService{c: c},
		Posts:    &PostService{c: c},
		Likes:    &LikeService{c: c},
		Reposts:  &RepostService{c: c},
		Replies:  &ReplyService{c: c},
		Quotes:   &QuoteService{c: c},
		Follows:  &FollowService{c: c},
		Profile:  &ProfileService{c: c},
		Timeline: &TimelineService{c: c},
		Media:    &MediaService{c: c},
	}
}
