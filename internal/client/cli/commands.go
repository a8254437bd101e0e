package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/chirp/internal/client/media"
	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
)

var getMultiline = GetMultiline

// openMedia is a test seam for reading attachments from disk.
var openMedia = media.OpenFile

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func parseID(args []string, format string) (int64, error) {
	if len(args) == 0 {
		return 0, usage(format)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not an id", common.ErrorValidation, args[0])
	}
	return id, nil
}

// idAndText parses "<id> <text...>", prompting for the text when it is missing.
func (a *App) idAndText(args []string, format string) (int64, string, error) {
	id, err := parseID(args, format)
	if err != nil {
		return 0, "", err
	}
	text := strings.Join(args[1:], " ")
	if text == "" {
		text, err = getMultiline(a.reader, "Enter text (double Enter to finish):", a.out)
		if err != nil {
			return 0, "", err
		}
	}
	return id, text, nil
}

func (a *App) printPost(p models.Post) {
	var marks []string
	if p.IsLikedByMe {
		marks = append(marks, "liked")
	}
	if p.IsRepostedByMe {
		marks = append(marks, "reposted")
	}
	fmt.Fprintf(a.out, "#%d @%s: %s\n", p.ID, p.Username, p.Content)
	fmt.Fprintf(a.out, "    likes %d  reposts %d  replies %d", p.LikeCount, p.RepostCount, p.ReplyCount)
	if len(p.MediaIDs) > 0 {
		fmt.Fprintf(a.out, "  media %v", p.MediaIDs)
	}
	if len(marks) > 0 {
		fmt.Fprintf(a.out, "  [%s]", strings.Join(marks, ", "))
	}
	fmt.Fprintln(a.out)
}

func (a *App) Timeline(ctx context.Context) error {
	posts, err := a.svc.Posts.Timeline(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "Nothing here yet")
		return nil
	}
	for _, p := range posts {
		a.printPost(p)
	}
	return nil
}

// Show prints one post with its replies and presigned links to its media.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <post>")
	if err != nil {
		return err
	}
	p, err := a.svc.Posts.Post(ctx, id)
	if err != nil {
		return err
	}
	a.printPost(p)

	for _, mid := range p.MediaIDs {
		u, err := a.svc.Media.URL(ctx, mid)
		if err != nil {
			a.logger.Warn(ctx, "media link unavailable", "media_id", mid, "error", err)
			continue
		}
		fmt.Fprintf(a.out, "    %s %d: %s\n", u.Media.MediaType, mid, u.PresignedURL)
	}

	replies, err := a.svc.Posts.Replies(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range replies {
		fmt.Fprintf(a.out, "  > #%d @%s: %s\n", r.ID, r.Username, r.Content)
	}
	return nil
}

// Post publishes the current draft. Uploads still running are awaited.
func (a *App) Post(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		text, err = getMultiline(a.reader, "Enter post text (double Enter to finish):", a.out)
		if err != nil {
			return err
		}
	}

	post, err := a.currentComposer().Submit(ctx, text)
	if err != nil {
		return err
	}
	a.finishDraft()
	fmt.Fprintf(a.out, "Posted #%d\n", post.ID)
	return nil
}

// Attach starts uploading a file into the current draft.
func (a *App) Attach(_ context.Context, args []string) error {
	if len(args) == 0 {
		return usage("attach <path>")
	}
	path := strings.Join(args, " ")
	src, err := openMedia(path)
	if err != nil {
		return err
	}
	id, ok := a.currentComposer().Attach(src)
	if !ok {
		src.Close()
		return fmt.Errorf("%w: cannot attach more than %d files", common.ErrorValidation, a.config.MaxAttachments)
	}
	fmt.Fprintf(a.out, "Uploading %s as %s\n", src.Name, id)
	return nil
}

func (a *App) Detach(_ context.Context, args []string) error {
	if len(args) == 0 {
		return usage("detach <id>")
	}
	if !a.currentComposer().Detach(args[0]) {
		return fmt.Errorf("%w: no attachment %s", common.ErrorNotFound, args[0])
	}
	return nil
}

func (a *App) Attachments(_ context.Context) error {
	assets := a.currentComposer().Attachments()
	if len(assets) == 0 {
		fmt.Fprintln(a.out, "No attachments")
		return nil
	}
	for _, as := range assets {
		line := fmt.Sprintf("%s %s (%s) %s %d%%", as.ID, as.Name, as.Kind, as.Status, as.Progress)
		if as.Err != nil {
			line += ": " + as.Err.Error()
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// Discard throws away the current draft. Uploads already under way run to
// completion in the background.
func (a *App) Discard(_ context.Context) error {
	a.discardDraft()
	fmt.Fprintln(a.out, "Draft discarded")
	return nil
}

func (a *App) discardDraft() {
	a.mu.Lock()
	composer := a.composer
	a.mu.Unlock()
	if composer != nil {
		composer.Abandon()
	}
	a.finishDraft()
}

func (a *App) Like(ctx context.Context, args []string) error {
	id, err := parseID(args, "like <post>")
	if err != nil {
		return err
	}
	_, err = a.svc.Posts.Like(ctx, id)
	return err
}

func (a *App) Unlike(ctx context.Context, args []string) error {
	id, err := parseID(args, "unlike <post>")
	if err != nil {
		return err
	}
	likeID, ok := a.svc.Posts.LikeIDOf(id)
	if !ok {
		return fmt.Errorf("%w: post %d is not liked", common.ErrorValidation, id)
	}
	return a.svc.Posts.Unlike(ctx, id, likeID)
}

func (a *App) Repost(ctx context.Context, args []string) error {
	id, err := parseID(args, "repost <post>")
	if err != nil {
		return err
	}
	_, err = a.svc.Posts.Repost(ctx, id)
	return err
}

func (a *App) Unrepost(ctx context.Context, args []string) error {
	id, err := parseID(args, "unrepost <post>")
	if err != nil {
		return err
	}
	repostID, ok := a.svc.Posts.RepostIDOf(id)
	if !ok {
		return fmt.Errorf("%w: post %d is not reposted", common.ErrorValidation, id)
	}
	return a.svc.Posts.Unrepost(ctx, id, repostID)
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete <post>")
	if err != nil {
		return err
	}
	return a.svc.Posts.DeletePost(ctx, id)
}

func (a *App) Reply(ctx context.Context, args []string) error {
	id, text, err := a.idAndText(args, "reply <post> <text>")
	if err != nil {
		return err
	}
	r, err := a.svc.Posts.CreateReply(ctx, id, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Replied #%d\n", r.ID)
	return nil
}

func (a *App) Quote(ctx context.Context, args []string) error {
	id, text, err := a.idAndText(args, "quote <post> <text>")
	if err != nil {
		return err
	}
	q, err := a.svc.Posts.CreateQuote(ctx, id, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Quoted #%d\n", q.ID)
	return nil
}

func (a *App) Follow(ctx context.Context, args []string) error {
	id, err := parseID(args, "follow <user>")
	if err != nil {
		return err
	}
	_, err = a.svc.Users.Follow(ctx, id)
	return err
}

func (a *App) Unfollow(ctx context.Context, args []string) error {
	id, err := parseID(args, "unfollow <user>")
	if err != nil {
		return err
	}
	return a.svc.Users.Unfollow(ctx, id)
}
