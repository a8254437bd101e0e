package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for a username and password and creates the account.
// The user still has to log in afterwards.
func (a *App) Signup(ctx context.Context) error {
	a.nav.Navigate(pathSignup)

	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	u, err := a.svc.Auth.Signup(ctx, userName, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %q created (id %d)\n", u.Username, u.ID)
	a.nav.Navigate(pathLogin)
	return nil
}

// Login prompts for credentials, opens a session and loads the profile of
// the logged in user. A rejected login has already been reported through
// the notifier, so it does not end the command with an error.
func (a *App) Login(ctx context.Context) error {
	a.nav.Navigate(pathLogin)

	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	if err := a.svc.Auth.Login(ctx, userName, password); err != nil {
		a.logger.Debug(ctx, "login rejected", "username", userName, "error", err)
		return nil
	}

	me, err := a.svc.Users.Me(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	a.setUser(me.Username)
	a.nav.Navigate(pathFeed)
	return nil
}

// Logout ends the session. Local state is dropped even when the server
// could not be reached.
func (a *App) Logout(ctx context.Context) error {
	a.discardDraft()
	err := a.svc.Auth.Logout(ctx)
	a.setUser("")
	a.nav.Navigate(pathLogin)
	return err
}

func (a *App) Me(ctx context.Context) error {
	me, err := a.svc.Users.Me(ctx)
	if err != nil {
		return err
	}
	counts, err := a.svc.Users.FollowCounts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "@%s (id %d) followers: %d following: %d\n",
		me.Username, me.ID, counts.FollowersCount, counts.FolloweesCount)
	return nil
}

func (a *App) Sessions(ctx context.Context) error {
	sessions, err := a.svc.Auth.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Fprintf(a.out, "%s created %s last seen %s\n", s.SessionID,
			s.CreatedAt.Format(time.RFC3339), s.LastAccessedAt.Format(time.RFC3339))
	}
	return nil
}

// tryResumeSession picks up a session that is still valid on the server.
// It stays quiet when there is none.
func (a *App) tryResumeSession(ctx context.Context) {
	me, err := a.svc.Users.Me(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrUnauthorized) {
			a.logger.Debug(ctx, "no session to resume", "error", err)
		}
		return
	}
	a.setUser(me.Username)
	a.nav.Navigate(pathFeed)
	fmt.Fprintf(a.out, "Resumed session as @%s\n", me.Username)
}
