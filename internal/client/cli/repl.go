package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Sessions(ctx context.Context) error
	Timeline(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Post(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Detach(ctx context.Context, args []string) error
	Attachments(ctx context.Context) error
	Discard(ctx context.Context) error
	Like(ctx context.Context, args []string) error
	Unlike(ctx context.Context, args []string) error
	Repost(ctx context.Context, args []string) error
	Unrepost(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Reply(ctx context.Context, args []string) error
	Quote(ctx context.Context, args []string) error
	Follow(ctx context.Context, args []string) error
	Unfollow(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: signup, login, exit"
	helpLoggedIn  = "Available commands: me, sessions, (t)imeline, show <post>, post [text], attach <path>, detach <id>, " +
		"attachments, discard, like <post>, unlike <post>, repost <post>, unrepost <post>, delete <post>, " +
		"reply <post> <text>, quote <post> <text>, follow <user>, unfollow <user>, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the chirp CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments. The
// same reader feeds the interactive prompts of the commands, so no input is
// buffered away from them. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("chirp %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "signup", "register":
		return a.Signup(ctx)
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		printlnFn("Please log in first (type 'help' for commands)")
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "me":
		return a.Me(ctx)
	case "sessions":
		return a.Sessions(ctx)
	case "t", "timeline":
		return a.Timeline(ctx)
	case "show":
		return a.Show(ctx, args)
	case "post":
		return a.Post(ctx, args)
	case "attach":
		return a.Attach(ctx, args)
	case "detach":
		return a.Detach(ctx, args)
	case "attachments":
		return a.Attachments(ctx)
	case "discard":
		return a.Discard(ctx)
	case "like":
		return a.Like(ctx, args)
	case "unlike":
		return a.Unlike(ctx, args)
	case "repost":
		return a.Repost(ctx, args)
	case "unrepost":
		return a.Unrepost(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "reply":
		return a.Reply(ctx, args)
	case "quote":
		return a.Quote(ctx, args)
	case "follow":
		return a.Follow(ctx, args)
	case "unfollow":
		return a.Unfollow(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}
