// Package cli provides the interactive chirp command-line client.
//
// It wires configuration, the API gateway, the query cache, the media upload
// engine and the domain services into a REPL. Typical flow: resume a session
// when the server still accepts the session cookie, otherwise sign up or log in, then
// browse the timeline, compose posts with attachments and react to posts.
//
// Key features:
//   - Signup / Login / Logout, listing of active sessions
//   - Timeline and single post view with replies and media links
//   - Drafts with background media uploads (attach, detach, discard)
//   - Optimistic like, repost and delete with automatic rollback
//   - Replies, quotes, follow / unfollow
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
