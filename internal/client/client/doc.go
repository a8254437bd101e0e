// Package client contains the Remote API Gateway of the chirp client.
//
// # Overview
//
// The package provides:
//  1. Client, a thin JSON-over-HTTP gateway. It keeps the session cookie in a
//     cookie jar, mirrors the server-issued XSRF-TOKEN cookie into the
//     X-XSRF-TOKEN header, and normalises error responses into *APIError.
//  2. Typed endpoint groups (see API): auth, users, posts, likes, reposts,
//     replies, quotes, follows, profile, timeline and media.
//  3. The declarative read retry policy (ShouldRetry) consumed by the
//     query cache. The gateway itself never retries.
//
// # Response handling
//
//   - 401 on the session identity endpoint (/api/v1/users/me) redirects the
//     Navigator to /login unless it already shows /login or /signup. A 401
//     anywhere else is only returned as an error.
//   - 204, an empty 2xx body, or a 2xx body that is not valid JSON yield no
//     value: Request returns a nil json.RawMessage and a nil error.
//   - Any other non-2xx status yields *APIError with the "message" field of a
//     JSON body, or "Request failed".
//
// # Error Handling
//
// Callers match conditions with errors.Is: common.ErrUnauthorized (401),
// common.ErrorNotFound (404) and common.ErrUnavailable (network failure).
// Use errors.As with *APIError for the status and details.
//
// Concurrency & Contexts
//
// Client is safe for concurrent use. Every operation accepts a
// context.Context and honours cancellation.
package client
