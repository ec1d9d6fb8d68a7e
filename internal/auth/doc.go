// Package auth provides local authentication for pagekeeper: bcrypt password
// accounts, SQLite-backed sessions, bearer API tokens, CSRF protection and
// login rate limiting.
//
// Authentication is optional. With AUTH_MODE=none every request is treated as
// the default user, which keeps local development friction-free. With
// AUTH_MODE=local the middleware authenticates via session cookie (browser
// clients) or Authorization: Bearer token (API clients).
//
// Signup always creates the user together with its profile, so the rest of
// the application can rely on the profile existing.
package auth
