// Package repositories implements SQLite persistence for the dashboard API.
//
// Key Implementations:
//   - [UserRepository] : Discord users who have signed in, upserted on every OAuth callback
//   - [SessionRepository] : issued session cookies; a revoked or expired row makes its cookie useless
//
// Both satisfy the storage interfaces declared in the models package so the web handlers can be tested
// against in-memory fakes.
package repositories
