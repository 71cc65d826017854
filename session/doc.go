// Package session owns session records: the in-memory [Store] used by cookie
// sessions, the [Repository] contract for durable records, and its memory and
// Redis implementations.
//
// # Lifecycle
//
// A [Record] is created on login, read on every authenticated request and
// removed on logout. Its UserID never changes after creation. Expiry is not
// enforced here: callers compare CreatedAt against their own duration policy,
// and expired records stay in place until they are explicitly removed.
//
// # Architecture boundaries
//
// This package does NOT read requests, cookies or users, and it does not decide
// whether a session is still valid. Those decisions belong to the strategies in
// the root package.
//
// # What this package must NOT do
//
//   - Import the root userauth package (no upward imports).
//   - Run background sweeps or set store-level TTLs on records.
package session
