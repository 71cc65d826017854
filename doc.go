// Package userauth authenticates HTTP requests with interchangeable
// strategies selected by AUTH_TYPE.
//
// # Strategies
//
//   - [Auth] (auth): applies the path exclusion rule and never resolves a user.
//   - [BasicAuth] (basic_auth): HTTP Basic credentials checked against a [UserStore].
//   - [SessionAuth] (session_auth): opaque session cookie mapped through an
//     in-memory session.Store.
//   - [ExpiringSessionAuth] (session_exp_auth): SessionAuth with a maximum
//     session age evaluated at lookup time.
//   - [PersistentSessionAuth] (session_db_auth): sessions kept in a
//     session.Repository (memory, Redis or PostgreSQL) with the same expiry rule.
//
// Every strategy collapses internal failures, including store errors, into a
// plain "no user" result. The reason is logged at debug level and recorded in
// [Metrics] but never returned to the caller.
//
// # Construction
//
// [Builder] turns a [Config] (see [LoadConfig]) into an [Engine]. Concrete user
// stores live in the userstore package; the HTTP guard in middleware.
package userauth
