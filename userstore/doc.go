// Package userstore provides the account stores behind the strategies: a
// mutex-guarded in-memory [Memory] store and a SQLite-backed [SQLite] store.
// Both implement userauth.AccountStore and hand out *[Account] values.
package userstore
