// Package credential decodes HTTP Basic authorization values into raw
// username/password pairs.
//
// # Pipeline
//
//	"Basic dXNlcjpwYXNz" -> DecodeBasicHeader -> DecodeBase64 -> SplitCredentials
//
// Every step reports failure with a false second return value. Callers that
// sit on an authentication boundary are expected to collapse any failure into
// a single "unauthenticated" outcome.
//
// # What this package must NOT do
//
//   - Look up users or verify passwords.
//   - Log or otherwise retain decoded passwords.
package credential
