// Package middleware adapts a userauth.Strategy to net/http.
//
// [Guard] lets excluded paths through untouched. Any other request without a
// credential gets 401 and one whose credential does not resolve gets 403.
// Both bodies are fixed JSON documents so a client cannot tell which stage
// rejected it. On success the user is attached to the request context; read
// it back with userauth.UserFromContext.
package middleware
