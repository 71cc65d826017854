// Package logging builds the process slog.Logger and redacts personal data
// before it reaches any handler.
package logging
