// Package api serves the user authentication REST API under /api/v1.
//
// Every route except account registration sits behind the configured
// strategy's guard; the default excluded paths keep status, stats, login,
// password reset and metrics public.
//
//	server, err := api.New(deps)
//	err = server.Run(ctx) // returns after ctx is done and shutdown completes
package api
