// Command userauth serves the authentication API and bundles a few
// operator helpers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "userauth",
		Short: "User authentication service",
		Long: `userauth runs an HTTP API guarded by one of several pluggable
authentication strategies: basic auth, in-memory sessions, expiring
sessions, or sessions persisted to Redis or PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		encodeBasicCmd(),
		hashPasswordCmd(),
		loadtestCmd(),
		versionCmd(),
	)
	return root
}
