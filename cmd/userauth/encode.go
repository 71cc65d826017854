package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CipherPhantom/userauth/credential"
	"github.com/CipherPhantom/userauth/password"
)

func encodeBasicCmd() *cobra.Command {
	var headerOnly bool

	cmd := &cobra.Command{
		Use:   "encode-basic <username> <password>",
		Short: "Print an Authorization header for basic auth",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := credential.EncodeBasic(args[0], args[1])
			if headerOnly {
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authorization: %s\n", value)
			return nil
		},
	}

	cmd.Flags().BoolVar(&headerOnly, "value", false, "Print only the header value")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	var (
		memory     uint32
		iterations uint32
	)

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print an Argon2id hash suitable for seeding a user store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := password.DefaultConfig()
			if memory > 0 {
				cfg.Memory = memory
			}
			if iterations > 0 {
				cfg.Time = iterations
			}
			hasher, err := password.NewArgon2(cfg)
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().Uint32Var(&memory, "memory", 0, "Argon2 memory in KiB (default from library)")
	cmd.Flags().Uint32Var(&iterations, "time", 0, "Argon2 iterations (default from library)")
	return cmd
}
