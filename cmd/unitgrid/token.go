package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/unitgrid/internal/config"
	"github.com/aretw0/unitgrid/pkg/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token --sub <user>",
	Short: "Mint a bearer token for development",
	Long:  `Signs a token with the configured secret (auth.secret or UNITGRID_JWT_SECRET).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sub, _ := cmd.Flags().GetString("sub")
		if sub == "" {
			return errors.New("--sub is required")
		}
		ttl := cfg.Auth.TokenTTL
		if cmd.Flags().Changed("ttl") {
			ttl, _ = cmd.Flags().GetDuration("ttl")
		}

		issuer, err := auth.NewIssuer(cfg.Auth.Secret, auth.WithTTL(ttl))
		if err != nil {
			return err
		}
		token, err := issuer.Issue(sub)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("sub", "", "User id carried by the token")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.Flags().String("secret", "", "Signing secret (overrides config)")
}

// loadConfig reads --config and the environment, then applies the flags shared
// by serve and token.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if f := cmd.Flags().Lookup("secret"); f != nil && f.Changed {
		cfg.Auth.Secret = f.Value.String()
	}
	return cfg, nil
}
