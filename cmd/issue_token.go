/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfqa-be/auth"
	"github.com/tieubaoca/pdfqa-be/config"
)

// issueTokenCmd represents the issue-token command
var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print a bearer token for a user (jwt auth only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Auth.Provider != config.AuthJWT {
			return fmt.Errorf("issue-token requires auth.provider=jwt, got %q", cfg.Auth.Provider)
		}

		token, err := auth.NewJWTVerifier(cfg.Auth.JWTSecret).GenerateToken(uid, ttl)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issueTokenCmd)

	issueTokenCmd.Flags().StringP("user", "u", "", "User id the token is issued for")
	issueTokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	issueTokenCmd.MarkFlagRequired("user")
}
