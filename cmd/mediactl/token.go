package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Oniqq60/wiki_media/internal/media"
)

func newTokenCmd() *cobra.Command {
	var (
		secret string
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Sign an upload token for a media service running with JWT_SECRET",
		Example: `JWT_SECRET=... mediactl token --user 42 --role admin`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}

			r := media.Role(strings.ToLower(role))
			if r != media.RoleAdmin && r != media.RoleUser {
				return fmt.Errorf("unknown role %q", role)
			}

			token, err := media.IssueToken([]byte(secret), userID, r, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "signing secret, defaults to $JWT_SECRET")
	cmd.Flags().StringVar(&userID, "user", "", "user id stored in the token")
	cmd.Flags().StringVar(&role, "role", string(media.RoleUser), "admin or user")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
