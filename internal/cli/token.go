package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stemsi/coursemart-backend/internal/config"
	"github.com/stemsi/coursemart-backend/internal/service"
	"golang.org/x/term"
)

type secretReader func() (string, error)

// newTokenCmd issues a signed token for local testing against the API.
func newTokenCmd(readSecret secretReader) *cobra.Command {
	var (
		userID int
		role   string
		prompt bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed JWT for an instructor or student",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if prompt || cfg.JWTSecret == "" {
				secret, err := readSecret()
				if err != nil {
					return err
				}
				cfg.JWTSecret = secret
			}
			if cfg.JWTSecret == "" {
				return errors.New("a signing secret is required")
			}

			token, err := service.NewAuthService(cfg).IssueToken(userID, service.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().IntVar(&userID, "user-id", 0, "id of the user the token is issued for")
	cmd.Flags().StringVar(&role, "role", string(service.RoleInstructor), "instructor or student")
	cmd.Flags().BoolVar(&prompt, "prompt", false, "read the signing secret from the terminal instead of JWT_SECRET")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func readSecretFromTerminal() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot prompt for the secret: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "JWT secret: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(raw), nil
}
