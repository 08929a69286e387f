package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/internal/infrastructure/crypto"
)

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint tokens with the configured signing secret",
	}

	var (
		username    string
		authorities []string
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Print an access token for a username, ready for the Authorization header",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			key, err := crypto.LoadSigningKey(cfg.JWT.Secret)
			if err != nil {
				return err
			}

			issued, err := crypto.NewJWTCodec(key).CreateAccessToken(models.Principal{
				Username:    username,
				Authorities: authorities,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
			return err
		},
	}
	issueCmd.Flags().StringVar(&username, "username", "", "username to put in the token")
	issueCmd.Flags().StringSliceVar(&authorities, "authorities", []string{"ROLE_USER"}, "authorities to put in the token")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}
