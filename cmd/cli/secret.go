package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockassist/platform/internal/infrastructure/crypto"
	"github.com/stockassist/platform/pkg/constants"
)

func newSecretCmd() *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage the token signing secret",
	}

	var size int
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a random base64 secret for jwt.secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := crypto.GenerateSecret(size)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), secret)
			return err
		},
	}
	generateCmd.Flags().IntVar(&size, "bytes", 64, fmt.Sprintf("secret size in bytes (minimum %d)", constants.MinSigningKeyBytes))

	secretCmd.AddCommand(generateCmd)
	return secretCmd
}
