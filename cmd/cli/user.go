package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/internal/infrastructure/monitoring"
	"github.com/stockassist/platform/internal/infrastructure/persistence/postgres"
	"github.com/stockassist/platform/pkg/utils"
)

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var (
		username    string
		password    string
		nickname    string
		authorities []string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user with a bcrypt-hashed password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			user, err := newUser(username, password, nickname, authorities)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			log := monitoring.NewZapLogger(&cfg.Log)
			db, err := postgres.NewDBConnection(ctx, &cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()
			if cfg.Database.AutoMigrate {
				if err := db.AutoMigrate(ctx); err != nil {
					return err
				}
			}

			if err := postgres.NewUserRepository(db.DB(), log).Save(ctx, user); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return err
		},
	}
	createCmd.Flags().StringVar(&username, "username", "", "login name")
	createCmd.Flags().StringVar(&password, "password", "", "plain text password, hashed before storage")
	createCmd.Flags().StringVar(&nickname, "nickname", "", "display name")
	createCmd.Flags().StringSliceVar(&authorities, "authorities", []string{"ROLE_USER"}, "granted authorities")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func newUser(username, password, nickname string, authorities []string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:      username,
		PasswordHash:  string(hash),
		AuthorityList: utils.JoinAuthorities(authorities),
	}
	if nickname != "" {
		user.Profile = &models.Profile{Nickname: nickname}
	}
	return user, nil
}
