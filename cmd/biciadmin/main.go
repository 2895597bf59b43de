// biciadmin is the operator CLI: schema migration, user seeding and bcrypt
// hash generation.
//
//	biciadmin migrate
//	biciadmin seed-user --username ana --password secreto --display-name "Ana"
//	biciadmin hash-password secreto --cost 12
package main

import (
	"fmt"
	"os"

	"github.com/DavidJaure/CRUDapiDB/internal/config"
	"github.com/DavidJaure/CRUDapiDB/internal/dto"
	"github.com/DavidJaure/CRUDapiDB/internal/infra"
	"github.com/DavidJaure/CRUDapiDB/internal/repository"
	"github.com/DavidJaure/CRUDapiDB/internal/security"
	"github.com/DavidJaure/CRUDapiDB/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "biciadmin",
		Short:         "Administration tasks for the biciusuarios API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedUserCmd(), newHashPasswordCmd())
	return root
}

// openDB loads the same configuration as the server and returns a migrated
// database handle.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	infra.SetupLogger(cfg.Env, cfg.LogLevel, os.Stderr)
	db, err := infra.NewDatabase(infra.DatabaseOptions{
		Driver:   cfg.DatabaseDriver,
		DSN:      cfg.DatabaseURL,
		LogLevel: infra.GormLogLevel(cfg.Env),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}
	if err := infra.Migrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			log.Info().Str("driver", cfg.DatabaseDriver).Msg("schema migrated")
			fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")
			return nil
		},
	}
}

func newSeedUserCmd() *cobra.Command {
	var req dto.RegistroRequest
	cmd := &cobra.Command{
		Use:   "seed-user",
		Short: "Register a user through the same rules as POST /auth/register",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
			svc := service.NewAuthService(repository.NewBiciusuarioRepository(db), tokens, cfg.BcryptCost)
			perfil, err := svc.Registrar(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "usuario %q creado con id %d\n", perfil.Username, perfil.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "login name")
	cmd.Flags().StringVar(&req.Password, "password", "", "plain password, stored as a bcrypt hash")
	cmd.Flags().StringVar(&req.DisplayName, "display-name", "", "profile display name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("display-name")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := security.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}
