package main

import (
	"context"
	"os"

	"hospital-scheduler/cmd/bootstrap"
	"hospital-scheduler/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-scheduler",
		Short: "Hospital appointment scheduling API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := bootstrap.Load()
	if err != nil {
		return err
	}

	// Initialize application with all dependencies
	app, err := bootstrap.New(cfg)
	if err != nil {
		logrus.Errorf("Failed to initialize application: %v", err)
		return err
	}

	// Run the application
	app.Run()
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.Load()
			if err != nil {
				return err
			}
			db, err := bootstrap.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			return database.Migrate(db)
		},
	}
}

func seedCmd() *cobra.Command {
	opts := bootstrap.SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo doctors, staff logins and appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.Load()
			if err != nil {
				return err
			}
			db, err := bootstrap.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := bootstrap.Seed(context.Background(), db, bootstrap.GridFromConfig(cfg.Scheduling), opts); err != nil {
				return err
			}
			logrus.Info("Seed complete")
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Doctors, "doctors", 10, "number of doctors to create")
	cmd.Flags().IntVar(&opts.AppointmentsPer, "appointments", 4, "appointments per doctor on the next day")
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@hospital.local", "admin login email")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "admin123", "admin login password")
	cmd.Flags().StringVar(&opts.DoctorPassword, "doctor-password", "doctor123", "password for every seeded doctor login")

	return cmd
}
