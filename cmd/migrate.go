package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-purchases/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or inspect the purchases schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Run: func(_ *cobra.Command, _ []string) {
		withMigrator(func(m *migrate.Migrate) error {
			err := m.Up()
			if errors.Is(err, migrate.ErrNoChange) {
				logrus.Info("Schema already up to date")
				return nil
			}
			if err != nil {
				return err
			}
			logrus.Info("Migrations applied")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last applied migration",
	Run: func(_ *cobra.Command, _ []string) {
		withMigrator(func(m *migrate.Migrate) error {
			if err := m.Steps(-1); err != nil {
				return err
			}
			logrus.Info("Last migration rolled back")
			return nil
		})
	},
}

var migrateGotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate up or down to the given version",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			logrus.WithError(err).Fatal("Invalid migration version")
		}

		withMigrator(func(m *migrate.Migrate) error {
			err := m.Migrate(uint(version))
			if errors.Is(err, migrate.ErrNoChange) {
				logrus.WithField("version", version).Info("Schema already at version")
				return nil
			}
			if err != nil {
				return err
			}
			logrus.WithField("version", version).Info("Migrated to version")
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Run: func(_ *cobra.Command, _ []string) {
		withMigrator(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("No migrations applied")
				return nil
			}
			if err != nil {
				return err
			}

			suffix := ""
			if dirty {
				suffix = " (dirty)"
			}
			fmt.Printf("Current schema version: %d%s\n", version, suffix)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateGotoCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

// withMigrator runs fn against the embedded migrations. Closing the migrator
// also closes the database handle.
func withMigrator(fn func(m *migrate.Migrate) error) {
	cfg := mustLoadConfig()
	db := mustOpenDB(cfg)

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read embedded migrations")
	}

	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to initialize migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to initialize migrations")
	}

	runErr := fn(m)
	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		logrus.WithField("source_error", sourceErr).WithField("db_error", dbErr).Warn("Failed to close migration resources")
	}
	if runErr != nil {
		logrus.WithError(runErr).Fatal("Migration failed")
	}
}
