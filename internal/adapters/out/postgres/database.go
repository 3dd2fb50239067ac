// Package postgres opens the PostgreSQL connection used by the SQL draft backend and
// migrates its schema.
//
// Example:
//
//	db, err := postgres.Open(postgres.Config{
//	    Host: "localhost", Port: "5432", User: "expedition", Password: "secret",
//	    Name: "expedition", SSLMode: "disable",
//	})
//	if err != nil {
//	    return err
//	}
//	if err := postgres.Migrate(db); err != nil {
//	    return err
//	}
//	store := draftrepo.NewGormDraftRepository(db)
package postgres

import (
	"errors"
	"fmt"

	"expedition/internal/adapters/out/postgres/draftrepo"
	"expedition/internal/pkg/errs"

	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the connection parameters.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Validate reports every missing connection parameter.
func (c Config) Validate() error {
	var missing []error
	for name, value := range map[string]string{
		"host": c.Host, "port": c.Port, "user": c.User, "name": c.Name,
	} {
		if value == "" {
			missing = append(missing, errs.NewValueIsRequiredError("database "+name))
		}
	}
	return errors.Join(missing...)
}

// DSN renders the connection string understood by the pgx driver.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

// Open connects to the database described by cfg.
func Open(cfg Config) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgresdriver.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables of the SQL backend.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&draftrepo.DraftDTO{})
}
