// Package db owns the Postgres connection and schema migration.
package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/envutil"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.String("POSTGRES_HOST", "localhost")
	port := envutil.String("POSTGRES_PORT", "5432")
	user := envutil.String("POSTGRES_USER", "postgres")
	password := envutil.String("POSTGRES_PASSWORD", "")
	name := envutil.String("POSTGRES_NAME", "crm")
	sslmode := envutil.String("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)

	serviceLog.Info("connecting to postgres", "host", host, "db", name)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Models default their primary keys to uuid_generate_v4().
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("migrating tables")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.LayoutPreference{},
		&types.LayoutRevision{},
		&types.Organization{},
		&types.Contact{},
		&types.Interaction{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return s.addForeignKeys()
}

// fkDef mirrors the constraints gorm skips because migration runs with
// DisableForeignKeyConstraintWhenMigrating. Re-adding them here keeps
// cascades working while letting migration order stay simple.
type fkDef struct {
	table, name, column, refTable, refColumn, onDelete string
}

func (s *PostgresService) addForeignKeys() error {
	fks := []fkDef{
		{"user_token", "fk_user_token_user_id", "user_id", "user", "id", "CASCADE"},
		{"layout_preference", "fk_layout_preference_user_id", "user_id", "user", "id", "CASCADE"},
		{"layout_revision", "fk_layout_revision_created_by", "created_by", "user", "id", "CASCADE"},
		{"contact", "fk_contact_organization_id", "organization_id", "organization", "id", "CASCADE"},
		{"interaction", "fk_interaction_organization_id", "organization_id", "organization", "id", "CASCADE"},
		{"interaction", "fk_interaction_user_id", "user_id", "user", "id", "CASCADE"},
		{"interaction", "fk_interaction_contact_id", "contact_id", "contact", "id", "SET NULL"},
	}
	for _, fk := range fks {
		drop := fmt.Sprintf(`ALTER TABLE %q DROP CONSTRAINT IF EXISTS %q;`, fk.table, fk.name)
		if err := s.db.Exec(drop).Error; err != nil {
			return fmt.Errorf("drop %s: %w", fk.name, err)
		}
		add := fmt.Sprintf(
			`ALTER TABLE %q ADD CONSTRAINT %q FOREIGN KEY (%q) REFERENCES %q(%q) ON DELETE %s;`,
			fk.table, fk.name, fk.column, fk.refTable, fk.refColumn, fk.onDelete,
		)
		if err := s.db.Exec(add).Error; err != nil {
			return fmt.Errorf("add %s: %w", fk.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
