package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"signet/internal/config"
)

type Store struct {
	DB *gorm.DB
}

// NewStore opens postgres when a DSN is configured. Without one the store is
// returned with a nil DB and callers fall back to in-memory adapters.
func NewStore(cfg config.Config, logger zerolog.Logger) (*Store, error) {
	if cfg.PostgresDSN == "" {
		logger.Info().Msg("POSTGRES_DSN not set; starting in no-db mode")
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Store{DB: gdb}, nil
}

func (s *Store) Enabled() bool {
	return s != nil && s.DB != nil
}

// Migrate creates or updates the tables the repositories use.
func (s *Store) Migrate() error {
	if !s.Enabled() {
		return errDBUnavailable
	}
	return s.DB.AutoMigrate(
		&PrincipalModel{},
		&SignedMessageModel{},
		&AuditEntryModel{},
		&AuditSeqModel{},
	)
}

func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
