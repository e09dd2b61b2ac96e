package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// драйвер postgres и файловый источник регистрируются через init
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"hostdesk/internal/app/server/config"
)

// Migrator - то, что нужно от migrate.Migrate
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine создаёт мигратор; в тестах подменяется, чтобы не трогать ФС и БД
type MigrationEngine func(sourceURL, databaseURL string) (Migrator, error)

type Migration struct {
	cfg    *config.Config
	engine MigrationEngine
}

func NewMigration(conf *config.Config, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		cfg:    conf,
		engine: engine,
	}
}

func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Up применяет схему bookings/payments/properties; отсутствие изменений не ошибка
func (mg *Migration) Up() (err error) {
	m, err := mg.engine("file://"+mg.cfg.DB.Migrations, mg.cfg.DB.DatabaseURI)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		serr, dberr := m.Close()
		err = errors.Join(err, wrapClose("source", serr), wrapClose("database", dberr))
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

func wrapClose(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("close migration %s: %w", what, err)
}
