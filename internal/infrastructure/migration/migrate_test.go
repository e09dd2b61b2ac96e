package migration

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hostdesk/internal/app/server/config"
)

type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		DB: config.DB{DatabaseURI: "postgres://localhost/hostdesk", Migrations: "migrations"},
	}
}

func TestMigration_Up(t *testing.T) {
	tests := []struct {
		name     string
		upErr    error
		closeErr error
		wantErr  bool
	}{
		{name: "applied"},
		{name: "no change", upErr: migrate.ErrNoChange},
		{name: "up failure", upErr: errors.New("dirty database"), wantErr: true},
		{name: "close failure", closeErr: errors.New("conn reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockMigrator)
			m.On("Up").Return(tt.upErr)
			m.On("Close").Return(nil, tt.closeErr)

			var source, db string
			engine := func(s, d string) (Migrator, error) {
				source, db = s, d
				return m, nil
			}

			err := NewMigration(testConfig(), engine).Up()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "file://migrations", source)
			assert.Equal(t, "postgres://localhost/hostdesk", db)
			m.AssertExpectations(t)
		})
	}
}

func TestMigration_Up_EngineError(t *testing.T) {
	engine := func(source, db string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := NewMigration(testConfig(), engine).Up()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "engine crash")
}
