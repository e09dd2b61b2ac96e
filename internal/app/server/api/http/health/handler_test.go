package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus string
		wantDB     string
		wantErr    bool
	}{
		{name: "no database", wantStatus: "OK", wantDB: "unchecked"},
		{name: "database up", db: pingFunc(func(context.Context) error { return nil }), wantStatus: "OK", wantDB: "up"},
		{name: "database down", db: pingFunc(func(context.Context) error { return errors.New("refused") }), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(tt.db, slog.Default(), huma.Middlewares{})

			output, err := handler.healthCheck(context.Background(), &Input{})

			if tt.wantErr {
				var se huma.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusServiceUnavailable, se.GetStatus())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, output.Body.Status)
			assert.Equal(t, tt.wantDB, output.Body.Database)
		})
	}
}

func TestHandler_Route(t *testing.T) {
	_, api := humatest.New(t)
	NewHandler(nil, slog.Default(), nil).SetupRoutes(api)

	resp := api.Get("/api/v1/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"OK"`)
}
