package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/remote"
)

func TestHTTPStore_Create(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tables/payments/records", r.URL.Path)
		gotKey = r.Header.Get(IdempotencyHeader)

		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "B1", body.Fields["booking_id"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"record":{"id":"17","booking_id":"B1","amount":250.5}}`))
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, time.Second, slog.Default())

	ctx := remote.WithIdempotencyKey(context.Background(), "key-1")
	rec, err := store.Create(ctx, remote.TablePayments, remote.Fields{"booking_id": "B1", "amount": 250.5})
	require.NoError(t, err)

	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "17", rec.ID())
	amount, err := rec.Float("amount")
	require.NoError(t, err)
	assert.Equal(t, 250.5, amount)
}

func TestHTTPStore_QueryHasNoIdempotencyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tables/bookings/query", r.URL.Path)
		assert.Empty(t, r.Header.Get(IdempotencyHeader))
		w.Write([]byte(`{"records":[{"id":"1","booking_id":"B1"},{"id":"2","booking_id":"B1"}]}`))
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, time.Second, slog.Default())
	ctx := remote.WithIdempotencyKey(context.Background(), "key-1")

	recs, err := store.Query(ctx, remote.TableBookings, remote.Filter{"booking_id": "B1"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2", recs[1].ID())
}

func TestHTTPStore_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		rejection bool
	}{
		{"validation", http.StatusUnprocessableEntity, `{"title":"Unprocessable Entity","detail":"unknown column \"colour\""}`, true},
		{"not found", http.StatusNotFound, `{"title":"Not Found"}`, true},
		{"server error", http.StatusInternalServerError, `{"title":"Internal Server Error"}`, false},
		{"unavailable", http.StatusServiceUnavailable, `upstream down`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			store := NewHTTPStore(srv.URL, time.Second, slog.Default())
			_, err := store.Update(context.Background(), remote.TableBookings, "1", remote.Fields{"notes": "x"})
			require.Error(t, err)

			assert.Equal(t, tt.rejection, remote.IsRejection(err))
			assert.Equal(t, !tt.rejection, remote.IsTransport(err))
		})
	}
}

func TestHTTPStore_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := NewHTTPStore(url, time.Second, slog.Default())

	err := store.Delete(context.Background(), remote.TableBookings, "1")
	assert.True(t, remote.IsTransport(err))
	assert.ErrorIs(t, err, remote.ErrUnreachable)

	assert.Error(t, store.HealthCheck(context.Background()))
}

func TestHTTPStore_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, time.Second, slog.Default())
	assert.NoError(t, store.HealthCheck(context.Background()))
}
