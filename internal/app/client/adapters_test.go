package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/booking"
	"hostdesk/internal/domain/mutation"
	"hostdesk/internal/domain/remote"
	"hostdesk/internal/testutil"
)

func newTestAdapters(store *testutil.RemoteStore, idempotency bool) *Adapters {
	log := slog.Default()
	return NewAdapters(store, booking.NewReconciler(store, log), idempotency, log)
}

func TestAdapters_Reservation(t *testing.T) {
	ctx := context.Background()

	t.Run("insert without record id", func(t *testing.T) {
		store := testutil.NewRemoteStore()
		a := newTestAdapters(store, false)

		err := a.ApplyPayload(ctx, mutation.Reservation{
			BookingID:   "HST25ABCDE2",
			GuestName:   "Anna",
			TotalAmount: 10000,
			Extra:       map[string]any{"sync_status": "pending", "local_id": "x"},
		})
		require.NoError(t, err)

		creates := store.CallsOf("create", remote.TableBookings)
		require.Len(t, creates, 1)
		assert.NotContains(t, creates[0].Fields, "sync_status")
		assert.NotContains(t, creates[0].Fields, "local_id")
		assert.Empty(t, store.CallsOf("query", remote.TablePayments))
	})

	t.Run("update with record id", func(t *testing.T) {
		store := testutil.NewRemoteStore()
		id := store.Seed(remote.TableBookings, remote.Fields{booking.FieldBookingID: "B1", booking.FieldGuestName: "Old"})
		a := newTestAdapters(store, false)

		err := a.ApplyPayload(ctx, mutation.Reservation{RecordID: id, BookingID: "B1", GuestName: "New"})
		require.NoError(t, err)

		assert.Empty(t, store.CallsOf("create", remote.TableBookings))
		rows := store.Rows(remote.TableBookings, remote.Filter{booking.FieldBookingID: "B1"})
		require.Len(t, rows, 1)
		assert.Equal(t, "New", rows[0][booking.FieldGuestName])
	})
}

func TestAdapters_PaymentReconciles(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewRemoteStore()
	store.Seed(remote.TableBookings, remote.Fields{booking.FieldBookingID: "B1", booking.FieldTotalAmount: 3000.0})
	a := newTestAdapters(store, false)

	require.NoError(t, a.ApplyPayload(ctx, mutation.Payment{BookingID: "B1", Amount: 3000, Method: "cash"}))

	rows := store.Rows(remote.TableBookings, remote.Filter{booking.FieldBookingID: "B1"})
	assert.Equal(t, 3000.0, rows[0][booking.FieldPaidAmount])
	assert.Equal(t, "paid", rows[0][booking.FieldPaymentStatus])
}

func TestAdapters_PaymentWithoutBooking(t *testing.T) {
	store := testutil.NewRemoteStore()
	a := newTestAdapters(store, false)

	err := a.ApplyPayload(context.Background(), mutation.Payment{BookingID: "NOPE", Amount: 10})
	assert.True(t, remote.IsRejection(err))
	assert.Contains(t, err.Error(), "NOPE")
	assert.Empty(t, store.CallsOf("create", remote.TablePayments))
	assert.Empty(t, store.Rows(remote.TablePayments, nil))
}

func TestAdapters_FieldEdit(t *testing.T) {
	store := testutil.NewRemoteStore()
	id := store.Seed(remote.TableProperties, remote.Fields{"name": "Loft"})
	a := newTestAdapters(store, false)

	err := a.ApplyPayload(context.Background(), mutation.FieldEdit{
		TableName:    remote.TableProperties,
		TargetID:     id,
		FieldUpdates: remote.Fields{"name": "Loft 2"},
	})
	require.NoError(t, err)

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "update", calls[0].Op)

	err = a.ApplyPayload(context.Background(), mutation.FieldEdit{
		TableName:    remote.TableProperties,
		TargetID:     "999",
		FieldUpdates: remote.Fields{"name": "x"},
	})
	assert.True(t, remote.IsRejection(err))
}

func TestAdapters_IdempotencyKey(t *testing.T) {
	item := mutation.QueuedMutation{
		LocalID: "5f0c7d2e-0000-4000-8000-000000000001",
		Kind:    mutation.KindReservationUpsert,
		Payload: mutation.Reservation{BookingID: "B1"},
	}

	t.Run("enabled", func(t *testing.T) {
		store := testutil.NewRemoteStore()
		require.NoError(t, newTestAdapters(store, true).Apply(context.Background(), item))
		assert.Equal(t, item.LocalID, store.Calls()[0].Key)
	})

	t.Run("disabled", func(t *testing.T) {
		store := testutil.NewRemoteStore()
		require.NoError(t, newTestAdapters(store, false).Apply(context.Background(), item))
		assert.Empty(t, store.Calls()[0].Key)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		bad := item
		bad.Kind = mutation.KindFieldEdit
		err := newTestAdapters(testutil.NewRemoteStore(), false).Apply(context.Background(), bad)
		assert.ErrorIs(t, err, mutation.ErrKindMismatch)
	})
}
