package client

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/booking"
	"hostdesk/internal/domain/mutation"
	"hostdesk/internal/domain/remote"
)

// Adapters применяют мутацию каждого вида к удалённому хранилищу.
// Один и тот же код работает и для онлайн-действия, и для воспроизведения очереди.
type Adapters struct {
	store       remote.Store
	reconciler  *booking.Reconciler
	idempotency bool
	log         *slog.Logger
}

func NewAdapters(store remote.Store, reconciler *booking.Reconciler, idempotency bool, log *slog.Logger) *Adapters {
	return &Adapters{
		store:       store,
		reconciler:  reconciler,
		idempotency: idempotency,
		log:         log.With("component", "adapters"),
	}
}

// Apply применяет элемент очереди. При включённых ключах идемпотентности
// local_id передаётся хранилищу как ключ.
func (a *Adapters) Apply(ctx context.Context, m mutation.QueuedMutation) error {
	if m.Payload == nil {
		return fmt.Errorf("%w: %s has no payload", mutation.ErrInvalidPayload, m.LocalID)
	}
	if m.Payload.Kind() != m.Kind {
		return fmt.Errorf("%w: %s is %s", mutation.ErrKindMismatch, m.LocalID, m.Kind)
	}
	if a.idempotency {
		ctx = remote.WithIdempotencyKey(ctx, m.LocalID)
	}
	return a.ApplyPayload(ctx, m.Payload)
}

func (a *Adapters) ApplyPayload(ctx context.Context, p mutation.Payload) error {
	switch p := p.(type) {
	case mutation.Reservation:
		return a.applyReservation(ctx, p)
	case mutation.Payment:
		return a.applyPayment(ctx, p)
	case mutation.FieldEdit:
		return a.applyFieldEdit(ctx, p)
	default:
		return fmt.Errorf("%w: %T", mutation.ErrUnknownKind, p)
	}
}

func (a *Adapters) applyReservation(ctx context.Context, r mutation.Reservation) error {
	fields := r.Fields()

	if r.RecordID == "" {
		rec, err := a.store.Create(ctx, remote.TableBookings, fields)
		if err != nil {
			return fmt.Errorf("create booking %s: %w", r.BookingID, err)
		}
		a.log.Debug("Бронирование создано", "booking_id", r.BookingID, "id", rec.ID())
		return nil
	}

	if _, err := a.store.Update(ctx, remote.TableBookings, r.RecordID, fields); err != nil {
		return fmt.Errorf("update booking %s: %w", r.BookingID, err)
	}
	a.log.Debug("Бронирование обновлено", "booking_id", r.BookingID, "id", r.RecordID)
	return nil
}

// applyPayment создаёт платёж и всегда пересчитывает баланс бронирования.
// Платёж к несуществующему бронированию отклоняется до записи в реестр,
// иначе каждый повтор элемента оставлял бы ещё один платёж.
func (a *Adapters) applyPayment(ctx context.Context, p mutation.Payment) error {
	bookings, err := a.store.Query(ctx, remote.TableBookings, remote.Filter{booking.FieldBookingID: p.BookingID})
	if err != nil {
		return fmt.Errorf("check booking %s: %w", p.BookingID, err)
	}
	if len(bookings) == 0 {
		return &remote.RejectionError{
			Op:     "create payment",
			Reason: fmt.Sprintf("%v: %s", booking.ErrBookingNotFound, p.BookingID),
		}
	}

	rec, err := a.store.Create(ctx, remote.TablePayments, p.Fields())
	if err != nil {
		return fmt.Errorf("create payment for %s: %w", p.BookingID, err)
	}
	a.log.Debug("Платёж создан", "booking_id", p.BookingID, "id", rec.ID(), "amount", p.Amount)

	if _, err := a.reconciler.Reconcile(ctx, p.BookingID); err != nil {
		return fmt.Errorf("reconcile %s: %w", p.BookingID, err)
	}
	return nil
}

func (a *Adapters) applyFieldEdit(ctx context.Context, e mutation.FieldEdit) error {
	if _, err := a.store.Update(ctx, e.TableName, e.TargetID, e.Fields()); err != nil {
		return fmt.Errorf("edit %s/%s: %w", e.TableName, e.TargetID, err)
	}
	return nil
}
