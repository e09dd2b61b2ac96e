package booking

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/remote"
)

// Classify определяет статус оплаты. Суммы округляются до целых единиц
// валюты, чтобы погрешности float не влияли на сравнение.
func Classify(totalPaid, totalAmount float64) PaymentStatus {
	paid := math.Round(totalPaid)
	total := math.Round(totalAmount)

	switch {
	case paid >= total:
		return PaymentPaid
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// Reconciler пересчитывает paid_amount и payment_status бронирования
// по полному реестру его платежей.
type Reconciler struct {
	store remote.Store
	log   *slog.Logger
}

func NewReconciler(store remote.Store, log *slog.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		log:   log.With("component", "reconciler"),
	}
}

// Reconcile выполняет полный пересчёт, а не инкремент кэша, поэтому
// повторный или внеочередной вызов для того же бронирования безопасен.
func (r *Reconciler) Reconcile(ctx context.Context, bookingID string) (*Balance, error) {
	if bookingID == "" {
		return nil, ErrEmptyBookingID
	}

	payments, err := r.store.Query(ctx, remote.TablePayments, remote.Filter{FieldBookingID: bookingID})
	if err != nil {
		return nil, fmt.Errorf("fetch payments of %s: %w", bookingID, err)
	}

	var totalPaid float64
	for _, p := range payments {
		amount, err := p.Float(FieldAmount)
		if err != nil {
			return nil, fmt.Errorf("payment %s of %s: %w", p.ID(), bookingID, err)
		}
		totalPaid += amount
	}

	bookings, err := r.store.Query(ctx, remote.TableBookings, remote.Filter{FieldBookingID: bookingID})
	if err != nil {
		return nil, fmt.Errorf("fetch booking %s: %w", bookingID, err)
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
	}
	if len(bookings) > 1 {
		r.log.Warn("duplicate booking rows, reconciling the first one",
			"booking_id", bookingID, "rows", len(bookings))
	}
	bk := bookings[0]

	totalAmount, err := bk.Float(FieldTotalAmount)
	if err != nil {
		return nil, fmt.Errorf("booking %s total: %w", bookingID, err)
	}

	status := Classify(totalPaid, totalAmount)

	_, err = r.store.Update(ctx, remote.TableBookings, bk.ID(), remote.Fields{
		FieldPaidAmount:    totalPaid,
		FieldPaymentStatus: string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("write balance of %s: %w", bookingID, err)
	}

	r.log.Debug("booking reconciled",
		"booking_id", bookingID,
		"paid_amount", totalPaid,
		"total_amount", totalAmount,
		"payment_status", status,
		"payments", len(payments),
	)

	return &Balance{
		BookingID:     bookingID,
		TotalAmount:   totalAmount,
		PaidAmount:    totalPaid,
		PaymentStatus: status,
		Payments:      len(payments),
	}, nil
}
