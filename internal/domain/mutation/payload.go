package mutation

import (
	"encoding/json"
	"fmt"
	"strings"

	"hostdesk/internal/domain/booking"
	"hostdesk/internal/domain/remote"
)

// Служебные поля очереди, которые никогда не уходят в удалённое хранилище
const (
	fieldLocalID    = "local_id"
	fieldEnqueuedAt = "enqueued_at"
	fieldSyncStatus = "sync_status"
)

// Payload - содержимое мутации: Reservation, Payment или FieldEdit.
type Payload interface {
	Kind() Kind
	Validate() error

	payload()
}

// Reservation создание или изменение бронирования.
// Пустой RecordID означает вставку новой записи.
type Reservation struct {
	RecordID      string         `json:"record_id,omitempty"`
	BookingID     string         `json:"booking_id"`
	PropertyID    string         `json:"property_id,omitempty"`
	GuestName     string         `json:"guest_name"`
	GuestPhone    string         `json:"guest_phone,omitempty"`
	CheckIn       string         `json:"check_in"`
	CheckOut      string         `json:"check_out"`
	TotalAmount   float64        `json:"total_amount"`
	OTAServiceFee float64        `json:"ota_service_fee,omitempty"`
	BookingSource string         `json:"booking_source,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// Payment новая запись в реестре платежей
type Payment struct {
	BookingID   string  `json:"booking_id"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Method      string  `json:"method"`
	Recipient   string  `json:"recipient,omitempty"`
}

// FieldEdit частичное обновление произвольной записи
type FieldEdit struct {
	TableName    string        `json:"table_name"`
	TargetID     string        `json:"target_id"`
	FieldUpdates remote.Fields `json:"field_updates"`
}

func (Reservation) Kind() Kind { return KindReservationUpsert }
func (Payment) Kind() Kind     { return KindPaymentCreate }
func (FieldEdit) Kind() Kind   { return KindFieldEdit }

func (Reservation) payload() {}
func (Payment) payload()     {}
func (FieldEdit) payload()   {}

func (r Reservation) Validate() error {
	if strings.TrimSpace(r.BookingID) == "" {
		return fmt.Errorf("%w: booking_id is required", ErrInvalidPayload)
	}
	if r.TotalAmount < 0 {
		return fmt.Errorf("%w: total_amount must not be negative", ErrInvalidPayload)
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.BookingID) == "" {
		return fmt.Errorf("%w: booking_id is required", ErrInvalidPayload)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, booking.ErrInvalidAmount)
	}
	return nil
}

func (e FieldEdit) Validate() error {
	switch {
	case strings.TrimSpace(e.TableName) == "":
		return fmt.Errorf("%w: table is required", ErrInvalidPayload)
	case strings.TrimSpace(e.TargetID) == "":
		return fmt.Errorf("%w: target id is required", ErrInvalidPayload)
	case len(e.FieldUpdates) == 0:
		return fmt.Errorf("%w: no field updates", ErrInvalidPayload)
	}
	return nil
}

// Fields собирает поля бронирования для удалённого хранилища.
// Служебные поля очереди и идентификатор строки отбрасываются.
func (r Reservation) Fields() remote.Fields {
	fields := remote.Fields{}
	for k, v := range r.Extra {
		fields[k] = v
	}

	fields[booking.FieldBookingID] = r.BookingID
	fields[booking.FieldGuestName] = r.GuestName
	fields[booking.FieldCheckIn] = r.CheckIn
	fields[booking.FieldCheckOut] = r.CheckOut
	fields[booking.FieldTotalAmount] = r.TotalAmount
	fields[booking.FieldOTAServiceFee] = r.OTAServiceFee

	optional := map[string]string{
		booking.FieldPropertyID:    r.PropertyID,
		booking.FieldGuestPhone:    r.GuestPhone,
		booking.FieldBookingSource: r.BookingSource,
		booking.FieldNotes:         r.Notes,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}

	// производные поля пишет только сверка баланса
	delete(fields, booking.FieldPaidAmount)
	delete(fields, booking.FieldPaymentStatus)

	stripBookkeeping(fields)
	return fields
}

func (p Payment) Fields() remote.Fields {
	fields := remote.Fields{
		booking.FieldBookingID:   p.BookingID,
		booking.FieldAmount:      p.Amount,
		booking.FieldPaymentDate: p.PaymentDate,
		booking.FieldMethod:      p.Method,
	}
	if p.Recipient != "" {
		fields[booking.FieldRecipient] = p.Recipient
	}
	return fields
}

func (e FieldEdit) Fields() remote.Fields {
	fields := make(remote.Fields, len(e.FieldUpdates))
	for k, v := range e.FieldUpdates {
		fields[k] = v
	}
	stripBookkeeping(fields)
	return fields
}

func stripBookkeeping(fields remote.Fields) {
	delete(fields, fieldLocalID)
	delete(fields, fieldEnqueuedAt)
	delete(fields, fieldSyncStatus)
	delete(fields, remote.FieldID)
}

// Encode сериализует содержимое мутации для хранения в очереди
func Encode(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrInvalidPayload)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// Decode восстанавливает содержимое мутации по её виду
func Decode(kind Kind, data []byte) (Payload, error) {
	switch kind {
	case KindReservationUpsert:
		var r Reservation
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return r, nil
	case KindPaymentCreate:
		var p Payment
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return p, nil
	case KindFieldEdit:
		var e FieldEdit
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
