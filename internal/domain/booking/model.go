package booking

// PaymentStatus производный статус оплаты бронирования
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Имена полей бронирования и платежа в удалённом хранилище
const (
	FieldBookingID     = "booking_id"
	FieldPropertyID    = "property_id"
	FieldGuestName     = "guest_name"
	FieldGuestPhone    = "guest_phone"
	FieldCheckIn       = "check_in"
	FieldCheckOut      = "check_out"
	FieldTotalAmount   = "total_amount"
	FieldPaidAmount    = "paid_amount"
	FieldPaymentStatus = "payment_status"
	FieldOTAServiceFee = "ota_service_fee"
	FieldBookingSource = "booking_source"
	FieldNotes         = "notes"

	FieldAmount      = "amount"
	FieldPaymentDate = "payment_date"
	FieldMethod      = "method"
	FieldRecipient   = "recipient"
)

// Balance материализованный остаток бронирования, пересчитанный по реестру платежей
type Balance struct {
	BookingID     string        `json:"booking_id"`
	TotalAmount   float64       `json:"total_amount"`
	PaidAmount    float64       `json:"paid_amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Payments      int           `json:"payments"`
}
