package records

import "errors"

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidValue  = errors.New("invalid value")
	ErrInvalidID     = errors.New("invalid record id")
	ErrEmptyFields   = errors.New("no fields to write")
	ErrNotFound      = errors.New("record not found")

	ErrCreateInProgress = errors.New("create with this idempotency key is in progress")
)

// IsValidation сообщает, что запрос отклонён из-за данных клиента
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrEmptyFields)
}
