package remote

import (
	"errors"
	"fmt"
)

var (
	ErrUnreachable = errors.New("remote store unreachable")
	ErrRejected    = errors.New("remote store rejected the write")
)

// TransportError - хранилище недоступно; операцию можно повторить позже.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrUnreachable, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrUnreachable
}

// RejectionError - хранилище ответило и отказалось выполнить запись
// (валидация, конфликт).
type RejectionError struct {
	Op     string
	Status int
	Reason string
}

func (e *RejectionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %v (status %d): %s", e.Op, ErrRejected, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrRejected, e.Reason)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// IsTransport сообщает, что ошибка вызвана недоступностью хранилища
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRejection сообщает, что хранилище отклонило запись
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}
