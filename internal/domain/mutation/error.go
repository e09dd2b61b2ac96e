package mutation

import "errors"

var (
	ErrUnknownKind    = errors.New("unknown mutation kind")
	ErrInvalidPayload = errors.New("invalid mutation payload")
	ErrKindMismatch   = errors.New("payload does not match mutation kind")
)
