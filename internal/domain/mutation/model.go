// Package mutation описывает локальные мутации, ожидающие применения
// к удалённому хранилищу.
package mutation

import (
	"time"
)

// Kind вид мутации; каждому виду соответствует своя очередь и свой адаптер
type Kind string

const (
	KindReservationUpsert Kind = "reservation_upsert"
	KindPaymentCreate     Kind = "payment_create"
	KindFieldEdit         Kind = "field_edit"
)

// Kinds возвращает все известные виды мутаций
func Kinds() []Kind {
	return []Kind{KindReservationUpsert, KindPaymentCreate, KindFieldEdit}
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) Valid() bool {
	switch k {
	case KindReservationUpsert, KindPaymentCreate, KindFieldEdit:
		return true
	}
	return false
}

// SyncStatus состояние элемента очереди
type SyncStatus string

const (
	StatusPending SyncStatus = "pending"
	// StatusSynced присваивается только в момент удаления, на диске не хранится.
	StatusSynced SyncStatus = "synced"
	// StatusFailed - элемент исключён из синхронизации после серии отказов.
	StatusFailed SyncStatus = "failed"
)

// QueuedMutation - элемент локальной очереди
type QueuedMutation struct {
	LocalID    string     `json:"local_id"`
	Kind       Kind       `json:"kind"`
	Payload    Payload    `json:"-"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	SyncStatus SyncStatus `json:"sync_status"`
	Attempts   int        `json:"attempts"`
	LastError  string     `json:"last_error,omitempty"`
}
