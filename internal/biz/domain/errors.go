package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("answer is not one of the allowed values")
	ErrNoActiveSession = errors.New("no survey in progress")
	ErrUnknownKind     = errors.New("unknown survey kind")
	ErrCatalog         = errors.New("invalid survey catalog")
)

// PersistenceError is returned when a completed entry could not be written
// to the durable store. The session is cleared regardless.
type PersistenceError struct {
	ChatID string
	Kind   SurveyKind
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s entry for chat %s: %v", e.Kind, e.ChatID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// MirrorError is a failed spreadsheet append. It is logged, never propagated to users.
type MirrorError struct {
	EntryID int64
	Err     error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("mirror entry %d: %v", e.EntryID, e.Err)
}

func (e *MirrorError) Unwrap() error { return e.Err }

// DeliveryError is a failed outbound send to one recipient
type DeliveryError struct {
	ChatID string
	Kind   OutboundKind
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s to chat %s: %v", e.Kind, e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
