package entities

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotFound         = errors.New("not found")
)

// TransportError is returned when the messaging provider rejects a send.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send api returned %d: %s", e.Status, e.Body)
}
