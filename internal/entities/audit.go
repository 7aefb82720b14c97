package entities

import "time"

// ProcessedMessage marks an inbound message id as handled.
type ProcessedMessage struct {
	MessageID   string
	SenderID    string
	Kind        MessageKind
	ProcessedAt time.Time
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// MessageLog is one append-only audit entry.
type MessageLog struct {
	Direction   Direction
	SenderID    string
	MessageID   string // provider id, inbound or returned by the send API
	MessageType string
	Body        string
	Status      string
	Error       string
	CreatedAt   time.Time
}
