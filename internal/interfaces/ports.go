package interfaces

import (
	"commercebot/internal/entities"
	"context"
	"time"
)

// Messenger is the provider send API.
// Implementations return the provider message id on success.
type Messenger interface {
	SendText(ctx context.Context, to, body string) (string, error)
	SendButtons(ctx context.Context, to, body string, buttons []entities.ReplyButton) (string, error)
	SendList(ctx context.Context, to, body, buttonLabel string, sections []entities.ListSection) (string, error)
}

type UserStore interface {
	// GetUser returns nil, nil when the sender has never been seen.
	GetUser(ctx context.Context, senderID string) (*entities.User, error)
	UpsertUser(ctx context.Context, senderID, profileName string, at time.Time) (*entities.User, error)
	SetBlocked(ctx context.Context, senderID string, blocked bool) error
	ListUsers(ctx context.Context, limit int) ([]entities.User, error)
}

type ProcessedMessageStore interface {
	// ClaimMessage inserts the record if its message id is absent and
	// reports whether this call inserted it.
	ClaimMessage(ctx context.Context, rec entities.ProcessedMessage) (bool, error)
	IsProcessed(ctx context.Context, messageID string) (bool, error)
	PruneProcessed(ctx context.Context, before time.Time) (int64, error)
}

type RateWindowStore interface {
	// IncrementWindow bumps the counter for (senderID, windowStart) unless it
	// already reached max. It returns the counter value and whether it was bumped.
	IncrementWindow(ctx context.Context, senderID string, windowStart time.Time, max int) (int, bool, error)
	PruneWindows(ctx context.Context, before time.Time) (int64, error)
}

type CatalogueStore interface {
	ListCatalogue(ctx context.Context) ([]entities.CatalogueItem, error)
	UpsertCatalogueItem(ctx context.Context, item entities.CatalogueItem) error
}

type LeadStore interface {
	UpsertLead(ctx context.Context, lead entities.Lead) (*entities.Lead, error)
	ListLeads(ctx context.Context, limit int) ([]entities.Lead, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *entities.Order) error
	// ListOrdersBySender returns newest orders first.
	ListOrdersBySender(ctx context.Context, senderID string, limit int) ([]entities.Order, error)
	ListOrders(ctx context.Context, limit int) ([]entities.Order, error)
}

type MessageLogStore interface {
	AppendMessageLog(ctx context.Context, entry entities.MessageLog) error
	CountMessageLogs(ctx context.Context, direction entities.Direction) (int, error)
}

type BotConfigStore interface {
	// GetConfig returns "" when the key is unset.
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// Store is everything the service persists. Both the Postgres repositories
// and the SQLite store satisfy it.
type Store interface {
	UserStore
	ProcessedMessageStore
	RateWindowStore
	CatalogueStore
	LeadStore
	OrderStore
	MessageLogStore
	BotConfigStore
	Ping(ctx context.Context) error
	Close()
}
