package entities

import (
	"fmt"
	"time"
)

type CatalogueItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       int64  `json:"price"` // whole currency units
	Currency    string `json:"currency"`
}

// PriceLabel renders the price with thousands separators, e.g. "PKR 1,250".
func (i CatalogueItem) PriceLabel() string {
	n := i.Price
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	s := fmt.Sprintf("%d", n)
	for p := len(s) - 3; p > 0; p -= 3 {
		s = s[:p] + "," + s[p:]
	}
	if i.Currency == "" {
		return sign + s
	}
	return i.Currency + " " + sign + s
}

const (
	OrderStatusPending = "pending"
	LeadStatusNew      = "new"
)

type Order struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	MessageID string    `json:"message_id"`
	ItemID    string    `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Price     int64     `json:"price"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Reference is the short code shown to the customer.
func (o Order) Reference() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[len(o.ID)-8:]
}

type Lead struct {
	SenderID        string    `json:"sender_id"`
	Name            string    `json:"name"`
	Source          string    `json:"source"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	LastInteraction time.Time `json:"last_interaction"`
}

// IsNew reports whether the lead was created by the upsert that returned it.
func (l Lead) IsNew() bool {
	return l.CreatedAt.Equal(l.LastInteraction)
}
