package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/interfaces"
	"context"
)

// DashboardUsecase backs the admin API. Blocking a sender only flips the
// flag the webhook pipeline reads.
type DashboardUsecase struct {
	store interfaces.Store
}

type Stats struct {
	Inbound  int `json:"inbound_messages"`
	Outbound int `json:"outbound_messages"`
}

func NewDashboardUsecase(store interfaces.Store) *DashboardUsecase {
	return &DashboardUsecase{store: store}
}

// Sender management
func (u *DashboardUsecase) BlockSender(ctx context.Context, senderID string) error {
	return u.store.SetBlocked(ctx, senderID, true)
}

func (u *DashboardUsecase) UnblockSender(ctx context.Context, senderID string) error {
	return u.store.SetBlocked(ctx, senderID, false)
}

func (u *DashboardUsecase) ListUsers(ctx context.Context, limit int) ([]entities.User, error) {
	return u.store.ListUsers(ctx, limit)
}

func (u *DashboardUsecase) ListLeads(ctx context.Context, limit int) ([]entities.Lead, error) {
	return u.store.ListLeads(ctx, limit)
}

func (u *DashboardUsecase) ListOrders(ctx context.Context, limit int) ([]entities.Order, error) {
	return u.store.ListOrders(ctx, limit)
}

// Config Management
func (u *DashboardUsecase) GetConfig(ctx context.Context, key string) (string, error) {
	return u.store.GetConfig(ctx, key)
}

func (u *DashboardUsecase) SetConfig(ctx context.Context, key, value string) error {
	return u.store.SetConfig(ctx, key, value)
}

func (u *DashboardUsecase) Stats(ctx context.Context) (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Inbound, err = u.store.CountMessageLogs(ctx, entities.DirectionInbound); err != nil {
		return s, err
	}
	s.Outbound, err = u.store.CountMessageLogs(ctx, entities.DirectionOutbound)
	return s, err
}
