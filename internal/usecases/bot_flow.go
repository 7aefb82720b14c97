package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/interfaces"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Flow is one reply-producing handler of the bot.
type Flow int

const (
	FlowHome Flow = iota
	FlowFAQ
	FlowCatalogue
	FlowBooking
	FlowLeadCapture
	FlowMore
	FlowHistory
	FlowOrder
	FlowUnsupported
)

func (f Flow) String() string {
	switch f {
	case FlowHome:
		return "home"
	case FlowFAQ:
		return "faq"
	case FlowCatalogue:
		return "catalogue"
	case FlowBooking:
		return "booking"
	case FlowLeadCapture:
		return "lead_capture"
	case FlowMore:
		return "more"
	case FlowHistory:
		return "history"
	case FlowOrder:
		return "order"
	case FlowUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("flow(%d)", int(f))
}

// Button ids sent in interactive replies.
const (
	ButtonHome      = "BTN_HOME"
	ButtonCatalogue = "BTN_CATALOGUE"
	ButtonFAQ       = "BTN_FAQ"
	ButtonMore      = "BTN_MORE"
	ButtonBooking   = "BTN_BOOKING"
	ButtonContact   = "BTN_CONTACT"
	ButtonHistory   = "BTN_HISTORY"
)

var textVocabulary = map[string]Flow{
	"hi": FlowHome, "hello": FlowHome, "hey": FlowHome, "salam": FlowHome,
	"assalamualaikum": FlowHome, "menu": FlowHome, "start": FlowHome, "home": FlowHome,

	"faq":  FlowFAQ,
	"help": FlowFAQ,

	"catalogue": FlowCatalogue,
	"catalog":   FlowCatalogue,
	"products":  FlowCatalogue,
	"order":     FlowCatalogue,

	"book":        FlowBooking,
	"booking":     FlowBooking,
	"appointment": FlowBooking,

	"lead":     FlowLeadCapture,
	"contact":  FlowLeadCapture,
	"interest": FlowLeadCapture,
	"demo":     FlowLeadCapture,

	"more": FlowMore,

	"history": FlowHistory,
	"orders":  FlowHistory,
}

var buttonFlows = map[string]Flow{
	ButtonHome:      FlowHome,
	ButtonCatalogue: FlowCatalogue,
	ButtonFAQ:       FlowFAQ,
	ButtonMore:      FlowMore,
	ButtonBooking:   FlowBooking,
	ButtonContact:   FlowLeadCapture,
	ButtonHistory:   FlowHistory,
}

// NormalizeText lowercases and trims the text for vocabulary lookup.
func NormalizeText(s string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(s)), " !.?/")
}

// Route picks the flow for a message. Unknown input always lands on Home.
func Route(msg *entities.InboundMessage) Flow {
	switch msg.Kind {
	case entities.KindText:
		if f, ok := textVocabulary[NormalizeText(msg.Text)]; ok {
			return f
		}
		return FlowHome
	case entities.KindButton:
		if f, ok := buttonFlows[msg.ReplyID]; ok {
			return f
		}
		return FlowHome
	case entities.KindList:
		return FlowOrder
	default:
		return FlowUnsupported
	}
}

// BotFlow turns an inbound message into the replies to send. It keeps no
// per-sender state; everything it reads comes from the stores.
type BotFlow struct {
	catalogue    interfaces.CatalogueStore
	leads        interfaces.LeadStore
	orders       interfaces.OrderStore
	config       interfaces.BotConfigStore
	leadSource   string
	historyLimit int
	logger       zerolog.Logger
}

type BotFlowConfig struct {
	LeadSource   string
	HistoryLimit int
}

func NewBotFlow(store interfaces.Store, cfg BotFlowConfig, logger zerolog.Logger) *BotFlow {
	return &BotFlow{
		catalogue:    store,
		leads:        store,
		orders:       store,
		config:       store,
		leadSource:   cfg.LeadSource,
		historyLimit: cfg.HistoryLimit,
		logger:       logger,
	}
}

// Dispatch routes the message and runs the selected flow.
func (b *BotFlow) Dispatch(ctx context.Context, msg *entities.InboundMessage, now time.Time) (Flow, []entities.Reply, error) {
	flow := Route(msg)

	var (
		replies []entities.Reply
		err     error
	)
	switch flow {
	case FlowHome:
		replies = []entities.Reply{b.home(ctx)}
	case FlowFAQ:
		replies = []entities.Reply{entities.TextReply(faqText), b.home(ctx)}
	case FlowCatalogue:
		replies, err = b.showCatalogue(ctx)
	case FlowBooking:
		replies = []entities.Reply{entities.TextReply(bookingText), b.home(ctx)}
	case FlowLeadCapture:
		replies, err = b.captureLead(ctx, msg, now)
	case FlowMore:
		replies = []entities.Reply{moreMenu()}
	case FlowHistory:
		replies, err = b.history(ctx, msg.SenderID)
	case FlowOrder:
		replies, err = b.placeOrder(ctx, msg, now)
	case FlowUnsupported:
		replies = []entities.Reply{entities.TextReply(unsupportedText), b.home(ctx)}
	default:
		err = fmt.Errorf("no handler for %s", flow)
	}

	if err != nil {
		return flow, nil, fmt.Errorf("%s flow: %w", flow, err)
	}
	return flow, replies, nil
}

func (b *BotFlow) home(ctx context.Context) entities.Reply {
	body := defaultWelcomeText
	welcome, err := b.config.GetConfig(ctx, WelcomeMessageKey)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to read welcome message, using default")
	} else if welcome != "" {
		body = welcome
	}
	return homeMenu(body)
}

// items returns the live catalogue, or the demo catalogue when it is empty.
func (b *BotFlow) items(ctx context.Context) ([]entities.CatalogueItem, error) {
	items, err := b.catalogue.ListCatalogue(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalogue: %w", err)
	}
	if len(items) == 0 {
		return DemoCatalogue(), nil
	}
	return items, nil
}

func (b *BotFlow) showCatalogue(ctx context.Context) ([]entities.Reply, error) {
	items, err := b.items(ctx)
	if err != nil {
		return nil, err
	}
	return []entities.Reply{catalogueList(items)}, nil
}

func (b *BotFlow) captureLead(ctx context.Context, msg *entities.InboundMessage, now time.Time) ([]entities.Reply, error) {
	lead, err := b.leads.UpsertLead(ctx, entities.Lead{
		SenderID:        msg.SenderID,
		Name:            msg.ProfileName,
		Source:          b.leadSource,
		Status:          entities.LeadStatusNew,
		LastInteraction: now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert lead: %w", err)
	}

	text := leadReturningText
	if lead.IsNew() {
		text = leadNewText
	}
	return []entities.Reply{entities.TextReply(text), b.home(ctx)}, nil
}

func (b *BotFlow) history(ctx context.Context, senderID string) ([]entities.Reply, error) {
	orders, err := b.orders.ListOrdersBySender(ctx, senderID, b.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return []entities.Reply{entities.TextReply(historyText(orders)), b.home(ctx)}, nil
}

func (b *BotFlow) placeOrder(ctx context.Context, msg *entities.InboundMessage, now time.Time) ([]entities.Reply, error) {
	items, err := b.items(ctx)
	if err != nil {
		return nil, err
	}

	var picked *entities.CatalogueItem
	for i := range items {
		if items[i].ID == msg.ReplyID {
			picked = &items[i]
			break
		}
	}
	if picked == nil {
		b.logger.Info().Str("sender", msg.SenderID).Str("item", msg.ReplyID).Msg("unknown catalogue item selected")
		return []entities.Reply{entities.TextReply(itemNotRecognizedText), catalogueList(items)}, nil
	}

	order := &entities.Order{
		ID:        ulid.Make().String(),
		SenderID:  msg.SenderID,
		MessageID: msg.MessageID,
		ItemID:    picked.ID,
		ItemName:  picked.Name,
		Price:     picked.Price,
		Currency:  picked.Currency,
		Status:    entities.OrderStatusPending,
		CreatedAt: now,
	}
	if err := b.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	b.logger.Info().Str("sender", msg.SenderID).Str("order_id", order.ID).Str("item", picked.ID).Msg("order created")
	return []entities.Reply{entities.TextReply(orderConfirmationText(order)), b.home(ctx)}, nil
}
