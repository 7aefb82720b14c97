package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/interfaces"
	"commercebot/internal/metrics"
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

// Provider limits, in runes.
const (
	maxTextBody        = 4096
	maxInteractiveBody = 1024
	maxButtonTitle     = 20
	maxListButton      = 20
	maxRowTitle        = 24
	maxRowDescription  = 72
	maxSectionTitle    = 24
	maxListRows        = 10
	maxButtons         = 3
)

// OutboundGateway sends replies through the Messenger and audits every attempt.
// Failures are returned to the caller, never retried.
type OutboundGateway struct {
	messenger interfaces.Messenger
	audit     *MessageLogger
}

func NewOutboundGateway(messenger interfaces.Messenger, audit *MessageLogger) *OutboundGateway {
	return &OutboundGateway{messenger: messenger, audit: audit}
}

func (g *OutboundGateway) Send(ctx context.Context, to string, reply entities.Reply) error {
	reply = FitReply(reply)

	start := time.Now()
	var (
		providerID string
		err        error
	)
	switch reply.Kind {
	case entities.ReplyText:
		providerID, err = g.messenger.SendText(ctx, to, reply.Body)
	case entities.ReplyButtons:
		providerID, err = g.messenger.SendButtons(ctx, to, reply.Body, reply.Buttons)
	case entities.ReplyList:
		providerID, err = g.messenger.SendList(ctx, to, reply.Body, reply.ButtonLabel, reply.Sections)
	default:
		err = fmt.Errorf("unknown reply kind %q", reply.Kind)
	}
	metrics.OutboundLatency.Observe(time.Since(start).Seconds())

	status := "sent"
	if err != nil {
		status = "failed"
	}
	metrics.OutboundSends.WithLabelValues(string(reply.Kind), status).Inc()
	g.audit.LogOutbound(ctx, to, reply, providerID, err)

	return err
}

// FitReply clamps a reply to the provider limits.
func FitReply(r entities.Reply) entities.Reply {
	switch r.Kind {
	case entities.ReplyText:
		r.Body = truncateRunes(r.Body, maxTextBody)

	case entities.ReplyButtons:
		r.Body = truncateRunes(r.Body, maxInteractiveBody)
		if len(r.Buttons) > maxButtons {
			r.Buttons = r.Buttons[:maxButtons]
		}
		buttons := make([]entities.ReplyButton, len(r.Buttons))
		for i, b := range r.Buttons {
			buttons[i] = entities.ReplyButton{ID: b.ID, Title: truncateRunes(b.Title, maxButtonTitle)}
		}
		r.Buttons = buttons

	case entities.ReplyList:
		r.Body = truncateRunes(r.Body, maxInteractiveBody)
		r.ButtonLabel = truncateRunes(r.ButtonLabel, maxListButton)

		remaining := maxListRows
		sections := make([]entities.ListSection, 0, len(r.Sections))
		for _, s := range r.Sections {
			if remaining == 0 {
				break
			}
			rows := s.Rows
			if len(rows) > remaining {
				rows = rows[:remaining]
			}
			fitted := entities.ListSection{Title: truncateRunes(s.Title, maxSectionTitle), Rows: make([]entities.ListRow, len(rows))}
			for i, row := range rows {
				fitted.Rows[i] = entities.ListRow{
					ID:          row.ID,
					Title:       truncateRunes(row.Title, maxRowTitle),
					Description: truncateRunes(row.Description, maxRowDescription),
				}
			}
			remaining -= len(rows)
			sections = append(sections, fitted)
		}
		r.Sections = sections
	}
	return r
}

// truncateRunes cuts s to at most max runes, ending with an ellipsis when cut.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
