package usecases

import (
	"commercebot/internal/entities"
	"time"

	"github.com/tidwall/gjson"
)

const (
	messagePath = "entry.0.changes.0.value.messages.0"
	contactPath = "entry.0.changes.0.value.contacts.0.profile.name"
)

// ExtractMessage normalizes a WhatsApp Cloud webhook envelope.
// It returns nil for anything that is not a user message, such as
// delivery status callbacks or malformed bodies.
func ExtractMessage(body []byte) *entities.InboundMessage {
	if !gjson.ValidBytes(body) {
		return nil
	}

	root := gjson.ParseBytes(body)
	m := root.Get(messagePath)
	if !m.IsObject() {
		return nil
	}

	msg := &entities.InboundMessage{
		SenderID:    m.Get("from").String(),
		MessageID:   m.Get("id").String(),
		RawType:     m.Get("type").String(),
		ProfileName: root.Get(contactPath).String(),
	}
	if msg.SenderID == "" || msg.MessageID == "" {
		return nil
	}
	if ts := m.Get("timestamp").Int(); ts > 0 {
		msg.SentAt = time.Unix(ts, 0).UTC()
	}

	switch msg.RawType {
	case "text":
		msg.Kind = entities.KindText
		msg.Text = m.Get("text.body").String()

	case "interactive":
		switch m.Get("interactive.type").String() {
		case "button_reply":
			msg.Kind = entities.KindButton
			msg.ReplyID = m.Get("interactive.button_reply.id").String()
			msg.Title = m.Get("interactive.button_reply.title").String()
		case "list_reply":
			msg.Kind = entities.KindList
			msg.ReplyID = m.Get("interactive.list_reply.id").String()
			msg.Title = m.Get("interactive.list_reply.title").String()
		default:
			msg.Kind = entities.KindOther
		}

	case "button":
		// Template quick reply
		msg.Kind = entities.KindButton
		msg.ReplyID = m.Get("button.payload").String()
		msg.Title = m.Get("button.text").String()

	default:
		msg.Kind = entities.KindOther
	}

	if (msg.Kind == entities.KindButton || msg.Kind == entities.KindList) && msg.ReplyID == "" {
		return nil
	}
	return msg
}
