package entities

import "time"

// MessageKind classifies a normalized inbound message.
type MessageKind string

const (
	KindText   MessageKind = "text"
	KindButton MessageKind = "button"
	KindList   MessageKind = "list"
	KindOther  MessageKind = "other"
)

// InboundMessage is the normalized form of one webhook message.
// Produced once per webhook call and never mutated afterwards.
type InboundMessage struct {
	SenderID    string
	MessageID   string
	Kind        MessageKind
	Text        string // kind=text
	ReplyID     string // kind=button|list
	Title       string // kind=button|list
	ProfileName string
	RawType     string // provider message type, e.g. "image" for kind=other
	SentAt      time.Time
}

// Preview returns the human readable content of the message for logs.
func (m InboundMessage) Preview() string {
	switch m.Kind {
	case KindText:
		return m.Text
	case KindButton, KindList:
		return m.ReplyID + " " + m.Title
	default:
		return "<" + m.RawType + ">"
	}
}

type ReplyKind string

const (
	ReplyText    ReplyKind = "text"
	ReplyButtons ReplyKind = "buttons"
	ReplyList    ReplyKind = "list"
)

type ReplyButton struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

// Reply is one outbound instruction produced by the bot flow.
// Kind selects which of the remaining fields are meaningful.
type Reply struct {
	Kind        ReplyKind
	Body        string
	Buttons     []ReplyButton // ReplyButtons, at most 3
	ButtonLabel string        // ReplyList
	Sections    []ListSection // ReplyList
}

func TextReply(body string) Reply {
	return Reply{Kind: ReplyText, Body: body}
}

func ButtonsReply(body string, buttons ...ReplyButton) Reply {
	return Reply{Kind: ReplyButtons, Body: body, Buttons: buttons}
}

func ListReply(body, buttonLabel string, sections ...ListSection) Reply {
	return Reply{Kind: ReplyList, Body: body, ButtonLabel: buttonLabel, Sections: sections}
}
