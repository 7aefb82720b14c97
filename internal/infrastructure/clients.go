package infrastructure

import (
	"commercebot/internal/entities"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// WhatsAppBusinessClient sends messages through the WhatsApp Cloud API.
type WhatsAppBusinessClient struct {
	http        *resty.Client
	messagesURL string
}

func NewWhatsAppBusinessClient(messagesURL, accessToken string, timeout time.Duration) *WhatsAppBusinessClient {
	client := resty.New().
		SetAuthToken(accessToken).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &WhatsAppBusinessClient{
		http:        client,
		messagesURL: messagesURL,
	}
}

func (w *WhatsAppBusinessClient) SendText(ctx context.Context, to, body string) (string, error) {
	return w.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text": map[string]interface{}{
			"preview_url": false,
			"body":        body,
		},
	})
}

func (w *WhatsAppBusinessClient) SendButtons(ctx context.Context, to, body string, buttons []entities.ReplyButton) (string, error) {
	replies := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, map[string]interface{}{
			"type":  "reply",
			"reply": map[string]string{"id": b.ID, "title": b.Title},
		})
	}

	return w.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]interface{}{"buttons": replies},
		},
	})
}

func (w *WhatsAppBusinessClient) SendList(ctx context.Context, to, body, buttonLabel string, sections []entities.ListSection) (string, error) {
	return w.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type": "list",
			"body": map[string]string{"text": body},
			"action": map[string]interface{}{
				"button":   buttonLabel,
				"sections": sections,
			},
		},
	})
}

// post returns messages[0].id from the send response.
func (w *WhatsAppBusinessClient) post(ctx context.Context, payload map[string]interface{}) (string, error) {
	resp, err := w.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(w.messagesURL)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	if resp.IsError() {
		return "", &entities.TransportError{Status: resp.StatusCode(), Body: resp.String()}
	}

	return gjson.GetBytes(resp.Body(), "messages.0.id").String(), nil
}
