package usecases

import (
	"commercebot/internal/entities"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelope wraps a single message object in the Cloud API webhook shape.
func envelope(message string) []byte {
	return []byte(fmt.Sprintf(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "WABA_ID",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "15550001111", "phone_number_id": "123"},
					"contacts": [{"profile": {"name": "Ayesha"}, "wa_id": "923001234561"}],
					"messages": [%s]
				}
			}]
		}]
	}`, message))
}

func textPayload(id, from, body string) []byte {
	return envelope(fmt.Sprintf(`{"from":%q,"id":%q,"timestamp":"1700000000","type":"text","text":{"body":%q}}`, from, id, body))
}

func buttonPayload(id, from, replyID, title string) []byte {
	return envelope(fmt.Sprintf(`{"from":%q,"id":%q,"timestamp":"1700000000","type":"interactive",
		"interactive":{"type":"button_reply","button_reply":{"id":%q,"title":%q}}}`, from, id, replyID, title))
}

func listPayload(id, from, replyID, title string) []byte {
	return envelope(fmt.Sprintf(`{"from":%q,"id":%q,"timestamp":"1700000000","type":"interactive",
		"interactive":{"type":"list_reply","list_reply":{"id":%q,"title":%q,"description":"x"}}}`, from, id, replyID, title))
}

func imagePayload(id, from string) []byte {
	return envelope(fmt.Sprintf(`{"from":%q,"id":%q,"timestamp":"1700000000","type":"image","image":{"id":"MEDIA"}}`, from, id))
}

const statusPayload = `{
	"object": "whatsapp_business_account",
	"entry": [{"id": "WABA_ID", "changes": [{"field": "messages", "value": {
		"messaging_product": "whatsapp",
		"statuses": [{"id": "wamid.OUT", "status": "delivered", "recipient_id": "923001234561"}]
	}}]}]
}`

func TestExtractMessage_Text(t *testing.T) {
	msg := ExtractMessage(textPayload("wamid.1", "923001234561", "Hello"))
	require.NotNil(t, msg)

	assert.Equal(t, entities.KindText, msg.Kind)
	assert.Equal(t, "923001234561", msg.SenderID)
	assert.Equal(t, "wamid.1", msg.MessageID)
	assert.Equal(t, "Hello", msg.Text)
	assert.Equal(t, "Ayesha", msg.ProfileName)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), msg.SentAt)
}

func TestExtractMessage_ButtonReply(t *testing.T) {
	msg := ExtractMessage(buttonPayload("wamid.2", "1", "BTN_FAQ", "FAQ"))
	require.NotNil(t, msg)
	assert.Equal(t, entities.KindButton, msg.Kind)
	assert.Equal(t, "BTN_FAQ", msg.ReplyID)
	assert.Equal(t, "FAQ", msg.Title)
}

func TestExtractMessage_ListReply(t *testing.T) {
	msg := ExtractMessage(listPayload("wamid.3", "1", "ITEM_BIRYANI", "Chicken Biryani"))
	require.NotNil(t, msg)
	assert.Equal(t, entities.KindList, msg.Kind)
	assert.Equal(t, "ITEM_BIRYANI", msg.ReplyID)
	assert.Equal(t, "Chicken Biryani", msg.Title)
}

func TestExtractMessage_TemplateQuickReply(t *testing.T) {
	msg := ExtractMessage(envelope(`{"from":"1","id":"wamid.4","type":"button","button":{"payload":"BTN_CATALOGUE","text":"Browse"}}`))
	require.NotNil(t, msg)
	assert.Equal(t, entities.KindButton, msg.Kind)
	assert.Equal(t, "BTN_CATALOGUE", msg.ReplyID)
	assert.Equal(t, "Browse", msg.Title)
}

func TestExtractMessage_UnsupportedTypeIsOther(t *testing.T) {
	msg := ExtractMessage(imagePayload("wamid.5", "1"))
	require.NotNil(t, msg)
	assert.Equal(t, entities.KindOther, msg.Kind)
	assert.Equal(t, "image", msg.RawType)
}

func TestExtractMessage_NonMessageEventsAreNil(t *testing.T) {
	cases := map[string]string{
		"status callback":  statusPayload,
		"empty object":     `{}`,
		"not json":         `not json`,
		"empty entry":      `{"entry":[]}`,
		"messages not obj": `{"entry":[{"changes":[{"value":{"messages":["x"]}}]}]}`,
		"missing id":       string(envelope(`{"from":"1","type":"text","text":{"body":"hi"}}`)),
		"missing sender":   string(envelope(`{"id":"wamid.6","type":"text","text":{"body":"hi"}}`)),
		"reply without id": string(envelope(`{"from":"1","id":"wamid.7","type":"interactive","interactive":{"type":"button_reply","button_reply":{}}}`)),
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, ExtractMessage([]byte(body)))
		})
	}
}
