package infrastructure

import (
	"commercebot/internal/entities"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type capturedRequest struct {
	auth string
	body []byte
}

func newGraphServer(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestWhatsAppBusinessClient_SendText(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{"messaging_product":"whatsapp","messages":[{"id":"wamid.OUT1"}]}`)
	client := NewWhatsAppBusinessClient(srv.URL+"/v21.0/123/messages", "token-1", 5*time.Second)

	id, err := client.SendText(context.Background(), "923001234561", "hello")
	require.NoError(t, err)
	assert.Equal(t, "wamid.OUT1", id)

	assert.Equal(t, "Bearer token-1", captured.auth)
	body := gjson.ParseBytes(captured.body)
	assert.Equal(t, "whatsapp", body.Get("messaging_product").String())
	assert.Equal(t, "923001234561", body.Get("to").String())
	assert.Equal(t, "text", body.Get("type").String())
	assert.Equal(t, "hello", body.Get("text.body").String())
}

func TestWhatsAppBusinessClient_SendButtons(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{"messages":[{"id":"wamid.OUT2"}]}`)
	client := NewWhatsAppBusinessClient(srv.URL, "t", 5*time.Second)

	_, err := client.SendButtons(context.Background(), "1", "Pick one", []entities.ReplyButton{
		{ID: "BTN_CATALOGUE", Title: "Catalogue"},
		{ID: "BTN_FAQ", Title: "FAQ"},
	})
	require.NoError(t, err)

	body := gjson.ParseBytes(captured.body)
	assert.Equal(t, "interactive", body.Get("type").String())
	assert.Equal(t, "button", body.Get("interactive.type").String())
	assert.Equal(t, "Pick one", body.Get("interactive.body.text").String())
	assert.Equal(t, int64(2), body.Get("interactive.action.buttons.#").Int())
	assert.Equal(t, "BTN_FAQ", body.Get("interactive.action.buttons.1.reply.id").String())
	assert.Equal(t, "reply", body.Get("interactive.action.buttons.0.type").String())
}

func TestWhatsAppBusinessClient_SendList(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{"messages":[{"id":"wamid.OUT3"}]}`)
	client := NewWhatsAppBusinessClient(srv.URL, "t", 5*time.Second)

	_, err := client.SendList(context.Background(), "1", "Menu", "View items", []entities.ListSection{
		{Title: "Meals", Rows: []entities.ListRow{{ID: "ITEM_1", Title: "Biryani", Description: "PKR 650"}}},
	})
	require.NoError(t, err)

	body := gjson.ParseBytes(captured.body)
	assert.Equal(t, "list", body.Get("interactive.type").String())
	assert.Equal(t, "View items", body.Get("interactive.action.button").String())
	assert.Equal(t, "ITEM_1", body.Get("interactive.action.sections.0.rows.0.id").String())
	assert.Equal(t, "PKR 650", body.Get("interactive.action.sections.0.rows.0.description").String())
}

func TestWhatsAppBusinessClient_TransportError(t *testing.T) {
	srv, _ := newGraphServer(t, http.StatusBadRequest, `{"error":{"message":"Invalid parameter"}}`)
	client := NewWhatsAppBusinessClient(srv.URL, "t", 5*time.Second)

	_, err := client.SendText(context.Background(), "1", "hi")
	require.Error(t, err)

	var terr *entities.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusBadRequest, terr.Status)
	assert.Contains(t, terr.Body, "Invalid parameter")
}
