package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/infrastructure"
	"commercebot/internal/repository"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-app-secret"

func newTestStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	client, err := infrastructure.NewSQLiteClient(context.Background(), filepath.Join(t.TempDir(), "bot.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return repository.NewSQLiteStore(client.DB)
}

type sentMessage struct {
	To       string
	Kind     entities.ReplyKind
	Body     string
	Label    string
	Buttons  []entities.ReplyButton
	Sections []entities.ListSection
}

// fakeMessenger records sends. When failAt is n > 0 the n-th call fails;
// with panics set every call panics.
type fakeMessenger struct {
	mu     sync.Mutex
	calls  int
	failAt int
	panics bool
	sent   []sentMessage
}

func (f *fakeMessenger) record(m sentMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panics {
		panic("messenger exploded")
	}
	if f.failAt > 0 && f.calls == f.failAt {
		return "", &entities.TransportError{Status: 500, Body: `{"error":"boom"}`}
	}
	f.sent = append(f.sent, m)
	return fmt.Sprintf("wamid.OUT%d", f.calls), nil
}

func (f *fakeMessenger) SendText(_ context.Context, to, body string) (string, error) {
	return f.record(sentMessage{To: to, Kind: entities.ReplyText, Body: body})
}

func (f *fakeMessenger) SendButtons(_ context.Context, to, body string, buttons []entities.ReplyButton) (string, error) {
	return f.record(sentMessage{To: to, Kind: entities.ReplyButtons, Body: body, Buttons: buttons})
}

func (f *fakeMessenger) SendList(_ context.Context, to, body, label string, sections []entities.ListSection) (string, error) {
	return f.record(sentMessage{To: to, Kind: entities.ReplyList, Body: body, Label: label, Sections: sections})
}

func (f *fakeMessenger) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeMessenger) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.calls = 0
}

type harness struct {
	svc       *WebhookService
	store     *repository.SQLiteStore
	messenger *fakeMessenger
	verifier  *SignatureVerifier
	limiter   *RateLimiter
	now       time.Time
}

func newHarness(t *testing.T, rateMax int) *harness {
	t.Helper()
	logger := zerolog.Nop()
	store := newTestStore(t)
	messenger := &fakeMessenger{}

	h := &harness{
		store:     store,
		messenger: messenger,
		verifier:  NewSignatureVerifier(testSecret, logger),
		limiter:   NewRateLimiter(store, time.Minute, rateMax, logger),
		now:       time.Date(2026, 3, 14, 10, 0, 5, 0, time.UTC),
	}
	audit := NewMessageLogger(store, logger)
	h.svc = NewWebhookService(
		h.verifier,
		NewDeduplicator(store),
		h.limiter,
		store,
		NewBotFlow(store, BotFlowConfig{LeadSource: "whatsapp_demo", HistoryLimit: 5}, logger),
		NewOutboundGateway(messenger, audit),
		audit,
		logger,
	)
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *harness) deliver(t *testing.T, body []byte) WebhookResult {
	t.Helper()
	res, err := h.svc.HandleWebhook(context.Background(), body, "sha256="+h.verifier.Sign(body))
	require.NoError(t, err)
	return res
}
