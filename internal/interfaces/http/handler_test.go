package http

import (
	"bytes"
	"commercebot/internal/entities"
	"commercebot/internal/infrastructure"
	"commercebot/internal/repository"
	"commercebot/internal/usecases"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	appSecret   = "app-secret"
	verifyToken = "verify-me"
	jwtSecret   = "jwt-secret"
	testSender  = "923001234561"
)

type recordingMessenger struct {
	mu     sync.Mutex
	sends  []string
	panics bool
}

func (m *recordingMessenger) add(body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panics {
		panic("send exploded")
	}
	m.sends = append(m.sends, body)
	return fmt.Sprintf("wamid.OUT%d", len(m.sends)), nil
}

func (m *recordingMessenger) SendText(_ context.Context, _, body string) (string, error) {
	return m.add(body)
}

func (m *recordingMessenger) SendButtons(_ context.Context, _, body string, _ []entities.ReplyButton) (string, error) {
	return m.add(body)
}

func (m *recordingMessenger) SendList(_ context.Context, _, body, _ string, _ []entities.ListSection) (string, error) {
	return m.add(body)
}

func (m *recordingMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}

type testServer struct {
	router    *gin.Engine
	store     *repository.SQLiteStore
	messenger *recordingMessenger
	verifier  *usecases.SignatureVerifier
}

func newTestServer(t *testing.T, displayPhone string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()

	client, err := infrastructure.NewSQLiteClient(context.Background(), filepath.Join(t.TempDir(), "bot.db"), logger)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	store := repository.NewSQLiteStore(client.DB)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	messenger := &recordingMessenger{}
	verifier := usecases.NewSignatureVerifier(appSecret, logger)
	audit := usecases.NewMessageLogger(store, logger)
	webhook := usecases.NewWebhookService(
		verifier,
		usecases.NewDeduplicator(store),
		usecases.NewRateLimiter(store, time.Minute, 30, logger),
		store,
		usecases.NewBotFlow(store, usecases.BotFlowConfig{LeadSource: "whatsapp_demo", HistoryLimit: 5}, logger),
		usecases.NewOutboundGateway(messenger, audit),
		audit,
		logger,
	)

	r := gin.New()
	r.Use(gin.Recovery())
	SetupRoutes(r, Dependencies{
		Webhook:      webhook,
		Auth:         usecases.NewAuthUsecase("admin", string(hash), jwtSecret),
		Dashboard:    usecases.NewDashboardUsecase(store),
		Middleware:   NewMiddleware(jwtSecret),
		Pingers:      []Pinger{store},
		VerifyToken:  verifyToken,
		DisplayPhone: displayPhone,
		Logger:       logger,
	})

	return &testServer{router: r, store: store, messenger: messenger, verifier: verifier}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func textWebhook(id, from, body string) []byte {
	return []byte(fmt.Sprintf(`{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
		"messaging_product":"whatsapp",
		"contacts":[{"profile":{"name":"Bilal"},"wa_id":%q}],
		"messages":[{"from":%q,"id":%q,"timestamp":"1700000000","type":"text","text":{"body":%q}}]}}]}]}`,
		from, from, id, body))
}

func (s *testServer) postWebhook(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}
	return s.do(req)
}

func (s *testServer) signed(body []byte) *httptest.ResponseRecorder {
	return s.postWebhook(body, "sha256="+s.verifier.Sign(body))
}

func webhookStatus(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["status"]
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"admin","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func (s *testServer) admin(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(req)
}

func TestVerifyWebhook(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=12345", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleWebhook_Statuses(t *testing.T) {
	s := newTestServer(t, "")
	body := textWebhook("wamid.1", testSender, "hi")

	w := s.postWebhook(body, "sha256=0000")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.postWebhook(body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.signed(body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "processed", webhookStatus(t, w))
	assert.Equal(t, 1, s.messenger.count())

	w = s.signed(body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", webhookStatus(t, w))
	assert.Equal(t, 1, s.messenger.count())

	status := []byte(`{"entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.OUT1","status":"read"}]}}]}]}`)
	w = s.signed(status)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", webhookStatus(t, w))

	garbage := []byte(`{not json`)
	w = s.signed(garbage)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", webhookStatus(t, w))
}

func TestHandleWebhook_PanicIsAcknowledged(t *testing.T) {
	s := newTestServer(t, "")
	s.messenger.panics = true

	w := s.signed(textWebhook("wamid.1", testSender, "hi"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", webhookStatus(t, w))

	s.messenger.panics = false
	w = s.signed(textWebhook("wamid.1", testSender, "hi"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", webhookStatus(t, w))
}

func TestAdmin_BlockSilencesSender(t *testing.T) {
	s := newTestServer(t, "")
	token := s.login(t)

	w := s.admin(http.MethodPut, "/api/admin/senders/"+testSender+"/block", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.signed(textWebhook("wamid.1", testSender, "hi"))

	w = s.admin(http.MethodPut, "/api/admin/senders/"+testSender+"/block", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	before := s.messenger.count()
	w = s.signed(textWebhook("wamid.2", testSender, "hi"))
	assert.Equal(t, "blocked", webhookStatus(t, w))
	assert.Equal(t, before, s.messenger.count())

	w = s.admin(http.MethodDelete, "/api/admin/senders/"+testSender+"/block", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.signed(textWebhook("wamid.3", testSender, "hi"))
	assert.Equal(t, "processed", webhookStatus(t, w))

	w = s.admin(http.MethodPut, "/api/admin/senders/not-a-number/block", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_ListsAndStats(t *testing.T) {
	s := newTestServer(t, "")
	token := s.login(t)

	s.signed(textWebhook("wamid.1", testSender, "contact"))

	w := s.admin(http.MethodGet, "/api/admin/users", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var users []entities.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "Bilal", users[0].ProfileName)

	w = s.admin(http.MethodGet, "/api/admin/leads?limit=5", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var leads []entities.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "whatsapp_demo", leads[0].Source)

	w = s.admin(http.MethodGet, "/api/admin/orders", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.admin(http.MethodGet, "/api/admin/stats", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"inbound_messages":1,"outbound_messages":2}`, w.Body.String())
}

func TestAdmin_WelcomeMessageConfig(t *testing.T) {
	s := newTestServer(t, "")
	token := s.login(t)

	w := s.admin(http.MethodPut, "/api/admin/config/welcome_message", token, `{"value":"Salam! Welcome to our shop"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.admin(http.MethodGet, "/api/admin/config/welcome_message", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"welcome_message","value":"Salam! Welcome to our shop"}`, w.Body.String())

	s.signed(textWebhook("wamid.1", testSender, "hi"))
	s.messenger.mu.Lock()
	defer s.messenger.mu.Unlock()
	require.Len(t, s.messenger.sends, 1)
	assert.Equal(t, "Salam! Welcome to our shop", s.messenger.sends[0])

	w = s.admin(http.MethodPut, "/api/admin/config/bad-key!", token, `{"value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tooLong := strings.Repeat("a", MaxWelcomeLength+1)
	w = s.admin(http.MethodPut, "/api/admin/config/welcome_message", token, `{"value":"`+tooLong+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.admin(http.MethodPut, "/api/admin/config/footer_note", token, `{"value":"`+tooLong+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.admin(http.MethodGet, "/api/admin/config/welcome_message", token, "")
	assert.JSONEq(t, `{"key":"welcome_message","value":"Salam! Welcome to our shop"}`, w.Body.String())
}

func TestAdmin_RequiresToken(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.admin(http.MethodGet, "/api/admin/users", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"admin","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w = s.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthMetricsAndQR(t *testing.T) {
	s := newTestServer(t, "+92 300 1234567")

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "commercebot_http_request_duration_seconds")

	w = s.do(httptest.NewRequest(http.MethodGet, "/qr?text=hi", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	noPhone := newTestServer(t, "")
	w = noPhone.do(httptest.NewRequest(http.MethodGet, "/qr", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidSenderID("923001234561"))
	assert.False(t, ValidSenderID("+923001234561"))
	assert.False(t, ValidSenderID("12"))
	assert.True(t, ValidConfigKey("welcome_message"))
	assert.False(t, ValidConfigKey("welcome message"))
	assert.Equal(t, "héll", TruncateString("héllo", 4))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
}
