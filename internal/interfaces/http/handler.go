package http

import (
	"commercebot/internal/entities"
	"commercebot/internal/usecases"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

// Pinger is anything /health should check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	webhook      *usecases.WebhookService
	verifyToken  string
	displayPhone string
	pingers      []Pinger
	logger       zerolog.Logger
}

type Dependencies struct {
	Webhook      *usecases.WebhookService
	Auth         *usecases.AuthUsecase
	Dashboard    *usecases.DashboardUsecase
	Middleware   *Middleware
	Pingers      []Pinger
	VerifyToken  string
	DisplayPhone string
	Logger       zerolog.Logger
}

const maxWebhookBody = 1 << 20 // 1MB

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	h := &Handler{
		webhook:      deps.Webhook,
		verifyToken:  deps.VerifyToken,
		displayPhone: deps.DisplayPhone,
		pingers:      deps.Pingers,
		logger:       deps.Logger,
	}
	adminHandler := NewAdminHandler(deps.Dashboard, deps.Logger)

	// Apply Security Middleware
	r.Use(RequestLogger(deps.Logger))
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(maxWebhookBody))

	// Provider webhook
	r.GET("/webhook", h.VerifyWebhook)
	r.POST("/webhook", h.HandleWebhook)

	// Operational
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/qr", h.ClickToChatQR)

	api := r.Group("/api")
	api.Use(deps.Middleware.CORSMiddleware())

	// Public Auth Routes
	api.POST("/auth/login", func(c *gin.Context) {
		var loginReq struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&loginReq); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		token, err := deps.Auth.Login(loginReq.Username, loginReq.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	// Admin-only Routes
	admin := api.Group("/admin")
	admin.Use(deps.Middleware.AuthRequired())
	admin.Use(deps.Middleware.RateLimitPerUser(5, 10))
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/leads", adminHandler.ListLeads)
		admin.GET("/orders", adminHandler.ListOrders)
		admin.PUT("/senders/:id/block", adminHandler.BlockSender)
		admin.DELETE("/senders/:id/block", adminHandler.UnblockSender)
		admin.GET("/config/:key", adminHandler.GetConfig)
		admin.PUT("/config/:key", adminHandler.SetConfig)
	}
}

// VerifyWebhook answers the provider subscription handshake.
func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		h.logger.Info().Msg("webhook subscription verified")
		c.String(http.StatusOK, challenge)
		return
	}

	h.logger.Warn().Str("mode", mode).Msg("webhook verification failed")
	c.String(http.StatusForbidden, "Forbidden")
}

// HandleWebhook acknowledges every delivery with 200 except a bad signature.
func (h *Handler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to read webhook body")
		c.JSON(http.StatusOK, gin.H{"status": string(usecases.OutcomeIgnored)})
		return
	}

	res, err := h.webhook.HandleWebhook(c.Request.Context(), body, c.GetHeader("X-Hub-Signature-256"))
	if errors.Is(err, entities.ErrInvalidSignature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("webhook pipeline failed")
		c.JSON(http.StatusOK, gin.H{"status": string(usecases.OutcomeError)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(res.Outcome)})
}

func (h *Handler) Health(c *gin.Context) {
	for _, p := range h.pingers {
		if err := p.Ping(c.Request.Context()); err != nil {
			h.logger.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ClickToChatQR returns a PNG QR code pointing at the wa.me link of the
// business number.
func (h *Handler) ClickToChatQR(c *gin.Context) {
	phone := digitsOnly(h.displayPhone)
	if phone == "" {
		c.String(http.StatusNotFound, "Display phone not configured")
		return
	}

	link := "https://wa.me/" + phone
	if text := SanitizeString(c.Query("text")); text != "" {
		link += "?text=" + url.QueryEscape(TruncateString(text, MaxPrefillLength))
	}

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
