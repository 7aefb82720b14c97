package http

import (
	"commercebot/internal/entities"
	"commercebot/internal/usecases"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AdminHandler struct {
	dashboard *usecases.DashboardUsecase
	logger    zerolog.Logger
}

func NewAdminHandler(dashboard *usecases.DashboardUsecase, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// listLimit reads ?limit, clamped to MaxListLimit
func listLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// GetStats returns audit log totals
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.dashboard.ListUsers(c.Request.Context(), listLimit(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) ListLeads(c *gin.Context) {
	leads, err := h.dashboard.ListLeads(c.Request.Context(), listLimit(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch leads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
		return
	}
	c.JSON(http.StatusOK, leads)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.dashboard.ListOrders(c.Request.Context(), listLimit(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) BlockSender(c *gin.Context) {
	h.setBlocked(c, true)
}

func (h *AdminHandler) UnblockSender(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *AdminHandler) setBlocked(c *gin.Context, blocked bool) {
	senderID := c.Param("id")
	if !ValidSenderID(senderID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sender id"})
		return
	}

	var err error
	if blocked {
		err = h.dashboard.BlockSender(c.Request.Context(), senderID)
	} else {
		err = h.dashboard.UnblockSender(c.Request.Context(), senderID)
	}
	if errors.Is(err, entities.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sender not found"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("sender", senderID).Msg("failed to update block flag")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sender"})
		return
	}

	h.logger.Info().Str("sender", senderID).Bool("blocked", blocked).Msg("sender block flag updated")
	c.JSON(http.StatusOK, gin.H{"sender_id": senderID, "is_blocked": blocked})
}

func (h *AdminHandler) GetConfig(c *gin.Context) {
	key := c.Param("key")
	if !ValidConfigKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config key"})
		return
	}

	value, err := h.dashboard.GetConfig(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (h *AdminHandler) SetConfig(c *gin.Context) {
	key := c.Param("key")
	if !ValidConfigKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config key"})
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	value := SanitizeString(req.Value)
	if !ValidateLength(value, 0, MaxConfigValueLength(key)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Value too long"})
		return
	}

	if err := h.dashboard.SetConfig(c.Request.Context(), key, value); err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("failed to save config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}
