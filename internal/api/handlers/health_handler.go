package handlers

import (
	"net/http"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/config"
	"github.com/gin-gonic/gin"
)

const (
	ServiceName    = "stream-summaries"
	ServiceVersion = "1.0.0"
)

type HealthHandler struct {
	payment config.PaymentConfig
	now     func() time.Time
}

func NewHealthHandler(payment config.PaymentConfig) *HealthHandler {
	return &HealthHandler{payment: payment, now: time.Now}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"service":   ServiceName,
		"version":   ServiceVersion,
	})
}

func (h *HealthHandler) Networks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"networks":        h.payment.SupportedNetworks,
		"facilitator":     h.payment.FacilitatorURL,
		"receivingWallet": h.payment.ReceivingWallet,
		"price":           h.payment.Price,
	})
}
