package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andresuchdata/stream-summaries/internal/config"
	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const latestFreeMessage = "This is the latest summary - always free!"

// PaymentAccept is one accepted way of paying for a summary.
type PaymentAccept struct {
	PayTo             string   `json:"payTo"`
	Asset             string   `json:"asset"`
	Network           string   `json:"network"`
	Amount            string   `json:"amount"`
	Description       string   `json:"description"`
	Resource          string   `json:"resource"`
	Facilitator       string   `json:"facilitator"`
	SupportedNetworks []string `json:"supportedNetworks"`
}

// PaymentRequired is the 402 body returned for summaries that are not free.
type PaymentRequired struct {
	Message string          `json:"message"`
	Accepts []PaymentAccept `json:"accepts"`
	Summary PublicSummary   `json:"summary"`
}

// PublicSummary is the entry metadata disclosed before payment.
type PublicSummary struct {
	VideoID      string `json:"video_id"`
	Streamer     string `json:"streamer"`
	Title        string `json:"title"`
	StreamDate   string `json:"stream_date"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type SummaryHandler struct {
	service       *service.SummaryService
	payment       config.PaymentConfig
	defaultLocale string
}

func NewSummaryHandler(service *service.SummaryService, payment config.PaymentConfig, defaultLocale string) *SummaryHandler {
	if defaultLocale == "" {
		defaultLocale = domain.DefaultLocale
	}
	return &SummaryHandler{service: service, payment: payment, defaultLocale: defaultLocale}
}

func (h *SummaryHandler) locale(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.DefaultQuery("lang", h.defaultLocale))
	locale, err := config.ParseLocale(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return "", false
	}
	return locale, true
}

func (h *SummaryHandler) ListSummaries(c *gin.Context) {
	locale, ok := h.locale(c)
	if !ok {
		return
	}

	catalog, err := h.service.GetCatalog(c.Request.Context(), locale)
	if err != nil {
		h.fail(c, err, "Failed to fetch summaries index")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": catalog})
}

func (h *SummaryHandler) GetLatest(c *gin.Context) {
	locale, ok := h.locale(c)
	if !ok {
		return
	}

	access, err := h.service.GetLatest(c.Request.Context(), locale)
	if err != nil {
		h.fail(c, err, "Failed to fetch latest summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    access.Document,
		"message": latestFreeMessage,
	})
}

func (h *SummaryHandler) GetSummary(c *gin.Context) {
	locale, ok := h.locale(c)
	if !ok {
		return
	}
	id := c.Param("id")

	access, err := h.service.GetSummary(c.Request.Context(), locale, id)
	if err != nil {
		h.fail(c, err, "Failed to fetch summary")
		return
	}

	if access.IsLatest {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    access.Document,
			"message": latestFreeMessage,
		})
		return
	}

	log.Info().Str("video_id", id).Msg("summary requires payment")
	c.JSON(http.StatusPaymentRequired, h.paymentRequired(c.Request.URL.Path, access.Entry))
}

func (h *SummaryHandler) paymentRequired(resource string, entry domain.Entry) PaymentRequired {
	return PaymentRequired{
		Message: "Payment Required",
		Accepts: []PaymentAccept{{
			PayTo:             h.payment.ReceivingWallet,
			Asset:             h.payment.Asset,
			Network:           h.payment.Network,
			Amount:            h.payment.Amount,
			Description:       "Access to stream summary",
			Resource:          resource,
			Facilitator:       h.payment.FacilitatorURL,
			SupportedNetworks: h.payment.SupportedNetworks,
		}},
		Summary: PublicSummary{
			VideoID:      entry.VideoID,
			Streamer:     entry.Streamer,
			Title:        entry.Title,
			StreamDate:   entry.StreamDate,
			ThumbnailURL: entry.ThumbnailURL,
		},
	}
}

func (h *SummaryHandler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrSummaryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Summary not found"})
	case errors.Is(err, service.ErrCatalogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Summaries index not found"})
	default:
		log.Error().Err(err).Msg(message)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": message})
	}
}
