package handlers

import (
	"context"
	"io"
	"net/http"

	"bookcheckout/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// WebhookProcessor verifies and delivers vendor webhooks.
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, header http.Header, body []byte) error
}

type PaymentWebhookHandler struct {
	processor WebhookProcessor
}

func NewPaymentWebhookHandler(p WebhookProcessor) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{processor: p}
}

// Receive reads the raw body, since signatures are computed over the exact
// bytes the vendor sent.
func (h *PaymentWebhookHandler) Receive(c *gin.Context) {
	logger := getLogger(c)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "invalid_body", "Failed to read webhook body", err.Error())
		return
	}

	if err := h.processor.ProcessWebhook(c.Request.Context(), c.Request.Header, body); err != nil {
		logger.Warn("webhook rejected", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
