package handlers

import (
	"context"
	"net/http"

	"bookcheckout/models"
	"bookcheckout/services/checkout"
	"bookcheckout/services/payment"
	"bookcheckout/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutService is the orchestrator surface the app drives.
type CheckoutService interface {
	Begin(ctx context.Context, req checkout.BeginRequest) (*models.CheckoutSession, error)
	Get(ctx context.Context, id string) (*models.CheckoutSession, error)
	RefreshTotals(ctx context.Context, id string) (*models.CheckoutSession, error)
	ApplyPromotion(ctx context.Context, id string, req checkout.PromotionRequest) (*models.CheckoutSession, error)
	InitiatePayment(ctx context.Context, id string, contact models.Contact) (*payment.Launch, error)
	ReportPaymentResult(ctx context.Context, id string, report checkout.PaymentReport) (*models.CheckoutSession, error)
}

type CheckoutHandler struct {
	svc CheckoutService
}

func NewCheckoutHandler(svc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// BeginCheckout creates a cart for the chosen slot.
func (h *CheckoutHandler) BeginCheckout(c *gin.Context) {
	logger := getLogger(c)
	var req checkout.BeginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, checkout.CodeInvalidSlot, "Invalid request", err.Error())
		return
	}

	session, err := h.svc.Begin(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Info("checkout started", zap.String("checkout_id", session.ID), zap.String("cart_id", session.CartID))
	c.JSON(http.StatusCreated, session)
}

func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	session, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// RefreshTotals re-reads the cart so the displayed totals are current.
func (h *CheckoutHandler) RefreshTotals(c *gin.Context) {
	session, err := h.svc.RefreshTotals(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *CheckoutHandler) ApplyPromotion(c *gin.Context) {
	logger := getLogger(c)
	var req checkout.PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, checkout.CodeMissingFields, "Invalid request", err.Error())
		return
	}

	session, err := h.svc.ApplyPromotion(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// InitiatePayment returns what the app needs to open the vendor drop-in.
func (h *CheckoutHandler) InitiatePayment(c *gin.Context) {
	logger := getLogger(c)
	var contact models.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, checkout.CodeMissingFields, "Invalid request", err.Error())
		return
	}

	launch, err := h.svc.InitiatePayment(c.Request.Context(), c.Param("id"), contact)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, launch)
}

// ReportPaymentResult relays the drop-in SDK's verify or error callback.
func (h *CheckoutHandler) ReportPaymentResult(c *gin.Context) {
	logger := getLogger(c)
	var report checkout.PaymentReport
	if err := c.ShouldBindJSON(&report); err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, checkout.CodeMissingFields, "Invalid request", err.Error())
		return
	}

	session, err := h.svc.ReportPaymentResult(c.Request.Context(), c.Param("id"), report)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
