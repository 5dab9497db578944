package handlers

import (
	"errors"
	"net/http"
	"strings"

	checkoutRepo "bookcheckout/database/repository/checkout"
	"bookcheckout/services/checkout"
	"bookcheckout/services/commerce"
	"bookcheckout/services/payment"
	"bookcheckout/services/scheduling"
	"bookcheckout/utils"

	"github.com/gin-gonic/gin"
)

// writeError maps a service error onto a status and a stable code.
func writeError(c *gin.Context, err error) {
	logger := getLogger(c)

	var (
		pre      *checkout.PreconditionError
		conflict *checkoutRepo.StateConflictError
		ce       *checkout.CheckoutError
		apiErr   *commerce.APIError
	)
	switch {
	case errors.As(err, &pre):
		utils.JSONError(c, logger, http.StatusBadRequest, pre.Code, "Missing required fields", strings.Join(pre.Missing, ","))
	case errors.Is(err, checkoutRepo.ErrNotFound):
		utils.JSONError(c, logger, http.StatusNotFound, "checkout_not_found", "Checkout not found", "")
	case errors.As(err, &conflict):
		utils.JSONError(c, logger, http.StatusConflict, "invalid_state", "Checkout cannot do that in its current state", string(conflict.State))
	case errors.Is(err, checkoutRepo.ErrConcurrentUpdate):
		utils.JSONError(c, logger, http.StatusConflict, "concurrent_update", "Checkout was changed by another request", "")
	case errors.Is(err, checkout.ErrPromotionAlreadyApplied):
		utils.JSONError(c, logger, http.StatusConflict, "promotion_already_applied", err.Error(), "")
	case errors.Is(err, commerce.ErrInvalidPromotion):
		utils.JSONError(c, logger, http.StatusUnprocessableEntity, "invalid_promotion", "Invalid promotion code", err.Error())
	case errors.Is(err, checkout.ErrUnknownPaymentOrder):
		utils.JSONError(c, logger, http.StatusConflict, "unknown_payment_order", err.Error(), "")
	case errors.Is(err, payment.ErrInvalidSignature):
		utils.JSONError(c, logger, http.StatusUnauthorized, "invalid_signature", "Webhook signature mismatch", "")
	case errors.Is(err, payment.ErrNoCallback):
		utils.JSONError(c, logger, http.StatusServiceUnavailable, "payment_unavailable", "Payment results cannot be processed right now", "")
	case errors.As(err, &ce):
		status := http.StatusBadGateway
		if errors.Is(err, commerce.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		utils.JSONError(c, logger, status, ce.Code, ce.Message, errorDetails(ce.Err))
	case errors.Is(err, commerce.ErrUnavailable):
		utils.JSONError(c, logger, http.StatusServiceUnavailable, checkout.CodeBackendUnavailable, "Commerce backend unavailable", "")
	case errors.Is(err, scheduling.ErrSlotsUnavailable):
		utils.JSONError(c, logger, http.StatusBadGateway, "slots_unavailable", "Could not load available slots", err.Error())
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
		utils.JSONError(c, logger, http.StatusUnauthorized, "unauthorized", "Sign in to continue", "")
	case errors.As(err, &apiErr):
		utils.JSONError(c, logger, http.StatusBadGateway, checkout.CodeBackendUnavailable, "Commerce backend error", apiErr.Message)
	default:
		utils.JSONError(c, logger, http.StatusInternalServerError, "internal", "Internal Server Error", "")
	}
}

func errorDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
