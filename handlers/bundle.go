package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Health gin.HandlerFunc

	// Schedule
	GetSlots gin.HandlerFunc

	// Checkout endpoints
	BeginCheckout       gin.HandlerFunc
	GetCheckout         gin.HandlerFunc
	RefreshTotals       gin.HandlerFunc
	ApplyPromotion      gin.HandlerFunc
	InitiatePayment     gin.HandlerFunc
	ReportPaymentResult gin.HandlerFunc

	// Payment vendor
	PaymentWebhook gin.HandlerFunc

	// Orders
	ListOrders gin.HandlerFunc
}
