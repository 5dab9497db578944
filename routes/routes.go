package routes

import (
	"time"

	"bookcheckout/handlers"
	"bookcheckout/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterCheckoutRoutes sets up the endpoints the app drives a checkout with.
// Guests and signed-in customers share them; the bearer token, when present,
// is forwarded to the commerce backend.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.CustomerTokenMiddleware())
	{
		api.GET("/slots", hb.GetSlots)
		api.GET("/orders", hb.ListOrders)
	}

	checkoutGroup := api.Group("/checkout")
	{
		checkoutGroup.POST("", hb.BeginCheckout)
		checkoutGroup.GET("/:id", hb.GetCheckout)
		checkoutGroup.POST("/:id/refresh", hb.RefreshTotals)
		checkoutGroup.POST("/:id/promotions", hb.ApplyPromotion)
		checkoutGroup.POST("/:id/payment", hb.InitiatePayment)
		checkoutGroup.POST("/:id/payment/result", hb.ReportPaymentResult)
	}
}

// RegisterPaymentRoutes sets up the vendor webhook. It is authenticated by
// signature, not by customer token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/payments/webhook", hb.PaymentWebhook)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !allowsAny(allowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterCheckoutRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
}

// cors rejects credentials together with a wildcard origin.
func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
