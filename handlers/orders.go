package handlers

import (
	"context"
	"net/http"

	"bookcheckout/models"
	"bookcheckout/services/commerce"
	"bookcheckout/utils"

	"github.com/gin-gonic/gin"
)

type OrderViewer interface {
	List(ctx context.Context) ([]models.OrderView, error)
}

type OrdersHandler struct {
	viewer OrderViewer
}

func NewOrdersHandler(v OrderViewer) *OrdersHandler {
	return &OrdersHandler{viewer: v}
}

// ListOrders shows the signed-in customer's orders, newest first as the
// backend returns them.
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	if !commerce.HasCustomerToken(c.Request.Context()) {
		utils.JSONError(c, getLogger(c), http.StatusUnauthorized, "unauthorized", "Sign in to see your orders", "")
		return
	}
	views, err := h.viewer.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}
