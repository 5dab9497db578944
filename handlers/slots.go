package handlers

import (
	"net/http"

	"bookcheckout/services/scheduling"

	"github.com/gin-gonic/gin"
)

type SlotsHandler struct {
	fetcher scheduling.SlotFetcher
}

func NewSlotsHandler(f scheduling.SlotFetcher) *SlotsHandler {
	return &SlotsHandler{fetcher: f}
}

// GetSlots returns the available times grouped by date. Query parameters
// override the configured catalog entry.
func (h *SlotsHandler) GetSlots(c *gin.Context) {
	schedule, err := h.fetcher.FetchSlots(c.Request.Context(), scheduling.SlotQuery{
		TherapistID: c.Query("therapist_id"),
		LocationID:  c.Query("loc_id"),
		ServiceID:   c.Query("service_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}
