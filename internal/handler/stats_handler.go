package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	"github.com/it-dept/dept-cms-api/pkg/response"
)

// StatsHandler exposes site content counters.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Get godoc
// @Summary Content statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.service.Collect(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
