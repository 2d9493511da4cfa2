package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/domain/entities/financing"
)

type FinancingHandlers struct {
	financingService *services.FinancingService
}

// NewFinancingHandlers creates financing directory handlers
func NewFinancingHandlers(financingService *services.FinancingService) *FinancingHandlers {
	return &FinancingHandlers{financingService: financingService}
}

// Search handles GET /api/v1/financing?type=&stage=&q=.
func (h *FinancingHandlers) Search(c *gin.Context) {
	var filter financing.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	entries := h.financingService.Search(filter)
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
