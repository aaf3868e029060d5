package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
)

// respondData sends a success envelope with a data payload.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondMessage sends a success envelope with only a message.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
	})
}

// respondPage sends a paginated success envelope.
func respondPage(c *gin.Context, data any, count int, total int64, params utils.PaginationParams) {
	totalPages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        data,
		"count":       count,
		"total":       total,
		"totalPages":  totalPages,
		"currentPage": params.Page,
	})
}
