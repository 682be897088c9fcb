package controllers

import (
	"net/http"

	"scipost-api/services"

	"github.com/gin-gonic/gin"
)

type markupPreviewRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language"`
}

// PreviewMarkup renders free text to sanitized HTML for display previews.
// Rendering problems surface as warnings, never as errors.
func PreviewMarkup(c *gin.Context) {
	var req markupPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, services.RenderMarkup(req.Text, req.Language))
}
