package controllers

import (
	"net/http"

	"scipost-api/services"

	"github.com/gin-gonic/gin"
)

// FixDecision records the final editorial outcome after voting (EdAdmin).
func FixDecision(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var form services.DecisionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, err := workflow().FixDecision(submissionID, currentUserID(c), &form)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"decision": decision})
}

type createPublicationRequest struct {
	IssueID *int `json:"issue_id,omitempty"`
}

// CreatePublication finalizes an accepted submission into a publication
// (EdAdmin). The issue is required unless the journal publishes individually.
func CreatePublication(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req createPublicationRequest
	// The body may be empty for individual-publications journals.
	_ = c.ShouldBindJSON(&req)

	publication, err := workflow().CreatePublication(submissionID, currentUserID(c), req.IssueID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"publication": publication})
}

type depositRequest struct {
	Target string `json:"target" binding:"required"`
}

// DepositPublication hands a publication's metadata to the deposit gateway
// (EdAdmin). Gateway failures come back on the deposit record, not as HTTP
// errors, so EdAdmin can retry.
func DepositPublication(c *gin.Context) {
	publicationID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deposit, err := deposits().DepositPublication(c.Request.Context(), publicationID, req.Target)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"deposit": deposit})
}
