package controllers

import (
	"net/http"
	"time"

	"scipost-api/services"

	"github.com/gin-gonic/gin"
)

// FormulateRecommendation saves the EIC's recommendation. Warnings (e.g. a
// report shortfall on a revision request) accompany a successful save.
func FormulateRecommendation(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var form services.RecommendationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recommendation, validation, err := workflow().FormulateRecommendation(submissionID, currentUserID(c), &form)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if validation != nil && !validation.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors, "warnings": validation.Warnings})
		return
	}

	body := gin.H{"recommendation": recommendation}
	if validation != nil && len(validation.Warnings) > 0 {
		body["warnings"] = validation.Warnings
	}
	c.JSON(http.StatusCreated, body)
}

type openVotingRequest struct {
	EligibleFellowIDs []int     `json:"eligible_fellow_ids" binding:"required"`
	VotingDeadline    time.Time `json:"voting_deadline" binding:"required"`
}

// OpenVoting puts the draft recommendation to the Editorial College
// (EdAdmin).
func OpenVoting(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req openVotingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recommendation, err := workflow().OpenVoting(submissionID, currentUserID(c), req.EligibleFellowIDs, req.VotingDeadline)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendation": recommendation})
}

type castVoteRequest struct {
	Vote string `json:"vote" binding:"required"`
}

// CastVote records one Fellow's vote; re-voting replaces the earlier vote.
func CastVote(c *gin.Context) {
	recommendationID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := workflow().CastVote(recommendationID, currentUserID(c), req.Vote); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded"})
}
