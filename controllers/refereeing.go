package controllers

import (
	"net/http"

	"scipost-api/services"

	"github.com/gin-gonic/gin"
)

// InviteReferee creates a referee invitation on a submission open for
// reporting (EIC).
func InviteReferee(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var form services.InvitationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := refereeing().Invite(submissionID, currentUserID(c), &form)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invitation": invitation})
}

// RespondToInvitation records the referee's accept/decline answer.
func RespondToInvitation(c *gin.Context) {
	invitationID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var form services.InvitationResponseForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)
	invitation, err := refereeing().Respond(invitationID, &userID, &form)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": invitation})
}

// CancelInvitation withdraws an outstanding invitation (EIC).
func CancelInvitation(c *gin.Context) {
	invitationID, ok := intParam(c, "id")
	if !ok {
		return
	}

	if err := refereeing().Cancel(invitationID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled"})
}

// RemindReferee bumps the reminder counters on an open invitation (EIC).
func RemindReferee(c *gin.Context) {
	invitationID, ok := intParam(c, "id")
	if !ok {
		return
	}

	invitation, err := refereeing().Remind(invitationID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": invitation})
}

// SubmitReport files a referee report on a submission open for reporting.
func SubmitReport(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var form services.ReportForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := refereeing().SubmitReport(submissionID, currentUserID(c), &form)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// VetReport accepts or refuses a submitted report (EIC/EdAdmin).
func VetReport(c *gin.Context) {
	reportID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var form services.VetReportForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := refereeing().VetReport(reportID, currentUserID(c), &form)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
