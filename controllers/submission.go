package controllers

import (
	"net/http"

	"scipost-api/config"
	"scipost-api/models"
	"scipost-api/services"

	"github.com/gin-gonic/gin"
)

// CreateSubmission takes in a new submission or resubmission. Identifier
// problems come back as field errors, not coerced values.
func CreateSubmission(c *gin.Context) {
	var form services.SubmissionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, validation, err := intake().CreateSubmission(currentUserID(c), &form)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if validation != nil && !validation.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors, "warnings": validation.Warnings})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": submission})
}

// ListSubmissions lists submissions visible to the caller. EdAdmin sees
// everything; Fellows see the pool they belong to plus their own; authors
// see their own plus publicly visible ones.
func ListSubmissions(c *gin.Context) {
	userID := currentUserID(c)
	roleID := currentRoleID(c)

	query := config.DB.Model(&models.Submission{}).Preload("SubmittedTo").Preload("Preprint")
	switch roleID {
	case models.RoleEdAdmin:
		// no visibility restriction
	case models.RoleFellow:
		query = query.Where(
			"submitted_by = ? OR visible_public = ? OR (visible_pool = ? AND submission_id IN (?))",
			userID, true, true,
			config.DB.Model(&models.SubmissionFellow{}).Select("submission_id").Where("fellow_id = ?", userID),
		)
	default:
		query = query.Where("submitted_by = ? OR visible_public = ?", userID, true)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if journalID := c.Query("journal_id"); journalID != "" {
		query = query.Where("submitted_to = ?", journalID)
	}

	var submissions []models.Submission
	if err := query.Order("submission_date DESC").Find(&submissions).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// GetSubmission returns one submission with its editorial records, subject
// to the same visibility rules as listing.
func GetSubmission(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}

	var submission models.Submission
	err := config.DB.
		Preload("SubmittedTo").
		Preload("Preprint").
		Preload("Assignments").
		Preload("Invitations").
		Preload("Reports").
		Preload("Recommendations").
		Preload("Events").
		Where("submission_id = ?", submissionID).
		First(&submission).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	if !mayViewSubmission(&submission, currentUserID(c), currentRoleID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// GetThread lists every version of a submission thread in order.
func GetThread(c *gin.Context) {
	threadHash := c.Param("hash")
	userID := currentUserID(c)
	roleID := currentRoleID(c)

	var versions []models.Submission
	query := config.DB.Preload("SubmittedTo").Preload("Preprint").
		Where("thread_hash = ?", threadHash)
	if roleID != models.RoleEdAdmin {
		query = query.Where("submitted_by = ? OR visible_public = ? OR editor_in_charge = ?", userID, true, userID)
	}
	if err := query.Order("submission_date ASC").Find(&versions).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if len(versions) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"thread_hash": threadHash, "versions": versions})
}

// GetThreadLatest returns the thread's current version, used to prefill a
// resubmission form.
func GetThreadLatest(c *gin.Context) {
	threadHash := c.Param("hash")

	latest, err := threads().LatestInThread(threadHash, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !mayViewSubmission(latest, currentUserID(c), currentRoleID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": latest})
}

// WithdrawSubmission is the author-initiated exit path.
func WithdrawSubmission(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}

	submission, err := workflow().Withdraw(submissionID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

func mayViewSubmission(submission *models.Submission, userID, roleID int) bool {
	if roleID == models.RoleEdAdmin || submission.VisiblePublic || submission.SubmittedByID == userID {
		return true
	}
	if submission.EditorInChargeID != nil && *submission.EditorInChargeID == userID {
		return true
	}
	if roleID == models.RoleFellow && submission.VisiblePool {
		var inPool int64
		config.DB.Model(&models.SubmissionFellow{}).
			Where("submission_id = ? AND fellow_id = ?", submission.SubmissionID, userID).
			Count(&inPool)
		return inPool > 0
	}
	return false
}
