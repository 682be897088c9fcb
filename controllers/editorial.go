package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type screeningRequest struct {
	Pass  bool   `json:"pass"`
	Notes string `json:"notes"`
}

// ConcludeAdmission records the admission screening outcome (EdAdmin).
func ConcludeAdmission(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req screeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := workflow().Admit(submissionID, req.Pass, currentUserID(c), req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// StartPreassignment moves an admissible submission to the preassignment
// desk (EdAdmin).
func StartPreassignment(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}

	submission, err := workflow().StartPreassignment(submissionID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// ConcludePreassignment records the preassignment outcome (EdAdmin). Passing
// opens the Fellow pool and starts the assignment clock.
func ConcludePreassignment(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req screeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := workflow().ConcludePreassignment(submissionID, req.Pass, currentUserID(c), req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type inviteFellowRequest struct {
	FellowID int `json:"fellow_id" binding:"required"`
}

// InviteFellow invites a pool Fellow to take charge (EdAdmin).
func InviteFellow(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req inviteFellowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := workflow().InviteFellow(submissionID, req.FellowID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

type acceptAssignmentRequest struct {
	Cycle string `json:"cycle" binding:"required"`
}

// AcceptAssignment lets the invited Fellow take charge, choosing the
// refereeing cycle.
func AcceptAssignment(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req acceptAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := workflow().AcceptAssignment(assignmentID, currentUserID(c), req.Cycle)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type declineAssignmentRequest struct {
	RefusalReason string `json:"refusal_reason"`
}

// DeclineAssignment records the invited Fellow's refusal.
func DeclineAssignment(c *gin.Context) {
	assignmentID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req declineAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := workflow().DeclineAssignment(assignmentID, currentUserID(c), req.RefusalReason); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment declined"})
}

// FailAssignment terminates a submission nobody took charge of (EdAdmin).
func FailAssignment(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	// Notes are optional; an empty body is fine.
	_ = c.ShouldBindJSON(&req)

	submission, err := workflow().FailAssignment(submissionID, currentUserID(c), req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type setCycleRequest struct {
	Cycle string `json:"cycle" binding:"required"`
}

// SetRefereeingCycle resolves a deferred cycle choice (EIC).
func SetRefereeingCycle(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req setCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := workflow().SetRefereeingCycle(submissionID, currentUserID(c), req.Cycle)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type extendDeadlineRequest struct {
	Days int `json:"days" binding:"required,min=1"`
}

// ExtendReportingDeadline pushes the advisory reporting deadline (EIC).
func ExtendReportingDeadline(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req extendDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := workflow().ExtendReportingDeadline(submissionID, currentUserID(c), req.Days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type reassignEditorRequest struct {
	NewEICID int `json:"new_eic_id" binding:"required"`
}

// ReassignEditor replaces the editor-in-charge mid-process (EdAdmin).
func ReassignEditor(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req reassignEditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := workflow().ReassignEditor(submissionID, req.NewEICID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type changeTargetJournalRequest struct {
	JournalID             int  `json:"journal_id" binding:"required"`
	PreserveManualFellows bool `json:"preserve_manual_fellows"`
}

// ChangeTargetJournal redirects a submission to another journal (EdAdmin).
func ChangeTargetJournal(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req changeTargetJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := workflow().ChangeTargetJournal(submissionID, req.JournalID, currentUserID(c), req.PreserveManualFellows)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// RestartRefereeing rolls a submission back to refereeing preparation
// (EdAdmin).
func RestartRefereeing(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}

	submission, err := workflow().RestartRefereeing(submissionID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type conditionalOfferRequest struct {
	ForJournalID int `json:"for_journal_id" binding:"required"`
}

// OfferConditionalAssignment records a Fellow's redirect-conditional offer.
func OfferConditionalAssignment(c *gin.Context) {
	submissionID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req conditionalOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := workflow().OfferConditionalAssignment(submissionID, currentUserID(c), req.ForJournalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"offer": offer})
}

// AcceptConditionalOffer accepts a conditional assignment offer on behalf of
// the authors; competing open offers lapse.
func AcceptConditionalOffer(c *gin.Context) {
	offerID, ok := intParam(c, "id")
	if !ok {
		return
	}

	offer, err := workflow().AcceptConditionalOffer(offerID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offer": offer})
}
