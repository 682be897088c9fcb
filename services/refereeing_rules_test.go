package services

import (
	"testing"
	"time"

	"scipost-api/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateInvitationResponseAccept(t *testing.T) {
	form := &InvitationResponseForm{Accept: true}
	result := ValidateInvitationResponse(form)
	assert.Contains(t, result.Errors, "intended_delivery_date")

	date := time.Now().Add(21 * 24 * time.Hour)
	form.IntendedDeliveryDate = &date
	assert.True(t, ValidateInvitationResponse(form).OK())
}

func TestValidateInvitationResponseDecline(t *testing.T) {
	form := &InvitationResponseForm{Accept: false}
	result := ValidateInvitationResponse(form)
	assert.Contains(t, result.Errors, "refusal_reason")

	// "other" requires the free-text explanation.
	form.RefusalReason = models.RefusalOther
	result = ValidateInvitationResponse(form)
	assert.Contains(t, result.Errors, "refusal_reason_other")

	form.RefusalReasonOther = "on sabbatical without library access"
	assert.True(t, ValidateInvitationResponse(form).OK())

	// A coded reason must not carry the free-text explanation.
	form.RefusalReason = models.RefusalTooBusy
	result = ValidateInvitationResponse(form)
	assert.Contains(t, result.Errors, "refusal_reason_other")

	form.RefusalReasonOther = ""
	assert.True(t, ValidateInvitationResponse(form).OK())

	form.RefusalReason = "dog_ate_it"
	result = ValidateInvitationResponse(form)
	assert.Contains(t, result.Errors, "refusal_reason")
}

func TestValidateVetReport(t *testing.T) {
	assert.True(t, ValidateVetReport(&VetReportForm{Accept: true}).OK())

	result := ValidateVetReport(&VetReportForm{Accept: false})
	assert.Contains(t, result.Errors, "refusal_reason")

	for _, reason := range models.ReportRefusalStatuses {
		form := &VetReportForm{Accept: false, RefusalReason: reason}
		assert.True(t, ValidateVetReport(form).OK(), "reason %s", reason)
	}

	result = ValidateVetReport(&VetReportForm{Accept: false, RefusalReason: "meh"})
	assert.Contains(t, result.Errors, "refusal_reason")
}

func TestRefereeIsFlagged(t *testing.T) {
	flagged := "Meier, Van der Berg"
	submission := &models.Submission{RefereesFlagged: &flagged}

	assert.True(t, refereeIsFlagged(submission, "Meier"))
	assert.True(t, refereeIsFlagged(submission, "van der berg"))
	assert.False(t, refereeIsFlagged(submission, "Smith"))
	assert.False(t, refereeIsFlagged(submission, ""))
	assert.False(t, refereeIsFlagged(&models.Submission{}, "Meier"))
}

func TestValidationResultErrorInterface(t *testing.T) {
	result := &ValidationResult{}
	assert.True(t, result.OK())

	result.AddError("field", "is wrong")
	result.AddWarning("other", "looks odd")
	assert.False(t, result.OK())
	assert.Contains(t, result.Error(), "field: is wrong")

	var err error = result
	assert.Error(t, err)
}
