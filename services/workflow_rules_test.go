package services

import (
	"testing"

	"scipost-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardTransition(t *testing.T) {
	assert.NoError(t, GuardTransition(models.SubIncoming, ActionAdmissionPass))
	assert.NoError(t, GuardTransition(models.SubIncoming, ActionAdmissionFail))
	assert.NoError(t, GuardTransition(models.SubAdmissible, ActionStartPreassignment))
	assert.NoError(t, GuardTransition(models.SubSeekingAssignment, ActionAcceptAssignment))
	assert.NoError(t, GuardTransition(models.SubInRefereeing, ActionFormulateRec))
	assert.NoError(t, GuardTransition(models.SubRefereeingClosed, ActionFormulateRec))
	assert.NoError(t, GuardTransition(models.SubVotingInPreparation, ActionOpenVoting))
	assert.NoError(t, GuardTransition(models.SubUndergoingVoting, ActionFixDecision))
	assert.NoError(t, GuardTransition(models.SubAcceptedInTarget, ActionPublish))
	assert.NoError(t, GuardTransition(models.SubAcceptedInAlternative, ActionPublish))

	// Out-of-order actions are rejected with the typed sentinel.
	assert.ErrorIs(t, GuardTransition(models.SubIncoming, ActionPublish), ErrInvalidTransition)
	assert.ErrorIs(t, GuardTransition(models.SubPublished, ActionWithdraw), ErrInvalidTransition)
	assert.ErrorIs(t, GuardTransition(models.SubRejected, ActionFormulateRec), ErrInvalidTransition)
	assert.ErrorIs(t, GuardTransition(models.SubWithdrawn, ActionAcceptAssignment), ErrInvalidTransition)
	assert.ErrorIs(t, GuardTransition(models.SubSeekingAssignment, Action("bogus")), ErrInvalidTransition)
}

func TestGuardTransitionWithdrawCoversActiveSet(t *testing.T) {
	// Withdrawal is available from every active status, and only those.
	for _, status := range models.StatusesActive {
		assert.NoError(t, GuardTransition(status, ActionWithdraw), "status %s", status)
	}
	for _, status := range []string{
		models.SubAdmissionFailed, models.SubPreassignmentFailed,
		models.SubAssignmentFailed, models.SubRejected,
		models.SubResubmitted, models.SubPublished, models.SubWithdrawn,
	} {
		assert.ErrorIs(t, GuardTransition(status, ActionWithdraw), ErrInvalidTransition, "status %s", status)
	}
}

func TestCycleTarget(t *testing.T) {
	target, opens, err := cycleTarget(models.CycleDefault)
	require.NoError(t, err)
	assert.Equal(t, models.SubInRefereeing, target)
	assert.True(t, opens)

	target, opens, err = cycleTarget(models.CycleShort)
	require.NoError(t, err)
	assert.Equal(t, models.SubInRefereeing, target)
	assert.True(t, opens)

	target, opens, err = cycleTarget(models.CycleDirectRec)
	require.NoError(t, err)
	assert.Equal(t, models.SubRefereeingClosed, target)
	assert.False(t, opens)

	target, opens, err = cycleTarget(models.CycleUndetermined)
	require.NoError(t, err)
	assert.Equal(t, models.SubRefereeingInPreparation, target)
	assert.False(t, opens)

	_, _, err = cycleTarget("fancy")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func tierPtr(n int) *int { return &n }

func TestValidateRecommendationFormPublish(t *testing.T) {
	form := &RecommendationForm{
		ForJournalID:               1,
		Recommendation:             models.RecPublish,
		RemarksForEditorialCollege: "clearly meets the acceptance criteria",
	}

	// Publishing without a tier is a blocking error.
	result := ValidateRecommendationForm(form, 2, 2)
	assert.False(t, result.OK())
	assert.Contains(t, result.Errors, "tier")

	form.Tier = tierPtr(5)
	result = ValidateRecommendationForm(form, 2, 2)
	assert.Contains(t, result.Errors, "tier")

	form.Tier = tierPtr(1)
	result = ValidateRecommendationForm(form, 2, 2)
	assert.True(t, result.OK())

	// Below the report minimum, publish is blocked outright.
	result = ValidateRecommendationForm(form, 1, 2)
	assert.False(t, result.OK())
	assert.Contains(t, result.Errors, "recommendation")
}

func TestValidateRecommendationFormRevision(t *testing.T) {
	form := &RecommendationForm{
		ForJournalID:   1,
		Recommendation: models.RecMinorRevision,
		Tier:           tierPtr(2),
	}

	result := ValidateRecommendationForm(form, 0, 2)
	assert.False(t, result.OK())
	assert.Contains(t, result.Errors, "requested_changes")
	// The tier is dropped, not rejected, on a non-publish recommendation.
	assert.Nil(t, form.Tier)

	form.RequestedChanges = "shorten section 3"
	result = ValidateRecommendationForm(form, 0, 2)
	// A report shortfall is only advisory for revision requests.
	assert.True(t, result.OK())
	assert.Contains(t, result.Warnings, "recommendation")
}

func TestValidateRecommendationFormReject(t *testing.T) {
	form := &RecommendationForm{
		ForJournalID:   1,
		Recommendation: models.RecReject,
	}

	result := ValidateRecommendationForm(form, 2, 2)
	assert.Contains(t, result.Errors, "remarks_for_editorial_college")
	assert.Contains(t, result.Errors, "remarks_for_authors")

	form.RemarksForEditorialCollege = "does not meet the journal's criteria"
	form.RemarksForAuthors = "the claimed result is not supported by the data"
	result = ValidateRecommendationForm(form, 2, 2)
	assert.True(t, result.OK())

	form.Recommendation = "burn_it"
	result = ValidateRecommendationForm(form, 2, 2)
	assert.Contains(t, result.Errors, "recommendation")
}

func TestRecommendationTarget(t *testing.T) {
	assert.Equal(t, models.SubAwaitingResubmission, recommendationTarget(models.RecMinorRevision))
	assert.Equal(t, models.SubAwaitingResubmission, recommendationTarget(models.RecMajorRevision))
	assert.Equal(t, models.SubVotingInPreparation, recommendationTarget(models.RecPublish))
	assert.Equal(t, models.SubVotingInPreparation, recommendationTarget(models.RecReject))
}

func TestDecisionTarget(t *testing.T) {
	assert.Equal(t, models.SubRejected, decisionTarget(models.DecisionReject, 1, 1))
	assert.Equal(t, models.SubAcceptedInTarget, decisionTarget(models.DecisionPublish, 1, 1))
	assert.Equal(t, models.SubAcceptedInAlternative, decisionTarget(models.DecisionPublish, 2, 1))
}
