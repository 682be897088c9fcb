package services

import (
	"testing"

	"scipost-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissionRow(id int, status string, submittedBy, submittedTo int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"submission_id", "thread_hash", "title", "status", "submitted_by", "submitted_to",
	}).AddRow(id, "thread-1", "On things", status, submittedBy, submittedTo)
}

func expectLoadSubmission(mock sqlmock.Sqlmock, id int, status string, submittedBy, submittedTo int) {
	mock.ExpectQuery("SELECT (.+) FROM `submissions` WHERE submission_id = (.+)").
		WithArgs(id).
		WillReturnRows(submissionRow(id, status, submittedBy, submittedTo))
	// Preload of the target journal.
	mock.ExpectQuery("SELECT (.+) FROM `journals` WHERE `journals`").
		WithArgs(submittedTo).
		WillReturnRows(journalRow(submittedTo, "SciPostPhys", models.StructureIssuesAndVolumes))
}

func TestAdmitRejectsWrongStatus(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	mock.ExpectBegin()
	expectLoadSubmission(mock, 11, models.SubInRefereeing, 5, 1)
	mock.ExpectRollback()

	_, err := svc.Admit(11, true, 99, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCastVoteToggle(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `eic_recommendations` WHERE recommendation_id = (.+)").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"recommendation_id", "submission_id", "formulated_by", "status"}).
			AddRow(7, 11, 2, models.RecommendationPutToVoting))
	mock.ExpectQuery("SELECT count(.+) FROM `recommendation_eligibles`").
		WithArgs(7, 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	// Any earlier vote rows for the pair are removed before the insert, so
	// re-voting replaces rather than accumulates.
	mock.ExpectExec("DELETE FROM `recommendation_votes`").
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `recommendation_votes`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := svc.CastVote(7, 3, models.VoteAgainst)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCastVoteRequiresEligibility(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `eic_recommendations` WHERE recommendation_id = (.+)").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"recommendation_id", "submission_id", "formulated_by", "status"}).
			AddRow(7, 11, 2, models.RecommendationPutToVoting))
	mock.ExpectQuery("SELECT count(.+) FROM `recommendation_eligibles`").
		WithArgs(7, 9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	err := svc.CastVote(7, 9, models.VoteFor)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCastVoteRejectsUnknownValue(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	err := svc.CastVote(7, 3, "maybe")
	var validation *ValidationResult
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Errors, "vote")
}

func TestWithdrawSecondTimeIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	// The second withdrawal loads the submission, sees the terminal status
	// and commits without any further writes.
	mock.ExpectBegin()
	expectLoadSubmission(mock, 11, models.SubWithdrawn, 5, 1)
	mock.ExpectCommit()

	submission, err := svc.Withdraw(11, 5)
	require.NoError(t, err)
	assert.Equal(t, models.SubWithdrawn, submission.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawRequiresOwnership(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	mock.ExpectBegin()
	expectLoadSubmission(mock, 11, models.SubInRefereeing, 5, 1)
	mock.ExpectRollback()

	_, err := svc.Withdraw(11, 6)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclineAssignmentRequiresReason(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	err := svc.DeclineAssignment(4, 2, "")
	var validation *ValidationResult
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Errors, "refusal_reason")
}

func TestAcceptAssignmentDeprecatesCompetitors(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `editorial_assignments` WHERE assignment_id = (.+)").
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id", "submission_id", "to_id", "status"}).
			AddRow(4, 11, 2, models.AssignmentInvited))
	expectLoadSubmission(mock, 11, models.SubSeekingAssignment, 5, 1)
	mock.ExpectExec("UPDATE `editorial_assignments` SET (.+) WHERE assignment_id = (.+)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Competing pending assignments on the same submission are deprecated by
	// the winning acceptance, leaving at most one accepted assignment.
	mock.ExpectExec("UPDATE `editorial_assignments` SET `status`=(.+) WHERE submission_id = (.+) AND assignment_id != (.+) AND status IN (.+)").
		WithArgs(models.AssignmentDeprecated, 11, 4, models.AssignmentPreassigned, models.AssignmentInvited).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE `submissions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `submission_events`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	submission, err := svc.AcceptAssignment(4, 2, models.CycleDefault)
	require.NoError(t, err)
	assert.Equal(t, models.SubInRefereeing, submission.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormulateRecommendationDeprecatesEarlier(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `submissions` WHERE submission_id = (.+)").
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{
			"submission_id", "thread_hash", "title", "status", "submitted_by", "submitted_to", "editor_in_charge",
		}).AddRow(11, "thread-1", "On things", models.SubRefereeingClosed, 5, 1, 2))
	mock.ExpectQuery("SELECT (.+) FROM `journals` WHERE `journals`").
		WithArgs(1).
		WillReturnRows(journalRow(1, "SciPostPhys", models.StructureIssuesAndVolumes))
	mock.ExpectQuery("SELECT (.+) FROM `reports`").
		WithArgs("thread-1", models.ReportVetted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT COALESCE(.+) FROM `eic_recommendations`").
		WithArgs("thread-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1))
	// Every earlier recommendation of the thread is deprecated before the new
	// one is created, so at most one stays active.
	mock.ExpectExec("UPDATE `eic_recommendations` SET `status`=(.+) WHERE submission_id IN (.+) AND status != (.+)").
		WithArgs(models.RecommendationDeprecated, "thread-1", models.RecommendationDeprecated).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `eic_recommendations`").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("UPDATE `reports` SET `report_type`=(.+) WHERE submission_id = (.+)").
		WithArgs(models.ReportTypeNormal, 11).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `submission_tierings`").
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `submission_tierings`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `submissions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `submission_events`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	form := &RecommendationForm{
		ForJournalID:               1,
		Recommendation:             models.RecPublish,
		Tier:                       tierPtr(1),
		RemarksForEditorialCollege: "meets the acceptance criteria",
	}
	recommendation, validation, err := svc.FormulateRecommendation(11, 2, form)
	require.NoError(t, err)
	require.True(t, validation.OK())
	assert.Equal(t, 2, recommendation.Version)
	assert.Equal(t, models.RecommendationDraft, recommendation.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFixDecisionValidation(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewEditorialWorkflowService(db)

	// A rejection cannot await publication-offer acceptance.
	_, err := svc.FixDecision(11, 99, &DecisionForm{
		ForJournalID: 1,
		Decision:     models.DecisionReject,
		Status:       models.DecisionAwaitingOfferAcceptance,
	})
	var validation *ValidationResult
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Errors, "status")

	_, err = svc.FixDecision(11, 99, &DecisionForm{
		ForJournalID: 1,
		Decision:     "maybe",
		Status:       models.DecisionFixedAndAccepted,
	})
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Errors, "decision")
}
