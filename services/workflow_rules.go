package services

import (
	"fmt"
	"strings"

	"scipost-api/models"
)

// Action names every editorial workflow transition. Each action maps to a
// handler in EditorialWorkflowService; the table below is the single source
// of truth for which statuses admit which actions.
type Action string

const (
	ActionAdmissionPass       Action = "admission_pass"
	ActionAdmissionFail       Action = "admission_fail"
	ActionStartPreassignment  Action = "start_preassignment"
	ActionPreassignmentPass   Action = "preassignment_pass"
	ActionPreassignmentFail   Action = "preassignment_fail"
	ActionFailAssignment      Action = "fail_assignment"
	ActionAcceptAssignment    Action = "accept_assignment"
	ActionDeclineAssignment   Action = "decline_assignment"
	ActionSetCycle            Action = "set_refereeing_cycle"
	ActionExtendDeadline      Action = "extend_reporting_deadline"
	ActionFormulateRec        Action = "formulate_recommendation"
	ActionOpenVoting          Action = "open_voting"
	ActionCastVote            Action = "cast_vote"
	ActionFixDecision         Action = "fix_decision"
	ActionPublish             Action = "publish"
	ActionWithdraw            Action = "withdraw"
	ActionReassignEditor      Action = "reassign_editor"
	ActionChangeTargetJournal Action = "change_target_journal"
	ActionRestartRefereeing   Action = "restart_refereeing"
)

// actionSources is the transition table: for every action, the statuses
// from which it may fire. Actions whose target status depends on parameters
// (cycle choice, recommendation, decision) compute it in their handler; the
// table still gates entry.
var actionSources = map[Action][]string{
	ActionAdmissionPass:      {models.SubIncoming},
	ActionAdmissionFail:      {models.SubIncoming},
	ActionStartPreassignment: {models.SubAdmissible},
	ActionPreassignmentPass:  {models.SubPreassignment},
	ActionPreassignmentFail:  {models.SubPreassignment},
	ActionFailAssignment:     {models.SubSeekingAssignment},
	ActionAcceptAssignment:   {models.SubSeekingAssignment},
	ActionDeclineAssignment:  {models.SubSeekingAssignment},
	ActionSetCycle:           {models.SubRefereeingInPreparation},
	ActionExtendDeadline:     {models.SubInRefereeing},
	ActionFormulateRec:       {models.SubInRefereeing, models.SubRefereeingClosed},
	ActionOpenVoting:         {models.SubVotingInPreparation},
	ActionCastVote:           {models.SubUndergoingVoting},
	ActionFixDecision:        {models.SubUndergoingVoting},
	ActionPublish:            {models.SubAcceptedInTarget, models.SubAcceptedInAlternative},
	ActionWithdraw: {
		models.SubIncoming, models.SubAdmissible, models.SubPreassignment,
		models.SubSeekingAssignment, models.SubRefereeingInPreparation,
		models.SubInRefereeing, models.SubRefereeingClosed,
		models.SubAwaitingResubmission, models.SubVotingInPreparation,
		models.SubUndergoingVoting, models.SubAcceptedInTarget,
		models.SubAcceptedInAlternative,
	},
	ActionReassignEditor: {
		models.SubRefereeingInPreparation, models.SubInRefereeing,
		models.SubRefereeingClosed, models.SubAwaitingResubmission,
		models.SubVotingInPreparation, models.SubUndergoingVoting,
	},
	ActionChangeTargetJournal: {
		models.SubPreassignment, models.SubSeekingAssignment,
		models.SubRefereeingInPreparation, models.SubInRefereeing,
		models.SubRefereeingClosed,
	},
	ActionRestartRefereeing: {
		models.SubAwaitingResubmission, models.SubVotingInPreparation,
		models.SubUndergoingVoting, models.SubAcceptedInTarget,
		models.SubAcceptedInAlternative,
	},
}

// GuardTransition checks the transition table. The zero-side-effect part of
// every handler: call it before touching the database.
func GuardTransition(status string, action Action) error {
	sources, ok := actionSources[action]
	if !ok {
		return fmt.Errorf("unknown action %q: %w", action, ErrInvalidTransition)
	}
	for _, s := range sources {
		if s == status {
			return nil
		}
	}
	return fmt.Errorf("action %s not allowed from status %s: %w", action, status, ErrInvalidTransition)
}

// cycleTarget maps a refereeing cycle choice to the status it opens. The
// direct-recommendation cycle skips report collection entirely.
func cycleTarget(cycle string) (status string, opensReporting bool, err error) {
	switch cycle {
	case models.CycleDefault, models.CycleShort:
		return models.SubInRefereeing, true, nil
	case models.CycleDirectRec:
		return models.SubRefereeingClosed, false, nil
	case models.CycleUndetermined:
		return models.SubRefereeingInPreparation, false, nil
	default:
		return "", false, fmt.Errorf("unknown refereeing cycle %q: %w", cycle, ErrInvalidTransition)
	}
}

// RecommendationForm carries the EIC's input for formulating a
// recommendation.
type RecommendationForm struct {
	ForJournalID               int    `json:"for_journal_id" binding:"required"`
	Recommendation             string `json:"recommendation" binding:"required"`
	Tier                       *int   `json:"tier,omitempty"`
	RemarksForEditorialCollege string `json:"remarks_for_editorial_college"`
	RemarksForAuthors          string `json:"remarks_for_authors"`
	RequestedChanges           string `json:"requested_changes"`
}

const minCollegeRemarksLength = 10

// ValidateRecommendationForm applies the field-requiredness rules for a
// recommendation, given the number of unique vetted reports across the
// thread and the journal's minimum. A report shortfall is a blocking error
// for publish but only advisory for revision requests, since more reports
// can be gathered next round. A tier on a non-publish recommendation is
// cleared rather than rejected.
func ValidateRecommendationForm(form *RecommendationForm, nrVettedThreadReports, minimalNrOfReports int) *ValidationResult {
	result := &ValidationResult{}

	switch form.Recommendation {
	case models.RecPublish, models.RecMinorRevision, models.RecMajorRevision, models.RecReject:
	default:
		result.AddError("recommendation", fmt.Sprintf("unknown recommendation %q", form.Recommendation))
		return result
	}

	forVote := form.Recommendation == models.RecPublish || form.Recommendation == models.RecReject
	forRevision := form.Recommendation == models.RecMinorRevision || form.Recommendation == models.RecMajorRevision

	if form.Recommendation == models.RecPublish {
		if form.Tier == nil {
			result.AddError("tier", "a tier is required when recommending publication")
		} else if *form.Tier < 1 || *form.Tier > 3 {
			result.AddError("tier", "tier must be 1, 2 or 3")
		}
	} else {
		// Tier is only meaningful for publish; drop it silently.
		form.Tier = nil
	}

	if forVote && len(strings.TrimSpace(form.RemarksForEditorialCollege)) < minCollegeRemarksLength {
		result.AddError("remarks_for_editorial_college",
			"remarks for the Editorial College are required for recommendations put to a vote")
	}

	if forRevision && strings.TrimSpace(form.RequestedChanges) == "" {
		result.AddError("requested_changes", "requested changes are required for a revision request")
	}

	if form.Recommendation == models.RecReject && strings.TrimSpace(form.RemarksForAuthors) == "" {
		result.AddError("remarks_for_authors", "remarks for the authors are required when recommending rejection")
	}

	if nrVettedThreadReports < minimalNrOfReports {
		msg := fmt.Sprintf("only %d vetted report(s) in this thread, the journal requires %d",
			nrVettedThreadReports, minimalNrOfReports)
		if form.Recommendation == models.RecPublish {
			result.AddError("recommendation", msg)
		} else if forRevision {
			result.AddWarning("recommendation", msg)
		}
	}

	return result
}

// recommendationTarget maps a saved recommendation to the submission status
// it induces.
func recommendationTarget(recommendation string) string {
	switch recommendation {
	case models.RecMinorRevision, models.RecMajorRevision:
		return models.SubAwaitingResubmission
	default:
		return models.SubVotingInPreparation
	}
}

// decisionTarget maps a fixed decision to the submission status it induces,
// relative to the originally targeted journal.
func decisionTarget(decision string, forJournalID, submittedToID int) string {
	if decision == models.DecisionReject {
		return models.SubRejected
	}
	if forJournalID == submittedToID {
		return models.SubAcceptedInTarget
	}
	return models.SubAcceptedInAlternative
}
