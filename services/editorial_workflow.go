package services

import (
	"errors"
	"fmt"
	"time"

	"scipost-api/models"
	"scipost-api/utils"

	"gorm.io/gorm"
)

// EditorialWorkflowService runs the submission lifecycle: admission,
// assignment, refereeing cycle choice, recommendation, voting, decision,
// publication. Every transition is guarded by the transition table in
// workflow_rules.go and executes in one database transaction.
//
// Known limitation: assignment acceptance is optimistic. Two Fellows racing
// to accept competing assignments are resolved by commit order, without
// SELECT ... FOR UPDATE; the loser's assignment is deprecated by the
// winner's write.
type EditorialWorkflowService struct {
	db       *gorm.DB
	catalog  *JournalCatalogService
	notifier *NotificationService
}

// NewEditorialWorkflowService creates a workflow service on the given
// database.
func NewEditorialWorkflowService(db *gorm.DB) *EditorialWorkflowService {
	return &EditorialWorkflowService{
		db:       db,
		catalog:  NewJournalCatalogService(db),
		notifier: NewNotificationService(db),
	}
}

func logSubmissionEvent(tx *gorm.DB, submissionID int, event string, oldStatus, newStatus *string, actorID *int, notes string) error {
	record := models.SubmissionEvent{
		SubmissionID: submissionID,
		Event:        event,
		OldStatus:    oldStatus,
		NewStatus:    newStatus,
		ActorID:      actorID,
		CreatedAt:    time.Now(),
	}
	if notes != "" {
		record.Notes = &notes
	}
	return tx.Create(&record).Error
}

// setStatus updates the submission status together with extra column
// updates, and appends the audit event.
func setStatus(tx *gorm.DB, submission *models.Submission, action Action, newStatus string, actorID *int, extra map[string]interface{}, notes string) error {
	updates := map[string]interface{}{"status": newStatus}
	for k, v := range extra {
		updates[k] = v
	}
	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", submission.SubmissionID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("applying %s: %w", action, err)
	}
	oldStatus := submission.Status
	submission.Status = newStatus
	return logSubmissionEvent(tx, submission.SubmissionID, string(action), &oldStatus, &newStatus, actorID, notes)
}

func (s *EditorialWorkflowService) loadSubmission(tx *gorm.DB, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	err := tx.Preload("SubmittedTo").Where("submission_id = ?", submissionID).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("submission %d: %w", submissionID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// Admit concludes admission screening (plagiarism, scope). Failing is
// terminal for this version; the author is notified either way.
func (s *EditorialWorkflowService) Admit(submissionID int, pass bool, actorID int, notes string) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		action := ActionAdmissionPass
		target := models.SubAdmissible
		if !pass {
			action = ActionAdmissionFail
			target = models.SubAdmissionFailed
		}
		if err := GuardTransition(submission.Status, action); err != nil {
			return err
		}
		extra := map[string]interface{}{}
		if !pass {
			extra["visible_pool"] = false
		}
		if err := setStatus(tx, submission, action, target, &actorID, extra, notes); err != nil {
			return err
		}
		if !pass {
			return s.notifier.NotifySubmissionFailure(tx, submission,
				"Submission not admitted",
				"Your submission did not pass admission screening and will not be processed further.")
		}
		return nil
	})
	return submission, err
}

// StartPreassignment puts an admissible submission on EdAdmin's
// preassignment desk (author-profile resolution, Fellow matching).
func (s *EditorialWorkflowService) StartPreassignment(submissionID, actorID int) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionStartPreassignment); err != nil {
			return err
		}
		return setStatus(tx, submission, ActionStartPreassignment, models.SubPreassignment, &actorID, nil, "")
	})
	return submission, err
}

// ConcludePreassignment passes or fails EdAdmin's preassignment decision.
// On pass the submission enters the Fellow pool with an assignment deadline
// computed from the journal's assignment period, and the fellowship is reset
// to the journal's default college, discarding Fellows matched
// opportunistically during preassignment.
func (s *EditorialWorkflowService) ConcludePreassignment(submissionID int, pass bool, actorID int, notes string) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if !pass {
			if err := GuardTransition(submission.Status, ActionPreassignmentFail); err != nil {
				return err
			}
			extra := map[string]interface{}{"visible_pool": false}
			if err := setStatus(tx, submission, ActionPreassignmentFail, models.SubPreassignmentFailed, &actorID, extra, notes); err != nil {
				return err
			}
			return s.notifier.NotifySubmissionFailure(tx, submission,
				"Submission not taken up",
				"After preassignment checks your submission was not passed on to the Editorial College.")
		}

		if err := GuardTransition(submission.Status, ActionPreassignmentPass); err != nil {
			return err
		}
		deadline := time.Now().Add(submission.SubmittedTo.AssignmentPeriod())
		extra := map[string]interface{}{
			"assignment_deadline": deadline,
			"visible_pool":        true,
		}
		if err := setStatus(tx, submission, ActionPreassignmentPass, models.SubSeekingAssignment, &actorID, extra, notes); err != nil {
			return err
		}
		return resetPoolToDefault(tx, submission)
	})
	return submission, err
}

// resetPoolToDefault replaces the submission's pool with the target
// journal's default fellowship.
func resetPoolToDefault(tx *gorm.DB, submission *models.Submission) error {
	if err := tx.Where("submission_id = ?", submission.SubmissionID).
		Delete(&models.SubmissionFellow{}).Error; err != nil {
		return err
	}
	var fellowships []models.Fellowship
	if err := tx.Where("journal_id = ? AND is_default = ?", submission.SubmittedToID, true).
		Find(&fellowships).Error; err != nil {
		return err
	}
	for _, f := range fellowships {
		entry := models.SubmissionFellow{SubmissionID: submission.SubmissionID, FellowID: f.FellowID}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// InviteFellow asks a pool Fellow to take charge of a submission seeking
// assignment. Only pool members can be invited, and at most one open
// assignment exists per Fellow/submission pair.
func (s *EditorialWorkflowService) InviteFellow(submissionID, fellowID, actorID int) (*models.EditorialAssignment, error) {
	var assignment *models.EditorialAssignment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.Status != models.SubSeekingAssignment {
			return fmt.Errorf("submission %d is not seeking assignment: %w", submissionID, ErrPrecondition)
		}
		var inPool int64
		if err := tx.Model(&models.SubmissionFellow{}).
			Where("submission_id = ? AND fellow_id = ?", submissionID, fellowID).
			Count(&inPool).Error; err != nil {
			return err
		}
		if inPool == 0 {
			return fmt.Errorf("fellow %d is not on the pool of submission %d: %w", fellowID, submissionID, ErrPrecondition)
		}
		var open int64
		if err := tx.Model(&models.EditorialAssignment{}).
			Where("submission_id = ? AND to_id = ? AND status IN ?", submissionID, fellowID,
				[]string{models.AssignmentPreassigned, models.AssignmentInvited}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("fellow %d already has an open assignment for submission %d: %w",
				fellowID, submissionID, ErrPrecondition)
		}

		now := time.Now()
		assignment = &models.EditorialAssignment{
			SubmissionID: submissionID,
			ToID:         fellowID,
			Status:       models.AssignmentInvited,
			DateInvited:  &now,
		}
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}
		return s.notifier.Notify(tx, fellowID, "info", "Editorship invitation",
			"You have been invited to take charge of a submission.", &submissionID)
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// OfferConditionalAssignment records a Fellow's offer to take charge under
// redirection to another journal. The authors decide through
// AcceptConditionalOffer.
func (s *EditorialWorkflowService) OfferConditionalAssignment(submissionID, fellowID, forJournalID int) (*models.ConditionalAssignmentOffer, error) {
	var offer *models.ConditionalAssignmentOffer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.Status != models.SubSeekingAssignment {
			return fmt.Errorf("submission %d is not seeking assignment: %w", submissionID, ErrPrecondition)
		}
		var journal models.Journal
		err = tx.Where("journal_id = ?", forJournalID).First(&journal).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("journal %d: %w", forJournalID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		offer = &models.ConditionalAssignmentOffer{
			SubmissionID: submissionID,
			OfferedByID:  fellowID,
			ForJournalID: forJournalID,
			Status:       models.OfferOffered,
			DateOffered:  time.Now(),
		}
		if err := tx.Create(offer).Error; err != nil {
			return err
		}
		return s.notifier.Notify(tx, submission.SubmittedByID, "info", "Conditional assignment offer",
			fmt.Sprintf("An editor offers to take charge of your submission if it is redirected to %s.", journal.Name),
			&submissionID)
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// AcceptAssignment lets a Fellow take charge of a submission. All other
// outstanding assignments are deprecated; the cycle choice determines
// whether refereeing opens immediately, is skipped (direct recommendation),
// or is deferred to cycle selection.
func (s *EditorialWorkflowService) AcceptAssignment(assignmentID, fellowID int, cycle string) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var assignment models.EditorialAssignment
		err := tx.Where("assignment_id = ?", assignmentID).First(&assignment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("assignment %d: %w", assignmentID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if assignment.ToID != fellowID {
			return fmt.Errorf("assignment %d does not belong to fellow %d: %w", assignmentID, fellowID, ErrForbidden)
		}
		if !assignment.NeedsResponse() {
			return fmt.Errorf("assignment %d already answered: %w", assignmentID, ErrPrecondition)
		}

		submission, err = s.loadSubmission(tx, assignment.SubmissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionAcceptAssignment); err != nil {
			return err
		}
		target, opensReporting, err := cycleTarget(cycle)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.EditorialAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(map[string]interface{}{
				"status":        models.AssignmentAccepted,
				"date_answered": now,
			}).Error; err != nil {
			return err
		}
		// Whoever commits first wins; competing pending assignments are
		// deprecated here, not locked up front.
		if err := tx.Model(&models.EditorialAssignment{}).
			Where("submission_id = ? AND assignment_id != ? AND status IN ?",
				assignment.SubmissionID, assignmentID,
				[]string{models.AssignmentPreassigned, models.AssignmentInvited}).
			Update("status", models.AssignmentDeprecated).Error; err != nil {
			return err
		}

		extra := map[string]interface{}{
			"editor_in_charge": fellowID,
			"refereeing_cycle": cycle,
		}
		if opensReporting {
			extra["open_for_reporting"] = true
			extra["open_for_commenting"] = true
			extra["reporting_deadline"] = now.Add(submission.SubmittedTo.RefereeingPeriod())
		}
		return setStatus(tx, submission, ActionAcceptAssignment, target, &fellowID, extra, "")
	})
	return submission, err
}

// DeclineAssignment records a Fellow's refusal; the submission stays
// available to the rest of the pool.
func (s *EditorialWorkflowService) DeclineAssignment(assignmentID, fellowID int, refusalReason string) error {
	if refusalReason == "" {
		result := &ValidationResult{}
		result.AddError("refusal_reason", "a refusal reason is required when declining")
		return result
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var assignment models.EditorialAssignment
		err := tx.Where("assignment_id = ?", assignmentID).First(&assignment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("assignment %d: %w", assignmentID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if assignment.ToID != fellowID {
			return fmt.Errorf("assignment %d does not belong to fellow %d: %w", assignmentID, fellowID, ErrForbidden)
		}
		if !assignment.NeedsResponse() {
			return fmt.Errorf("assignment %d already answered: %w", assignmentID, ErrPrecondition)
		}
		now := time.Now()
		return tx.Model(&models.EditorialAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(map[string]interface{}{
				"status":         models.AssignmentDeclined,
				"refusal_reason": refusalReason,
				"date_answered":  now,
			}).Error
	})
}

// FailAssignment terminates a submission nobody took charge of.
func (s *EditorialWorkflowService) FailAssignment(submissionID, actorID int, notes string) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionFailAssignment); err != nil {
			return err
		}
		if err := tx.Model(&models.EditorialAssignment{}).
			Where("submission_id = ? AND status IN ?", submissionID,
				[]string{models.AssignmentPreassigned, models.AssignmentInvited}).
			Update("status", models.AssignmentDeprecated).Error; err != nil {
			return err
		}
		extra := map[string]interface{}{"visible_pool": false}
		if err := setStatus(tx, submission, ActionFailAssignment, models.SubAssignmentFailed, &actorID, extra, notes); err != nil {
			return err
		}
		return s.notifier.NotifySubmissionFailure(tx, submission,
			"No editor could be assigned",
			"We could not find an editor-in-charge for your submission within the assignment period.")
	})
	return submission, err
}

// SetRefereeingCycle resolves a deferred cycle choice made after
// acceptance.
func (s *EditorialWorkflowService) SetRefereeingCycle(submissionID, eicID int, cycle string) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := s.requireEIC(submission, eicID); err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionSetCycle); err != nil {
			return err
		}
		target, opensReporting, err := cycleTarget(cycle)
		if err != nil {
			return err
		}
		if cycle == models.CycleUndetermined {
			return fmt.Errorf("cycle choice must be determined: %w", ErrInvalidTransition)
		}
		extra := map[string]interface{}{"refereeing_cycle": cycle}
		if opensReporting {
			extra["open_for_reporting"] = true
			extra["open_for_commenting"] = true
			extra["reporting_deadline"] = time.Now().Add(submission.SubmittedTo.RefereeingPeriod())
		}
		return setStatus(tx, submission, ActionSetCycle, target, &eicID, extra, "")
	})
	return submission, err
}

// ExtendReportingDeadline pushes the advisory reporting deadline by a
// number of days. Nothing fails automatically when a deadline passes;
// deadlines are compared at read time by listing queries.
func (s *EditorialWorkflowService) ExtendReportingDeadline(submissionID, eicID, days int) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := s.requireEIC(submission, eicID); err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionExtendDeadline); err != nil {
			return err
		}
		base := time.Now()
		if submission.ReportingDeadline != nil && submission.ReportingDeadline.After(base) {
			base = *submission.ReportingDeadline
		}
		deadline := base.Add(time.Duration(days) * 24 * time.Hour)
		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submissionID).
			Update("reporting_deadline", deadline).Error; err != nil {
			return err
		}
		submission.ReportingDeadline = &deadline
		return logSubmissionEvent(tx, submissionID, string(ActionExtendDeadline), nil, nil, &eicID,
			fmt.Sprintf("reporting deadline extended by %d days", days))
	})
	return submission, err
}

func (s *EditorialWorkflowService) requireEIC(submission *models.Submission, fellowID int) error {
	if submission.EditorInChargeID == nil || *submission.EditorInChargeID != fellowID {
		return fmt.Errorf("fellow %d is not editor-in-charge of submission %d: %w",
			fellowID, submission.SubmissionID, ErrForbidden)
	}
	return nil
}

// nrVettedThreadReports counts vetted reports across all versions of the
// submission's thread, deduplicated by report author.
func nrVettedThreadReports(tx *gorm.DB, threadHash string) (int, error) {
	var count int64
	err := tx.Model(&models.Report{}).
		Joins("JOIN submissions ON submissions.submission_id = reports.submission_id").
		Where("submissions.thread_hash = ? AND reports.status = ?", threadHash, models.ReportVetted).
		Distinct("reports.author_id").
		Count(&count).Error
	return int(count), err
}

// FormulateRecommendation saves the EIC's recommendation, deprecating any
// earlier one for the thread and bumping the version. Revision requests
// park the submission awaiting resubmission; publish/reject move it to
// voting preparation. Reports already attached are retro-tagged as normal
// (pre-recommendation) reports.
func (s *EditorialWorkflowService) FormulateRecommendation(submissionID, eicID int, form *RecommendationForm) (*models.EICRecommendation, *ValidationResult, error) {
	var recommendation *models.EICRecommendation
	var validation *ValidationResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := s.requireEIC(submission, eicID); err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionFormulateRec); err != nil {
			return err
		}

		nrReports, err := nrVettedThreadReports(tx, submission.ThreadHash)
		if err != nil {
			return err
		}
		validation = ValidateRecommendationForm(form, nrReports, submission.SubmittedTo.MinimalNrOfReports)
		if !validation.OK() {
			return validation
		}

		// Deprecate all earlier recommendations of the thread, then bump
		// the version past the highest one seen.
		var maxVersion int
		row := tx.Model(&models.EICRecommendation{}).
			Joins("JOIN submissions ON submissions.submission_id = eic_recommendations.submission_id").
			Where("submissions.thread_hash = ?", submission.ThreadHash).
			Select("COALESCE(MAX(eic_recommendations.version), 0)").
			Row()
		if err := row.Scan(&maxVersion); err != nil {
			return err
		}
		if err := tx.Model(&models.EICRecommendation{}).
			Where("submission_id IN (?)",
				tx.Model(&models.Submission{}).Select("submission_id").Where("thread_hash = ?", submission.ThreadHash)).
			Where("status != ?", models.RecommendationDeprecated).
			Update("status", models.RecommendationDeprecated).Error; err != nil {
			return err
		}

		now := time.Now()
		recommendation = &models.EICRecommendation{
			SubmissionID:   submissionID,
			FormulatedByID: eicID,
			ForJournalID:   form.ForJournalID,
			Recommendation: form.Recommendation,
			Tier:           form.Tier,
			Status:         models.RecommendationDraft,
			Version:        maxVersion + 1,
			DateSubmitted:  now,
		}
		if form.RemarksForEditorialCollege != "" {
			recommendation.RemarksForEditorialCollege = &form.RemarksForEditorialCollege
		}
		if form.RemarksForAuthors != "" {
			recommendation.RemarksForAuthors = &form.RemarksForAuthors
		}
		if form.RequestedChanges != "" {
			recommendation.RequestedChanges = &form.RequestedChanges
		}
		if err := tx.Create(recommendation).Error; err != nil {
			return err
		}

		// Reports delivered before this point are pre-recommendation
		// reports; later ones will be addenda.
		if err := tx.Model(&models.Report{}).
			Where("submission_id = ?", submissionID).
			Update("report_type", models.ReportTypeNormal).Error; err != nil {
			return err
		}

		target := recommendationTarget(form.Recommendation)
		extra := map[string]interface{}{
			"open_for_reporting":  false,
			"open_for_commenting": false,
			"reporting_deadline":  now,
		}
		if target == models.SubAwaitingResubmission {
			// The EIC's work on this version is done until the authors
			// resubmit.
			if err := tx.Model(&models.EditorialAssignment{}).
				Where("submission_id = ? AND status = ?", submissionID, models.AssignmentAccepted).
				Update("status", models.AssignmentCompleted).Error; err != nil {
				return err
			}
		} else {
			extra["needs_coauthorships_update"] = true
			if form.Recommendation == models.RecPublish {
				if err := tx.Where("submission_id = ?", submissionID).
					Delete(&models.SubmissionTiering{}).Error; err != nil {
					return err
				}
				tiering := models.SubmissionTiering{
					SubmissionID: submissionID,
					FellowID:     eicID,
					ForJournalID: form.ForJournalID,
					Tier:         *form.Tier,
				}
				if err := tx.Create(&tiering).Error; err != nil {
					return err
				}
			}
		}
		return setStatus(tx, submission, ActionFormulateRec, target, &eicID, extra,
			fmt.Sprintf("recommendation: %s (version %d)", form.Recommendation, recommendation.Version))
	})
	if validation != nil && !validation.OK() {
		return nil, validation, nil
	}
	return recommendation, validation, err
}

// OpenVoting selects the eligible-to-vote Fellows and puts the active
// recommendation to the College. The formulating EIC is auto-registered as
// voting in favour.
func (s *EditorialWorkflowService) OpenVoting(submissionID, actorID int, eligibleFellowIDs []int, votingDeadline time.Time) (*models.EICRecommendation, error) {
	var recommendation models.EICRecommendation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionOpenVoting); err != nil {
			return err
		}
		err = tx.Where("submission_id = ? AND status = ?", submissionID, models.RecommendationDraft).
			Order("version DESC").First(&recommendation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no draft recommendation for submission %d: %w", submissionID, ErrPrecondition)
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.EICRecommendation{}).
			Where("recommendation_id = ?", recommendation.RecommendationID).
			Updates(map[string]interface{}{
				"status":          models.RecommendationPutToVoting,
				"voting_deadline": votingDeadline,
			}).Error; err != nil {
			return err
		}
		recommendation.Status = models.RecommendationPutToVoting
		recommendation.VotingDeadline = &votingDeadline

		seen := map[int]bool{recommendation.FormulatedByID: true}
		eligible := []int{recommendation.FormulatedByID}
		for _, id := range eligibleFellowIDs {
			if !seen[id] {
				seen[id] = true
				eligible = append(eligible, id)
			}
		}
		for _, fellowID := range eligible {
			entry := models.RecommendationEligible{
				RecommendationID: recommendation.RecommendationID,
				FellowID:         fellowID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		// The formulating EIC's vote in favour is implied by formulating.
		eicVote := models.RecommendationVote{
			RecommendationID: recommendation.RecommendationID,
			FellowID:         recommendation.FormulatedByID,
			Vote:             models.VoteFor,
		}
		if err := tx.Create(&eicVote).Error; err != nil {
			return err
		}

		return setStatus(tx, submission, ActionOpenVoting, models.SubUndergoingVoting, &actorID, nil, "")
	})
	if err != nil {
		return nil, err
	}
	return &recommendation, nil
}

// CastVote records one Fellow's vote through the set-membership toggle:
// any previous vote rows for the pair are removed, then exactly one is
// inserted. Only eligible Fellows may vote.
func (s *EditorialWorkflowService) CastVote(recommendationID, fellowID int, vote string) error {
	switch vote {
	case models.VoteFor, models.VoteAgainst, models.VoteAbstain:
	default:
		result := &ValidationResult{}
		result.AddError("vote", fmt.Sprintf("unknown vote %q", vote))
		return result
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var recommendation models.EICRecommendation
		err := tx.Where("recommendation_id = ?", recommendationID).First(&recommendation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("recommendation %d: %w", recommendationID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if recommendation.Status != models.RecommendationPutToVoting {
			return fmt.Errorf("recommendation %d is not open for voting: %w", recommendationID, ErrPrecondition)
		}
		var eligible int64
		if err := tx.Model(&models.RecommendationEligible{}).
			Where("recommendation_id = ? AND fellow_id = ?", recommendationID, fellowID).
			Count(&eligible).Error; err != nil {
			return err
		}
		if eligible == 0 {
			return fmt.Errorf("fellow %d is not eligible to vote on recommendation %d: %w",
				fellowID, recommendationID, ErrForbidden)
		}
		if err := tx.Where("recommendation_id = ? AND fellow_id = ?", recommendationID, fellowID).
			Delete(&models.RecommendationVote{}).Error; err != nil {
			return err
		}
		record := models.RecommendationVote{
			RecommendationID: recommendationID,
			FellowID:         fellowID,
			Vote:             vote,
		}
		return tx.Create(&record).Error
	})
}

// DecisionForm carries EdAdmin's input for fixing an editorial decision.
type DecisionForm struct {
	ForJournalID int    `json:"for_journal_id" binding:"required"`
	Decision     string `json:"decision" binding:"required"`
	Status       string `json:"status" binding:"required"`
	Remarks      string `json:"remarks"`
}

// FixDecision records the final outcome after voting. Rejection is
// incompatible with the awaiting-offer-acceptance status.
func (s *EditorialWorkflowService) FixDecision(submissionID, actorID int, form *DecisionForm) (*models.EditorialDecision, error) {
	validation := &ValidationResult{}
	if form.Decision != models.DecisionPublish && form.Decision != models.DecisionReject {
		validation.AddError("decision", fmt.Sprintf("unknown decision %q", form.Decision))
	}
	if form.Status != models.DecisionAwaitingOfferAcceptance && form.Status != models.DecisionFixedAndAccepted {
		validation.AddError("status", fmt.Sprintf("unknown decision status %q", form.Status))
	}
	if form.Decision == models.DecisionReject && form.Status == models.DecisionAwaitingOfferAcceptance {
		validation.AddError("status", "a rejection cannot await publication-offer acceptance")
	}
	if !validation.OK() {
		return nil, validation
	}

	var decision *models.EditorialDecision
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionFixDecision); err != nil {
			return err
		}

		var recommendation models.EICRecommendation
		err = tx.Where("submission_id = ? AND status = ?", submissionID, models.RecommendationPutToVoting).
			Order("version DESC").First(&recommendation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no recommendation under voting for submission %d: %w", submissionID, ErrPrecondition)
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&models.EICRecommendation{}).
			Where("recommendation_id = ?", recommendation.RecommendationID).
			Update("status", models.RecommendationFixed).Error; err != nil {
			return err
		}

		var maxVersion int
		row := tx.Model(&models.EditorialDecision{}).
			Where("submission_id = ?", submissionID).
			Select("COALESCE(MAX(version), 0)").Row()
		if err := row.Scan(&maxVersion); err != nil {
			return err
		}
		now := time.Now()
		decision = &models.EditorialDecision{
			SubmissionID: submissionID,
			ForJournalID: form.ForJournalID,
			Decision:     form.Decision,
			Status:       form.Status,
			Version:      maxVersion + 1,
			TakenByID:    actorID,
			TakenOn:      now,
		}
		if form.Remarks != "" {
			decision.Remarks = &form.Remarks
		}
		if err := tx.Create(decision).Error; err != nil {
			return err
		}

		target := decisionTarget(form.Decision, form.ForJournalID, submission.SubmittedToID)
		if err := setStatus(tx, submission, ActionFixDecision, target, &actorID, nil,
			fmt.Sprintf("decision: %s for journal %d", form.Decision, form.ForJournalID)); err != nil {
			return err
		}
		if form.Decision == models.DecisionReject {
			return s.notifier.NotifySubmissionFailure(tx, submission,
				"Submission rejected",
				"The Editorial College has decided not to publish your submission.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// CreatePublication finalizes an accepted submission into a Publication:
// paper number assignment, DOI-label construction, record creation. The
// issue is required unless the journal publishes individually.
func (s *EditorialWorkflowService) CreatePublication(submissionID, actorID int, issueID *int) (*models.Publication, error) {
	var publication *models.Publication
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionPublish); err != nil {
			return err
		}

		var decision models.EditorialDecision
		err = tx.Where("submission_id = ? AND decision = ? AND status != ?",
			submissionID, models.DecisionPublish, models.DecisionDeprecated).
			Order("version DESC").First(&decision).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no publish decision for submission %d: %w", submissionID, ErrPrecondition)
		}
		if err != nil {
			return err
		}

		var journal models.Journal
		if err := tx.Where("journal_id = ?", decision.ForJournalID).First(&journal).Error; err != nil {
			return err
		}

		var doiLabel string
		if journal.Structure == models.StructureIndividualPublications {
			if issueID != nil {
				return fmt.Errorf("journal %s publishes individually, no issue applies: %w",
					journal.DOILabel, ErrPrecondition)
			}
			paperNr, err := NextPaperNumber(tx, journal.JournalID, nil)
			if err != nil {
				return err
			}
			doiLabel = utils.BuildDOILabel(journal.DOILabel, nil, nil, &paperNr)
			publication = &models.Publication{
				JournalID: journal.JournalID,
				PaperNr:   paperNr,
			}
		} else {
			if issueID == nil {
				return fmt.Errorf("journal %s publishes in issues, an issue is required: %w",
					journal.DOILabel, ErrPrecondition)
			}
			var issue models.Issue
			err := tx.Where("issue_id = ? AND journal_id = ?", *issueID, journal.JournalID).First(&issue).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("issue %d in journal %s: %w", *issueID, journal.DOILabel, ErrNotFound)
			}
			if err != nil {
				return err
			}
			paperNr, err := NextPaperNumber(tx, journal.JournalID, issueID)
			if err != nil {
				return err
			}
			doiLabel = fmt.Sprintf("%s.%03d", issue.DOILabel, paperNr)
			publication = &models.Publication{
				JournalID: journal.JournalID,
				IssueID:   issueID,
				PaperNr:   paperNr,
			}
		}

		var tier *int
		var tiering models.SubmissionTiering
		if err := tx.Where("submission_id = ?", submissionID).First(&tiering).Error; err == nil {
			tier = &tiering.Tier
		}

		now := time.Now()
		publication.SubmissionID = submissionID
		publication.DOILabel = doiLabel
		publication.Title = submission.Title
		publication.AuthorList = submission.AuthorList
		publication.Abstract = submission.Abstract
		publication.Status = models.PublicationPublished
		publication.Tier = tier
		publication.PublicationDate = &now
		publication.DOIDepositNeedsUpdating = true
		if err := tx.Create(publication).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.EditorialAssignment{}).
			Where("submission_id = ? AND status = ?", submissionID, models.AssignmentAccepted).
			Update("status", models.AssignmentCompleted).Error; err != nil {
			return err
		}
		return setStatus(tx, submission, ActionPublish, models.SubPublished, &actorID, nil,
			fmt.Sprintf("published as %s", doiLabel))
	})
	if err != nil {
		return nil, err
	}
	return publication, nil
}

// Withdraw is the author-initiated exit path, available until publication.
// It is idempotent: withdrawing an already-withdrawn submission is a no-op
// guard, so side effects are applied exactly once. The whole thread becomes
// invisible to the public and the pool.
func (s *EditorialWorkflowService) Withdraw(submissionID, authorID int) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.SubmittedByID != authorID {
			return fmt.Errorf("submission %d was not submitted by user %d: %w", submissionID, authorID, ErrForbidden)
		}
		if submission.Status == models.SubWithdrawn {
			// Second withdrawal: nothing left to do.
			return nil
		}
		if err := GuardTransition(submission.Status, ActionWithdraw); err != nil {
			return err
		}

		// Hide every version of the thread from public and pool.
		if err := tx.Model(&models.Submission{}).
			Where("thread_hash = ?", submission.ThreadHash).
			Updates(map[string]interface{}{
				"visible_public": false,
				"visible_pool":   false,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.EditorialAssignment{}).
			Where("submission_id = ? AND status IN ?", submissionID,
				[]string{models.AssignmentPreassigned, models.AssignmentInvited}).
			Update("status", models.AssignmentDeprecated).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.EditorialAssignment{}).
			Where("submission_id = ? AND status = ?", submissionID, models.AssignmentAccepted).
			Update("status", models.AssignmentCompleted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.EICRecommendation{}).
			Where("submission_id = ? AND status != ?", submissionID, models.RecommendationDeprecated).
			Update("status", models.RecommendationDeprecated).Error; err != nil {
			return err
		}
		// A decision awaiting the authors' answer is recorded as refused
		// by them; any other live decision is deprecated.
		if err := tx.Model(&models.EditorialDecision{}).
			Where("submission_id = ? AND status = ?", submissionID, models.DecisionAwaitingOfferAcceptance).
			Update("status", models.DecisionOfferRefusedByAuthors).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.EditorialDecision{}).
			Where("submission_id = ? AND status = ?", submissionID, models.DecisionFixedAndAccepted).
			Update("status", models.DecisionDeprecated).Error; err != nil {
			return err
		}

		extra := map[string]interface{}{
			"open_for_reporting":  false,
			"open_for_commenting": false,
		}
		return setStatus(tx, submission, ActionWithdraw, models.SubWithdrawn, &authorID, extra, "")
	})
	return submission, err
}

// ReassignEditor replaces the editor-in-charge mid-process. The change is
// applied to every version of the thread so history stays consistent, both
// editors are notified, and refereeing progress is untouched.
func (s *EditorialWorkflowService) ReassignEditor(submissionID, newEICID, actorID int) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionReassignEditor); err != nil {
			return err
		}
		if submission.EditorInChargeID == nil {
			return fmt.Errorf("submission %d has no editor-in-charge: %w", submissionID, ErrPrecondition)
		}
		outgoingID := *submission.EditorInChargeID
		if outgoingID == newEICID {
			return fmt.Errorf("fellow %d is already editor-in-charge: %w", newEICID, ErrPrecondition)
		}

		if err := tx.Model(&models.EditorialAssignment{}).
			Where("submission_id = ? AND to_id = ? AND status = ?", submissionID, outgoingID, models.AssignmentAccepted).
			Update("status", models.AssignmentDeprecated).Error; err != nil {
			return err
		}
		now := time.Now()
		assignment := models.EditorialAssignment{
			SubmissionID: submissionID,
			ToID:         newEICID,
			Status:       models.AssignmentAccepted,
			DateAnswered: &now,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Submission{}).
			Where("thread_hash = ?", submission.ThreadHash).
			Update("editor_in_charge", newEICID).Error; err != nil {
			return err
		}
		submission.EditorInChargeID = &newEICID

		if err := logSubmissionEvent(tx, submissionID, string(ActionReassignEditor), nil, nil, &actorID,
			fmt.Sprintf("editor-in-charge changed from %d to %d", outgoingID, newEICID)); err != nil {
			return err
		}
		if err := s.notifier.Notify(tx, outgoingID, "info", "Editorship reassigned",
			"You have been relieved as editor-in-charge of a submission.", &submissionID); err != nil {
			return err
		}
		return s.notifier.Notify(tx, newEICID, "info", "Editorship assigned",
			"You are now editor-in-charge of a submission.", &submissionID)
	})
	return submission, err
}

// ChangeTargetJournal redirects a submission to another journal
// mid-process. Fulfilled expectations are journal-specific and therefore
// reset; manually added Fellows may optionally be kept on the pool.
func (s *EditorialWorkflowService) ChangeTargetJournal(submissionID, newJournalID, actorID int, preserveManualFellows bool) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionChangeTargetJournal); err != nil {
			return err
		}
		var journal models.Journal
		err = tx.Where("journal_id = ?", newJournalID).First(&journal).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("journal %d: %w", newJournalID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		oldJournalID := submission.SubmittedToID
		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submissionID).
			Updates(map[string]interface{}{
				"submitted_to":           newJournalID,
				"fulfilled_expectations": nil,
			}).Error; err != nil {
			return err
		}
		submission.SubmittedToID = newJournalID
		submission.SubmittedTo = journal
		submission.FulfilledExpectations = nil

		if !preserveManualFellows {
			if err := resetPoolToDefault(tx, submission); err != nil {
				return err
			}
		}
		return logSubmissionEvent(tx, submissionID, string(ActionChangeTargetJournal), nil, nil, &actorID,
			fmt.Sprintf("target journal changed from %d to %d", oldJournalID, newJournalID))
	})
	return submission, err
}

// RestartRefereeing rolls a submission back from a post-recommendation
// state to refereeing preparation. Deprecation, not deletion, preserves the
// audit trail; this is the explicit undo path.
func (s *EditorialWorkflowService) RestartRefereeing(submissionID, actorID int) (*models.Submission, error) {
	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := GuardTransition(submission.Status, ActionRestartRefereeing); err != nil {
			return err
		}
		if submission.EditorInChargeID == nil {
			return fmt.Errorf("submission %d has no editor-in-charge: %w", submissionID, ErrPrecondition)
		}

		if err := tx.Model(&models.EICRecommendation{}).
			Where("submission_id = ? AND status != ?", submissionID, models.RecommendationDeprecated).
			Update("status", models.RecommendationDeprecated).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.EditorialDecision{}).
			Where("submission_id = ? AND status != ?", submissionID, models.DecisionDeprecated).
			Update("status", models.DecisionDeprecated).Error; err != nil {
			return err
		}
		// Revert the EIC's assignment to accepted.
		if err := tx.Model(&models.EditorialAssignment{}).
			Where("submission_id = ? AND to_id = ? AND status IN ?", submissionID, *submission.EditorInChargeID,
				[]string{models.AssignmentCompleted, models.AssignmentDeprecated}).
			Update("status", models.AssignmentAccepted).Error; err != nil {
			return err
		}

		extra := map[string]interface{}{
			"open_for_reporting":  true,
			"open_for_commenting": true,
			"refereeing_cycle":    models.CycleUndetermined,
			"visible_pool":        true,
		}
		return setStatus(tx, submission, ActionRestartRefereeing, models.SubRefereeingInPreparation, &actorID, extra, "")
	})
	return submission, err
}

// AcceptConditionalOffer accepts a Fellow's conditional assignment offer on
// behalf of the authors, redirecting the submission to the offered journal.
// An offer that is no longer open is a precondition error.
func (s *EditorialWorkflowService) AcceptConditionalOffer(offerID, actorID int) (*models.ConditionalAssignmentOffer, error) {
	var offer models.ConditionalAssignmentOffer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("offer_id = ?", offerID).First(&offer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("offer %d: %w", offerID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if offer.Status != models.OfferOffered {
			return fmt.Errorf("offer %d is %s, not open: %w", offerID, offer.Status, ErrPrecondition)
		}
		now := time.Now()
		if err := tx.Model(&models.ConditionalAssignmentOffer{}).
			Where("offer_id = ?", offerID).
			Updates(map[string]interface{}{
				"status":        models.OfferAccepted,
				"accepted_by":   actorID,
				"date_answered": now,
			}).Error; err != nil {
			return err
		}
		offer.Status = models.OfferAccepted
		offer.AcceptedByID = &actorID
		offer.DateAnswered = &now
		// Competing open offers for the submission lapse.
		return tx.Model(&models.ConditionalAssignmentOffer{}).
			Where("submission_id = ? AND offer_id != ? AND status = ?",
				offer.SubmissionID, offerID, models.OfferOffered).
			Update("status", models.OfferDeprecated).Error
	})
	if err != nil {
		return nil, err
	}
	return &offer, nil
}
