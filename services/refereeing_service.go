package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"scipost-api/models"

	"gorm.io/gorm"
)

// RefereeingService manages the referee-invitation lifecycle
// (invite -> accept/decline -> fulfill/cancel) and report vetting.
type RefereeingService struct {
	db       *gorm.DB
	notifier *NotificationService
}

// NewRefereeingService creates a refereeing service on the given database.
func NewRefereeingService(db *gorm.DB) *RefereeingService {
	return &RefereeingService{db: db, notifier: NewNotificationService(db)}
}

// InvitationForm carries the EIC's input when inviting a referee.
type InvitationForm struct {
	RefereeID     *int   `json:"referee_id,omitempty"`
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	EmailAddress  string `json:"email_address" binding:"required"`
	ResetCounters bool   `json:"reset_counters"`
}

// Invite creates a referee invitation. Reinvitation across resubmissions
// may reuse or change the target address; counters are optionally reset.
func (s *RefereeingService) Invite(submissionID, invitedByID int, form *InvitationForm) (*models.RefereeInvitation, error) {
	var invitation *models.RefereeInvitation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		err := tx.Where("submission_id = ?", submissionID).First(&submission).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("submission %d: %w", submissionID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !submission.OpenForReporting {
			return fmt.Errorf("submission %d is not open for reporting: %w", submissionID, ErrPrecondition)
		}

		now := time.Now()
		invitation = &models.RefereeInvitation{
			SubmissionID: submissionID,
			RefereeID:    form.RefereeID,
			FirstName:    form.FirstName,
			LastName:     form.LastName,
			EmailAddress: form.EmailAddress,
			InvitedByID:  invitedByID,
			DateInvited:  now,
		}

		// A referee invited on an earlier version keeps their reminder
		// history unless the EIC resets it.
		if form.RefereeID != nil && !form.ResetCounters {
			var prior models.RefereeInvitation
			err := tx.Joins("JOIN submissions ON submissions.submission_id = referee_invitations.submission_id").
				Where("submissions.thread_hash = ? AND referee_invitations.referee_id = ?",
					submission.ThreadHash, *form.RefereeID).
				Order("referee_invitations.date_invited DESC").
				First(&prior).Error
			if err == nil {
				invitation.NrReminders = prior.NrReminders
				invitation.DateLastReminded = prior.DateLastReminded
			}
		}

		if err := tx.Create(invitation).Error; err != nil {
			return err
		}
		if form.RefereeID != nil {
			return s.notifier.Notify(tx, *form.RefereeID, "info", "Refereeing invitation",
				"You have been invited to referee a submission.", &submissionID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

// InvitationResponseForm carries the referee's answer.
type InvitationResponseForm struct {
	Accept               bool       `json:"accept"`
	RefusalReason        string     `json:"refusal_reason"`
	RefusalReasonOther   string     `json:"refusal_reason_other"`
	IntendedDeliveryDate *time.Time `json:"intended_delivery_date,omitempty"`
}

// ValidateInvitationResponse applies the response rules: accepting requires
// an intended delivery date; declining requires a refusal reason, where the
// free-text explanation and the "other" reason are mutually exclusive.
func ValidateInvitationResponse(form *InvitationResponseForm) *ValidationResult {
	result := &ValidationResult{}
	if form.Accept {
		if form.IntendedDeliveryDate == nil {
			result.AddError("intended_delivery_date", "an intended delivery date is required when accepting")
		}
		return result
	}
	switch form.RefusalReason {
	case "":
		result.AddError("refusal_reason", "a refusal reason is required when declining")
	case models.RefusalOther:
		if strings.TrimSpace(form.RefusalReasonOther) == "" {
			result.AddError("refusal_reason_other", "please explain your reason")
		}
	case models.RefusalTooBusy, models.RefusalNotExpert, models.RefusalConflictInterest, models.RefusalVacation:
		if strings.TrimSpace(form.RefusalReasonOther) != "" {
			result.AddError("refusal_reason_other", "an explanation only accompanies the \"other\" reason")
		}
	default:
		result.AddError("refusal_reason", fmt.Sprintf("unknown refusal reason %q", form.RefusalReason))
	}
	return result
}

// Respond records the referee's accept/decline answer on an invitation.
func (s *RefereeingService) Respond(invitationID int, refereeID *int, form *InvitationResponseForm) (*models.RefereeInvitation, error) {
	if validation := ValidateInvitationResponse(form); !validation.OK() {
		return nil, validation
	}
	var invitation models.RefereeInvitation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("invitation_id = ?", invitationID).First(&invitation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invitation %d: %w", invitationID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if refereeID != nil && invitation.RefereeID != nil && *invitation.RefereeID != *refereeID {
			return fmt.Errorf("invitation %d does not belong to referee %d: %w", invitationID, *refereeID, ErrForbidden)
		}
		if invitation.Cancelled {
			return fmt.Errorf("invitation %d was cancelled: %w", invitationID, ErrPrecondition)
		}
		if invitation.Accepted != nil {
			return fmt.Errorf("invitation %d already answered: %w", invitationID, ErrPrecondition)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"accepted":       form.Accept,
			"date_responded": now,
		}
		if form.Accept {
			updates["intended_delivery_date"] = form.IntendedDeliveryDate
		} else {
			updates["refusal_reason"] = form.RefusalReason
			if form.RefusalReason == models.RefusalOther {
				updates["refusal_reason_other"] = form.RefusalReasonOther
			}
		}
		if err := tx.Model(&models.RefereeInvitation{}).
			Where("invitation_id = ?", invitationID).
			Updates(updates).Error; err != nil {
			return err
		}
		accepted := form.Accept
		invitation.Accepted = &accepted
		invitation.DateResponded = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Cancel withdraws an invitation; cancelled invitations no longer count as
// open.
func (s *RefereeingService) Cancel(invitationID, actorID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var invitation models.RefereeInvitation
		err := tx.Where("invitation_id = ?", invitationID).First(&invitation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invitation %d: %w", invitationID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if invitation.Fulfilled {
			return fmt.Errorf("invitation %d is already fulfilled: %w", invitationID, ErrPrecondition)
		}
		return tx.Model(&models.RefereeInvitation{}).
			Where("invitation_id = ?", invitationID).
			Update("cancelled", true).Error
	})
}

// Remind bumps the reminder counters on an open invitation.
func (s *RefereeingService) Remind(invitationID, actorID int) (*models.RefereeInvitation, error) {
	var invitation models.RefereeInvitation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("invitation_id = ?", invitationID).First(&invitation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invitation %d: %w", invitationID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !invitation.IsOpen() {
			return fmt.Errorf("invitation %d is not open: %w", invitationID, ErrPrecondition)
		}
		now := time.Now()
		if err := tx.Model(&models.RefereeInvitation{}).
			Where("invitation_id = ?", invitationID).
			Updates(map[string]interface{}{
				"nr_reminders":       gorm.Expr("nr_reminders + 1"),
				"date_last_reminded": now,
			}).Error; err != nil {
			return err
		}
		invitation.NrReminders++
		invitation.DateLastReminded = &now
		if invitation.RefereeID != nil {
			return s.notifier.Notify(tx, *invitation.RefereeID, "info", "Refereeing reminder",
				"A report on the submission you agreed to referee is still awaited.", &invitation.SubmissionID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ReportForm carries a referee's report input.
type ReportForm struct {
	Recommendation   string `json:"recommendation" binding:"required"`
	Strengths        string `json:"strengths"`
	Weaknesses       string `json:"weaknesses"`
	ReportText       string `json:"report_text" binding:"required"`
	RequestedChanges string `json:"requested_changes"`
	Anonymous        bool   `json:"anonymous"`
}

// SubmitReport files a referee's report. Matching invitations for the
// referee/submission pair are fulfilled; if the authors flagged the
// referee's surname, the report is marked for extra scrutiny. Reports filed
// after a recommendation was formulated are addenda.
func (s *RefereeingService) SubmitReport(submissionID, authorID int, form *ReportForm) (*models.Report, error) {
	validation := &ValidationResult{}
	switch form.Recommendation {
	case models.RecPublish, models.RecMinorRevision, models.RecMajorRevision, models.RecReject:
	default:
		validation.AddError("recommendation", fmt.Sprintf("unknown recommendation %q", form.Recommendation))
	}
	if strings.TrimSpace(form.ReportText) == "" {
		validation.AddError("report_text", "the report text cannot be empty")
	}
	if !validation.OK() {
		return nil, validation
	}

	var report *models.Report
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		err := tx.Where("submission_id = ?", submissionID).First(&submission).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("submission %d: %w", submissionID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !submission.OpenForReporting {
			return fmt.Errorf("submission %d is not open for reporting: %w", submissionID, ErrPrecondition)
		}

		var author models.User
		if err := tx.Where("user_id = ?", authorID).First(&author).Error; err != nil {
			return err
		}

		reportType := models.ReportTypeNormal
		var nrActiveRecs int64
		if err := tx.Model(&models.EICRecommendation{}).
			Where("submission_id = ? AND status != ?", submissionID, models.RecommendationDeprecated).
			Count(&nrActiveRecs).Error; err != nil {
			return err
		}
		if nrActiveRecs > 0 {
			reportType = models.ReportTypeAddendum
		}

		now := time.Now()
		report = &models.Report{
			SubmissionID:   submissionID,
			AuthorID:       authorID,
			Status:         models.ReportUnvetted,
			ReportType:     reportType,
			Recommendation: &form.Recommendation,
			ReportText:     form.ReportText,
			Anonymous:      form.Anonymous,
			Flagged:        refereeIsFlagged(&submission, author.LastName),
			DateSubmitted:  now,
		}
		if form.Strengths != "" {
			report.Strengths = &form.Strengths
		}
		if form.Weaknesses != "" {
			report.Weaknesses = &form.Weaknesses
		}
		if form.RequestedChanges != "" {
			report.RequestedChanges = &form.RequestedChanges
		}
		if err := tx.Create(report).Error; err != nil {
			return err
		}

		return tx.Model(&models.RefereeInvitation{}).
			Where("submission_id = ? AND referee_id = ? AND cancelled = ?", submissionID, authorID, false).
			Update("fulfilled", true).Error
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// refereeIsFlagged checks the authors' free-text flagged-referees list for
// the referee's surname.
func refereeIsFlagged(submission *models.Submission, surname string) bool {
	if submission.RefereesFlagged == nil || surname == "" {
		return false
	}
	return strings.Contains(strings.ToLower(*submission.RefereesFlagged), strings.ToLower(surname))
}

// VetReportForm carries the editor's vetting verdict on a report.
type VetReportForm struct {
	Accept        bool   `json:"accept"`
	RefusalReason string `json:"refusal_reason"`
}

// ValidateVetReport enforces that refusing carries one of the closed set of
// refusal reason codes.
func ValidateVetReport(form *VetReportForm) *ValidationResult {
	result := &ValidationResult{}
	if form.Accept {
		return result
	}
	if form.RefusalReason == "" {
		result.AddError("refusal_reason", "a refusal reason is required when refusing a report")
		return result
	}
	for _, status := range models.ReportRefusalStatuses {
		if form.RefusalReason == status {
			return result
		}
	}
	result.AddError("refusal_reason", fmt.Sprintf("unknown refusal reason %q", form.RefusalReason))
	return result
}

// VetReport accepts or refuses a submitted report.
func (s *RefereeingService) VetReport(reportID, vettedByID int, form *VetReportForm) (*models.Report, error) {
	if validation := ValidateVetReport(form); !validation.OK() {
		return nil, validation
	}
	var report models.Report
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("report_id = ?", reportID).First(&report).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("report %d: %w", reportID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if report.Status != models.ReportUnvetted {
			return fmt.Errorf("report %d is not awaiting vetting: %w", reportID, ErrPrecondition)
		}
		status := models.ReportVetted
		if !form.Accept {
			status = form.RefusalReason
		}
		if err := tx.Model(&models.Report{}).
			Where("report_id = ?", reportID).
			Updates(map[string]interface{}{
				"status":    status,
				"vetted_by": vettedByID,
			}).Error; err != nil {
			return err
		}
		report.Status = status
		report.VettedByID = &vettedByID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}
