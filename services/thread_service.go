package services

import (
	"errors"
	"fmt"
	"time"

	"scipost-api/models"

	"gorm.io/gorm"
)

// ThreadService handles identity and version-chain bookkeeping for a
// manuscript series sharing one thread hash.
type ThreadService struct {
	db *gorm.DB
}

// NewThreadService creates a thread service on the given database.
func NewThreadService(db *gorm.DB) *ThreadService {
	return &ThreadService{db: db}
}

// LatestInThread returns the most recently submitted version of a thread.
// Unless includeHistorical is set, the lookup is restricted to
// currently-accessible statuses. A thread with no matching version returns
// ErrNotFound.
func (s *ThreadService) LatestInThread(threadHash string, includeHistorical bool) (*models.Submission, error) {
	var submission models.Submission
	query := s.db.Where("thread_hash = ?", threadHash)
	if !includeHistorical {
		query = query.Where("status IN ?", models.StatusesPubliclyAccessible)
	}
	err := query.Order("submission_date DESC").First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("thread %s: %w", threadHash, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// LinkResubmission wires a new version into its thread: the predecessor is
// closed for reporting and marked resubmitted, and the new version inherits
// the editor-in-charge through a fresh, pre-accepted editorial assignment so
// refereeing continues without re-running the assignment phase. Runs inside
// the caller's transaction; next must already have been created.
func LinkResubmission(tx *gorm.DB, prev, next *models.Submission, now time.Time) error {
	next.IsResubmissionOfID = &prev.SubmissionID
	next.ThreadHash = prev.ThreadHash
	next.EditorInChargeID = prev.EditorInChargeID
	next.RefereesFlagged = prev.RefereesFlagged

	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", next.SubmissionID).
		Updates(map[string]interface{}{
			"is_resubmission_of": prev.SubmissionID,
			"thread_hash":        prev.ThreadHash,
			"editor_in_charge":   next.EditorInChargeID,
			"referees_flagged":   next.RefereesFlagged,
		}).Error; err != nil {
		return fmt.Errorf("linking resubmission: %w", err)
	}

	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", prev.SubmissionID).
		Updates(map[string]interface{}{
			"status":              models.SubResubmitted,
			"open_for_reporting":  false,
			"open_for_commenting": false,
			"reporting_deadline":  now,
		}).Error; err != nil {
		return fmt.Errorf("closing superseded version: %w", err)
	}

	// Carry the pool over so the same Fellows keep visibility.
	var pool []models.SubmissionFellow
	if err := tx.Where("submission_id = ?", prev.SubmissionID).Find(&pool).Error; err != nil {
		return err
	}
	for _, member := range pool {
		entry := models.SubmissionFellow{
			SubmissionID: next.SubmissionID,
			FellowID:     member.FellowID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}

	if prev.EditorInChargeID != nil {
		assignment := models.EditorialAssignment{
			SubmissionID: next.SubmissionID,
			ToID:         *prev.EditorInChargeID,
			Status:       models.AssignmentAccepted,
			DateAnswered: &now,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("carrying editor-in-charge over: %w", err)
		}
	}

	return logSubmissionEvent(tx, next.SubmissionID, "resubmission_linked", nil, nil, nil,
		fmt.Sprintf("supersedes submission %d", prev.SubmissionID))
}
