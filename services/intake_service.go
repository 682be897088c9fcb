package services

import (
	"errors"
	"fmt"
	"time"

	"scipost-api/models"
	"scipost-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IntakeService creates submissions: identifier handling, thread identity,
// resubmission linking.
type IntakeService struct {
	db        *gorm.DB
	preprints *PreprintService
	threads   *ThreadService
}

// NewIntakeService creates an intake service on the given database.
func NewIntakeService(db *gorm.DB) *IntakeService {
	return &IntakeService{
		db:        db,
		preprints: NewPreprintService(db),
		threads:   NewThreadService(db),
	}
}

// SubmissionForm carries the author's intake input. Either an arXiv-style
// identifier is given, or ScipostNative requests a minted identifier.
type SubmissionForm struct {
	Identifier      string  `json:"identifier"`
	ScipostNative   bool    `json:"scipost_native"`
	PreprintURL     *string `json:"preprint_url,omitempty"`
	Title           string  `json:"title" binding:"required"`
	AuthorList      string  `json:"author_list" binding:"required"`
	Abstract        string  `json:"abstract" binding:"required"`
	SubmittedToID   int     `json:"submitted_to" binding:"required"`
	ProceedingsID   *int    `json:"proceedings_id,omitempty"`
	ThreadHash      *string `json:"thread_hash,omitempty"`
	RefereesFlagged *string `json:"referees_flagged,omitempty"`
}

// CreateSubmission validates the identifier, mints one for SciPost-native
// preprints, and creates the submission at status incoming. When the form
// names an existing thread, the new version is linked as a resubmission of
// the thread's latest accessible version.
func (s *IntakeService) CreateSubmission(authorID int, form *SubmissionForm) (*models.Submission, *ValidationResult, error) {
	validation := &ValidationResult{}
	now := time.Now()

	var journal models.Journal
	err := s.db.Where("journal_id = ?", form.SubmittedToID).First(&journal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		validation.AddError("submitted_to", fmt.Sprintf("unknown journal %d", form.SubmittedToID))
		return nil, validation, nil
	}
	if err != nil {
		return nil, nil, err
	}

	threadHash := uuid.NewString()
	var predecessor *models.Submission
	if form.ThreadHash != nil {
		latest, err := s.threads.LatestInThread(*form.ThreadHash, false)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				validation.AddError("thread_hash", "unknown submission thread")
				return nil, validation, nil
			}
			return nil, nil, err
		}
		if latest.Status != models.SubAwaitingResubmission && latest.InActiveSet() {
			validation.AddError("thread_hash", "the previous version of this thread is still under consideration")
			return nil, validation, nil
		}
		threadHash = *form.ThreadHash
		predecessor = latest
	}

	identifier := form.Identifier
	vnNr := 1
	if form.ScipostNative {
		identifier, err = s.preprints.GenerateScipostIdentifier(threadHash, now)
		if err != nil {
			return nil, nil, err
		}
		_, vnNr, err = utils.ParseScipostIdentifier(identifier)
		if err != nil {
			return nil, nil, err
		}
	} else {
		// Identifier-format problems surface as field errors, never as
		// coerced values.
		_, vn, err := utils.ParseArxivIdentifier(identifier)
		if err != nil {
			validation.AddError("identifier", err.Error())
			return nil, validation, nil
		}
		vnNr = vn
	}

	var submission *models.Submission
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Preprint{}).
			Where("identifier_w_vn_nr = ?", identifier).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			validation.AddError("identifier", fmt.Sprintf("preprint %s was already submitted", identifier))
			return validation
		}

		preprint := models.Preprint{
			IdentifierWVnNr: identifier,
			VnNr:            vnNr,
			URL:             form.PreprintURL,
		}
		if err := tx.Create(&preprint).Error; err != nil {
			return err
		}

		submission = &models.Submission{
			PreprintID:      preprint.PreprintID,
			ThreadHash:      threadHash,
			Title:           form.Title,
			AuthorList:      form.AuthorList,
			Abstract:        form.Abstract,
			SubmittedByID:   authorID,
			SubmittedToID:   form.SubmittedToID,
			ProceedingsID:   form.ProceedingsID,
			Status:          models.SubIncoming,
			VisiblePublic:   false,
			VisiblePool:     false,
			RefereeingCycle: models.CycleUndetermined,
			RefereesFlagged: form.RefereesFlagged,
			SubmissionDate:  now,
		}
		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		if err := logSubmissionEvent(tx, submission.SubmissionID, "submitted", nil, &submission.Status, &authorID,
			identifier); err != nil {
			return err
		}
		if predecessor != nil {
			return LinkResubmission(tx, predecessor, submission, now)
		}
		return nil
	})
	if !validation.OK() {
		return nil, validation, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return submission, validation, nil
}
