package services

import (
	"fmt"
	"log"
	"time"

	"scipost-api/config"
	"scipost-api/models"

	"gorm.io/gorm"
)

// NotificationService persists in-app notifications and mirrors them by
// mail. Mail delivery is best-effort: a failed send is logged and never
// blocks or rolls back the workflow write that triggered it.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a notification service on the given
// database.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify writes a notification row inside the caller's transaction and
// queues the mail copy.
func (s *NotificationService) Notify(tx *gorm.DB, userID int, kind, title, message string, submissionID *int) error {
	notification := models.Notification{
		UserID:              userID,
		Title:               title,
		Message:             message,
		Type:                kind,
		RelatedSubmissionID: submissionID,
		CreateAt:            time.Now(),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	var user models.User
	if err := tx.Select("email").Where("user_id = ?", userID).First(&user).Error; err != nil {
		log.Printf("Warning: notification mail skipped, user %d not found: %v", userID, err)
		return nil
	}
	go func(to, subject, body string) {
		if err := config.SendMail([]string{to}, subject, body); err != nil {
			log.Printf("Warning: failed to send notification mail to %s: %v", to, err)
		}
	}(user.Email, title, "<p>"+message+"</p>")

	return nil
}

// NotifySubmissionFailure reports a terminal failure state to the
// submitting author. No failure is silently absorbed.
func (s *NotificationService) NotifySubmissionFailure(tx *gorm.DB, submission *models.Submission, title, message string) error {
	return s.Notify(tx, submission.SubmittedByID, "error", title, message, &submission.SubmissionID)
}
