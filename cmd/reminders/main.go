package main

import (
	"log"
	"os"
	"time"

	"scipost-api/config"
	"scipost-api/models"
	"scipost-api/services"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// The reminder scans are advisory: a passed deadline never fails a
// submission by itself, it only produces reminders. Status transitions stay
// with the editorial workflow.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	config.InitDB()

	schedule := os.Getenv("REMINDER_CRON")
	if schedule == "" {
		schedule = "0 6 * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, runScans); err != nil {
		log.Fatal("Invalid REMINDER_CRON schedule:", err)
	}

	log.Printf("Reminder scans scheduled (%s)", schedule)
	if os.Getenv("REMINDER_RUN_ON_START") == "true" {
		runScans()
	}
	c.Run()
}

func runScans() {
	log.Println("Running reminder scans")
	scanAssignmentDeadlines()
	scanReportingDeadlines()
	scanVotingDeadlines()
}

// scanAssignmentDeadlines nudges Fellows with open assignments on
// submissions whose assignment window has passed.
func scanAssignmentDeadlines() {
	notifier := services.NewNotificationService(config.DB)
	now := time.Now()

	var assignments []models.EditorialAssignment
	err := config.DB.
		Joins("JOIN submissions ON submissions.submission_id = editorial_assignments.submission_id").
		Where("submissions.status = ? AND submissions.assignment_deadline < ?", models.SubSeekingAssignment, now).
		Where("editorial_assignments.status IN ?", []string{models.AssignmentPreassigned, models.AssignmentInvited}).
		Find(&assignments).Error
	if err != nil {
		log.Printf("Warning: assignment deadline scan failed: %v", err)
		return
	}

	for _, assignment := range assignments {
		submissionID := assignment.SubmissionID
		err := notifier.Notify(config.DB, assignment.ToID, "warning", "Assignment awaiting your answer",
			"The assignment period of a submission awaiting your answer has passed.", &submissionID)
		if err != nil {
			log.Printf("Warning: could not notify fellow %d: %v", assignment.ToID, err)
		}
	}
	log.Printf("Assignment deadline scan: %d open assignment(s) reminded", len(assignments))
}

// scanReportingDeadlines bumps the reminder counters on open invitations of
// submissions whose reporting deadline has passed.
func scanReportingDeadlines() {
	refereeing := services.NewRefereeingService(config.DB)
	now := time.Now()

	var invitations []models.RefereeInvitation
	err := config.DB.
		Joins("JOIN submissions ON submissions.submission_id = referee_invitations.submission_id").
		Where("submissions.status = ? AND submissions.reporting_deadline < ?", models.SubInRefereeing, now).
		Where("referee_invitations.accepted = ? AND referee_invitations.fulfilled = ? AND referee_invitations.cancelled = ?",
			true, false, false).
		Find(&invitations).Error
	if err != nil {
		log.Printf("Warning: reporting deadline scan failed: %v", err)
		return
	}

	reminded := 0
	for _, invitation := range invitations {
		// No more than one reminder per week per invitation.
		if invitation.DateLastReminded != nil && now.Sub(*invitation.DateLastReminded) < 7*24*time.Hour {
			continue
		}
		if _, err := refereeing.Remind(invitation.InvitationID, invitation.InvitedByID); err != nil {
			log.Printf("Warning: could not remind invitation %d: %v", invitation.InvitationID, err)
			continue
		}
		reminded++
	}
	log.Printf("Reporting deadline scan: %d invitation(s) reminded", reminded)
}

// scanVotingDeadlines nudges eligible Fellows who have not voted on a
// recommendation whose voting deadline has passed.
func scanVotingDeadlines() {
	notifier := services.NewNotificationService(config.DB)
	now := time.Now()

	var recommendations []models.EICRecommendation
	err := config.DB.
		Where("status = ? AND voting_deadline < ?", models.RecommendationPutToVoting, now).
		Find(&recommendations).Error
	if err != nil {
		log.Printf("Warning: voting deadline scan failed: %v", err)
		return
	}

	reminded := 0
	for _, recommendation := range recommendations {
		var missing []models.RecommendationEligible
		err := config.DB.
			Where("recommendation_id = ?", recommendation.RecommendationID).
			Where("fellow_id NOT IN (?)",
				config.DB.Model(&models.RecommendationVote{}).
					Select("fellow_id").
					Where("recommendation_id = ?", recommendation.RecommendationID)).
			Find(&missing).Error
		if err != nil {
			log.Printf("Warning: vote scan for recommendation %d failed: %v", recommendation.RecommendationID, err)
			continue
		}
		submissionID := recommendation.SubmissionID
		for _, eligible := range missing {
			err := notifier.Notify(config.DB, eligible.FellowID, "warning", "Your vote is awaited",
				"The voting deadline on an editorial recommendation has passed and your vote is still missing.",
				&submissionID)
			if err != nil {
				log.Printf("Warning: could not notify fellow %d: %v", eligible.FellowID, err)
				continue
			}
			reminded++
		}
	}
	log.Printf("Voting deadline scan: %d fellow(s) reminded", reminded)
}
