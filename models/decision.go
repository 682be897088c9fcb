package models

import "time"

// EditorialDecision outcomes.
const (
	DecisionPublish = "publish"
	DecisionReject  = "reject"
)

// EditorialDecision statuses. A reject decision is incompatible with the
// awaiting-offer-acceptance status.
const (
	DecisionAwaitingOfferAcceptance = "awaiting_offer_acceptance"
	DecisionFixedAndAccepted        = "fixed_and_accepted"
	DecisionDeprecated              = "deprecated"
	DecisionOfferRefusedByAuthors   = "offer_refused_by_authors"
)

// EditorialDecision is the final, EdAdmin-fixed outcome after College
// voting.
type EditorialDecision struct {
	DecisionID   int        `gorm:"primaryKey;column:decision_id" json:"decision_id"`
	SubmissionID int        `gorm:"column:submission_id;index" json:"submission_id"`
	ForJournalID int        `gorm:"column:for_journal_id" json:"for_journal_id"`
	Decision     string     `gorm:"column:decision" json:"decision"`
	Status       string     `gorm:"column:status" json:"status"`
	Version      int        `gorm:"column:version" json:"version"`
	Remarks      *string    `gorm:"column:remarks" json:"remarks,omitempty"`
	TakenByID    int        `gorm:"column:taken_by" json:"taken_by"`
	TakenOn      time.Time  `gorm:"column:taken_on" json:"taken_on"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`

	ForJournal Journal `gorm:"foreignKey:ForJournalID" json:"for_journal,omitempty"`
	TakenBy    User    `gorm:"foreignKey:TakenByID" json:"taken_by_user,omitempty"`
}

// TableName specifies the table for EditorialDecision.
func (EditorialDecision) TableName() string {
	return "editorial_decisions"
}
