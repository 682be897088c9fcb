package models

import "time"

// EditorialAssignment statuses.
const (
	AssignmentPreassigned = "preassigned"
	AssignmentInvited     = "invited"
	AssignmentAccepted    = "accepted"
	AssignmentDeclined    = "declined"
	AssignmentDeprecated  = "deprecated"
	AssignmentCompleted   = "completed"
)

// ConditionalAssignmentOffer statuses.
const (
	OfferOffered    = "offered"
	OfferAccepted   = "accepted"
	OfferDeclined   = "declined"
	OfferDeprecated = "deprecated"
)

// EditorialAssignment is one Fellow's candidacy/acceptance to act as
// editor-in-charge for a Submission. At most one accepted assignment exists
// per submission at a time; accepting one deprecates the others.
type EditorialAssignment struct {
	AssignmentID  int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubmissionID  int        `gorm:"column:submission_id;index" json:"submission_id"`
	ToID          int        `gorm:"column:to_id" json:"to_id"`
	Status        string     `gorm:"column:status" json:"status"`
	RefusalReason *string    `gorm:"column:refusal_reason" json:"refusal_reason,omitempty"`
	DateInvited   *time.Time `gorm:"column:date_invited" json:"date_invited,omitempty"`
	DateAnswered  *time.Time `gorm:"column:date_answered" json:"date_answered,omitempty"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`

	To User `gorm:"foreignKey:ToID" json:"to,omitempty"`
}

// NeedsResponse reports whether the assignment is still outstanding.
func (a *EditorialAssignment) NeedsResponse() bool {
	return a.Status == AssignmentPreassigned || a.Status == AssignmentInvited
}

// ConditionalAssignmentOffer lets a Fellow offer to take charge under a
// condition (typically redirection to another journal). Accepting an offer
// that is no longer open is a precondition error, not a validation error.
type ConditionalAssignmentOffer struct {
	OfferID      int        `gorm:"primaryKey;column:offer_id" json:"offer_id"`
	SubmissionID int        `gorm:"column:submission_id;index" json:"submission_id"`
	OfferedByID  int        `gorm:"column:offered_by" json:"offered_by"`
	ForJournalID int        `gorm:"column:for_journal_id" json:"for_journal_id"`
	Status       string     `gorm:"column:status" json:"status"`
	DateOffered  time.Time  `gorm:"column:date_offered" json:"date_offered"`
	DateAnswered *time.Time `gorm:"column:date_answered" json:"date_answered,omitempty"`
	AcceptedByID *int       `gorm:"column:accepted_by" json:"accepted_by,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`

	OfferedBy  User    `gorm:"foreignKey:OfferedByID" json:"offered_by_user,omitempty"`
	ForJournal Journal `gorm:"foreignKey:ForJournalID" json:"for_journal,omitempty"`
}

// TableName overrides
func (EditorialAssignment) TableName() string {
	return "editorial_assignments"
}

func (ConditionalAssignmentOffer) TableName() string {
	return "conditional_assignment_offers"
}
