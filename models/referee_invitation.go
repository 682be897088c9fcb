package models

import "time"

// Refusal reasons a referee may give when declining an invitation. "other"
// requires a free-text explanation; any other reason must not carry one.
const (
	RefusalTooBusy          = "too_busy"
	RefusalNotExpert        = "not_expert"
	RefusalConflictInterest = "conflict_of_interest"
	RefusalVacation         = "vacation"
	RefusalOther            = "other"
)

// RefereeInvitation is an invitation for a named person to referee a
// Submission. Accepted is tri-state: nil while pending.
type RefereeInvitation struct {
	InvitationID         int        `gorm:"primaryKey;column:invitation_id" json:"invitation_id"`
	SubmissionID         int        `gorm:"column:submission_id;index" json:"submission_id"`
	RefereeID            *int       `gorm:"column:referee_id" json:"referee_id,omitempty"`
	FirstName            string     `gorm:"column:first_name" json:"first_name"`
	LastName             string     `gorm:"column:last_name" json:"last_name"`
	EmailAddress         string     `gorm:"column:email_address" json:"email_address"`
	InvitedByID          int        `gorm:"column:invited_by" json:"invited_by"`
	Accepted             *bool      `gorm:"column:accepted" json:"accepted,omitempty"`
	RefusalReason        *string    `gorm:"column:refusal_reason" json:"refusal_reason,omitempty"`
	RefusalReasonOther   *string    `gorm:"column:refusal_reason_other" json:"refusal_reason_other,omitempty"`
	Fulfilled            bool       `gorm:"column:fulfilled" json:"fulfilled"`
	Cancelled            bool       `gorm:"column:cancelled" json:"cancelled"`
	NrReminders          int        `gorm:"column:nr_reminders" json:"nr_reminders"`
	DateLastReminded     *time.Time `gorm:"column:date_last_reminded" json:"date_last_reminded,omitempty"`
	IntendedDeliveryDate *time.Time `gorm:"column:intended_delivery_date" json:"intended_delivery_date,omitempty"`
	DateInvited          time.Time  `gorm:"column:date_invited" json:"date_invited"`
	DateResponded        *time.Time `gorm:"column:date_responded" json:"date_responded,omitempty"`
	CreateAt             *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"update_at"`

	Referee   *User `gorm:"foreignKey:RefereeID" json:"referee,omitempty"`
	InvitedBy User  `gorm:"foreignKey:InvitedByID" json:"invited_by_user,omitempty"`
}

// IsOpen reports whether the invitation still awaits a report: not
// cancelled, not fulfilled, not declined.
func (i *RefereeInvitation) IsOpen() bool {
	if i.Cancelled || i.Fulfilled {
		return false
	}
	return i.Accepted == nil || *i.Accepted
}

// TableName specifies the table for RefereeInvitation.
func (RefereeInvitation) TableName() string {
	return "referee_invitations"
}
