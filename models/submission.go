package models

import "time"

// Submission statuses. The set is closed; transitions between members are
// guarded by services.workflowRules.
const (
	SubIncoming                = "incoming"
	SubAdmissionFailed         = "admission_failed"
	SubAdmissible              = "admissible"
	SubPreassignment           = "preassignment"
	SubPreassignmentFailed     = "preassignment_failed"
	SubSeekingAssignment       = "seeking_assignment"
	SubAssignmentFailed        = "assignment_failed"
	SubRefereeingInPreparation = "refereeing_in_preparation"
	SubInRefereeing            = "in_refereeing"
	SubRefereeingClosed        = "refereeing_closed"
	SubAwaitingResubmission    = "awaiting_resubmission"
	SubVotingInPreparation     = "voting_in_preparation"
	SubUndergoingVoting        = "undergoing_voting"
	SubAcceptedInTarget        = "accepted_in_target"
	SubAcceptedInAlternative   = "accepted_in_alternative"
	SubRejected                = "rejected"
	SubWithdrawn               = "withdrawn"
	SubResubmitted             = "resubmitted"
	SubPublished               = "published"
)

// Refereeing cycles.
const (
	CycleUndetermined = "undetermined"
	CycleDefault      = "default"
	CycleShort        = "short"
	CycleDirectRec    = "direct_rec"
)

// StatusesActive lists the statuses in which a submission version is the
// live one of its thread. At most one submission per thread may hold one of
// these at any time.
var StatusesActive = []string{
	SubIncoming,
	SubAdmissible,
	SubPreassignment,
	SubSeekingAssignment,
	SubRefereeingInPreparation,
	SubInRefereeing,
	SubRefereeingClosed,
	SubAwaitingResubmission,
	SubVotingInPreparation,
	SubUndergoingVoting,
	SubAcceptedInTarget,
	SubAcceptedInAlternative,
}

// StatusesPubliclyAccessible lists statuses in which a version remains
// visible outside the pool (used by thread "latest" lookups).
var StatusesPubliclyAccessible = append(append([]string{}, StatusesActive...),
	SubResubmitted, SubPublished)

// Submission represents one versioned manuscript submission.
type Submission struct {
	SubmissionID             int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	PreprintID               int        `gorm:"column:preprint_id" json:"preprint_id"`
	ThreadHash               string     `gorm:"column:thread_hash;index" json:"thread_hash"`
	Title                    string     `gorm:"column:title" json:"title"`
	AuthorList               string     `gorm:"column:author_list" json:"author_list"`
	Abstract                 string     `gorm:"column:abstract" json:"abstract"`
	SubmittedByID            int        `gorm:"column:submitted_by" json:"submitted_by"`
	SubmittedToID            int        `gorm:"column:submitted_to" json:"submitted_to"`
	ProceedingsID            *int       `gorm:"column:proceedings_id" json:"proceedings_id,omitempty"`
	Status                   string     `gorm:"column:status" json:"status"`
	EditorInChargeID         *int       `gorm:"column:editor_in_charge" json:"editor_in_charge,omitempty"`
	IsResubmissionOfID       *int       `gorm:"column:is_resubmission_of" json:"is_resubmission_of,omitempty"`
	VisiblePublic            bool       `gorm:"column:visible_public" json:"visible_public"`
	VisiblePool              bool       `gorm:"column:visible_pool" json:"visible_pool"`
	OpenForReporting         bool       `gorm:"column:open_for_reporting" json:"open_for_reporting"`
	OpenForCommenting        bool       `gorm:"column:open_for_commenting" json:"open_for_commenting"`
	RefereeingCycle          string     `gorm:"column:refereeing_cycle" json:"refereeing_cycle"`
	RefereesFlagged          *string    `gorm:"column:referees_flagged" json:"referees_flagged,omitempty"`
	FulfilledExpectations    *string    `gorm:"column:fulfilled_expectations" json:"fulfilled_expectations,omitempty"`
	NeedsCoauthorshipsUpdate bool       `gorm:"column:needs_coauthorships_update" json:"needs_coauthorships_update"`
	PlagiarismScore          *float64   `gorm:"column:plagiarism_score" json:"plagiarism_score,omitempty"`
	SubmissionDate           time.Time  `gorm:"column:submission_date" json:"submission_date"`
	AssignmentDeadline       *time.Time `gorm:"column:assignment_deadline" json:"assignment_deadline,omitempty"`
	ReportingDeadline        *time.Time `gorm:"column:reporting_deadline" json:"reporting_deadline,omitempty"`
	CreateAt                 *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt                 *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Preprint         Preprint    `gorm:"foreignKey:PreprintID;references:PreprintID" json:"preprint,omitempty"`
	SubmittedBy      User        `gorm:"foreignKey:SubmittedByID;references:UserID" json:"submitted_by_user,omitempty"`
	SubmittedTo      Journal     `gorm:"foreignKey:SubmittedToID;references:JournalID" json:"submitted_to_journal,omitempty"`
	EditorInCharge   *User       `gorm:"foreignKey:EditorInChargeID;references:UserID" json:"editor_in_charge_user,omitempty"`
	IsResubmissionOf *Submission `gorm:"foreignKey:IsResubmissionOfID;references:SubmissionID" json:"is_resubmission_of_submission,omitempty"`

	Assignments     []EditorialAssignment `gorm:"foreignKey:SubmissionID" json:"assignments,omitempty"`
	Invitations     []RefereeInvitation   `gorm:"foreignKey:SubmissionID" json:"invitations,omitempty"`
	Reports         []Report              `gorm:"foreignKey:SubmissionID" json:"reports,omitempty"`
	Recommendations []EICRecommendation   `gorm:"foreignKey:SubmissionID" json:"recommendations,omitempty"`
	Events          []SubmissionEvent     `gorm:"foreignKey:SubmissionID" json:"events,omitempty"`
	Pool            []SubmissionFellow    `gorm:"foreignKey:SubmissionID" json:"pool,omitempty"`
}

// InActiveSet reports whether this version is the live one of its thread.
func (s *Submission) InActiveSet() bool {
	for _, st := range StatusesActive {
		if s.Status == st {
			return true
		}
	}
	return false
}

// InTerminalState reports whether no further editorial action applies to
// this version.
func (s *Submission) InTerminalState() bool {
	switch s.Status {
	case SubAdmissionFailed, SubPreassignmentFailed, SubAssignmentFailed,
		SubRejected, SubWithdrawn, SubResubmitted, SubPublished:
		return true
	}
	return false
}

// SubmissionFellow is the pool join table: Fellows with visibility and
// voting rights over one Submission.
type SubmissionFellow struct {
	ID           int        `gorm:"primaryKey;column:id" json:"id"`
	SubmissionID int        `gorm:"column:submission_id;index" json:"submission_id"`
	FellowID     int        `gorm:"column:fellow_id" json:"fellow_id"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`

	Fellow User `gorm:"foreignKey:FellowID" json:"fellow,omitempty"`
}

// SubmissionEvent is the audit trail for status changes and editorial
// actions on a submission.
type SubmissionEvent struct {
	EventID      int       `gorm:"primaryKey;column:event_id" json:"event_id"`
	SubmissionID int       `gorm:"column:submission_id;index" json:"submission_id"`
	Event        string    `gorm:"column:event" json:"event"`
	OldStatus    *string   `gorm:"column:old_status" json:"old_status,omitempty"`
	NewStatus    *string   `gorm:"column:new_status" json:"new_status,omitempty"`
	ActorID      *int      `gorm:"column:actor_id" json:"actor_id,omitempty"`
	Notes        *string   `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// SubmissionTiering records the tier attached to a publish recommendation.
// Replaced wholesale on reformulation.
type SubmissionTiering struct {
	TieringID    int        `gorm:"primaryKey;column:tiering_id" json:"tiering_id"`
	SubmissionID int        `gorm:"column:submission_id;index" json:"submission_id"`
	FellowID     int        `gorm:"column:fellow_id" json:"fellow_id"`
	ForJournalID int        `gorm:"column:for_journal_id" json:"for_journal_id"`
	Tier         int        `gorm:"column:tier" json:"tier"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (SubmissionFellow) TableName() string {
	return "submission_fellows"
}

func (SubmissionEvent) TableName() string {
	return "submission_events"
}

func (SubmissionTiering) TableName() string {
	return "submission_tierings"
}
