package models

import "time"

// EICRecommendation statuses. Exactly one non-deprecated recommendation
// exists per submission at a time.
const (
	RecommendationDraft       = "draft"
	RecommendationPutToVoting = "put_to_voting"
	RecommendationFixed       = "fixed"
	RecommendationDeprecated  = "deprecated"
)

// Vote values for RecommendationVote.
const (
	VoteFor     = "for"
	VoteAgainst = "against"
	VoteAbstain = "abstain"
)

// EICRecommendation is the editor-in-charge's formal recommendation on a
// Submission. Reformulation deprecates all earlier versions and bumps
// Version.
type EICRecommendation struct {
	RecommendationID           int        `gorm:"primaryKey;column:recommendation_id" json:"recommendation_id"`
	SubmissionID               int        `gorm:"column:submission_id;index" json:"submission_id"`
	FormulatedByID             int        `gorm:"column:formulated_by" json:"formulated_by"`
	ForJournalID               int        `gorm:"column:for_journal_id" json:"for_journal_id"`
	Recommendation             string     `gorm:"column:recommendation" json:"recommendation"`
	Tier                       *int       `gorm:"column:tier" json:"tier,omitempty"`
	Status                     string     `gorm:"column:status" json:"status"`
	Version                    int        `gorm:"column:version" json:"version"`
	RemarksForEditorialCollege *string    `gorm:"column:remarks_for_editorial_college" json:"remarks_for_editorial_college,omitempty"`
	RemarksForAuthors          *string    `gorm:"column:remarks_for_authors" json:"remarks_for_authors,omitempty"`
	RequestedChanges           *string    `gorm:"column:requested_changes" json:"requested_changes,omitempty"`
	VotingDeadline             *time.Time `gorm:"column:voting_deadline" json:"voting_deadline,omitempty"`
	DateSubmitted              time.Time  `gorm:"column:date_submitted" json:"date_submitted"`
	CreateAt                   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt                   *time.Time `gorm:"column:update_at" json:"update_at"`

	FormulatedBy User                     `gorm:"foreignKey:FormulatedByID" json:"formulated_by_user,omitempty"`
	ForJournal   Journal                  `gorm:"foreignKey:ForJournalID" json:"for_journal,omitempty"`
	Eligible     []RecommendationEligible `gorm:"foreignKey:RecommendationID" json:"eligible,omitempty"`
	Votes        []RecommendationVote     `gorm:"foreignKey:RecommendationID" json:"votes,omitempty"`
}

// IsActive reports whether this is the live recommendation of its
// submission.
func (r *EICRecommendation) IsActive() bool {
	return r.Status != RecommendationDeprecated
}

// MayBeReformulated reports whether the EIC can still replace this
// recommendation.
func (r *EICRecommendation) MayBeReformulated() bool {
	return r.Status == RecommendationDraft || r.Status == RecommendationPutToVoting
}

// RecommendationEligible marks one Fellow as eligible to vote on one
// recommendation.
type RecommendationEligible struct {
	ID               int        `gorm:"primaryKey;column:id" json:"id"`
	RecommendationID int        `gorm:"column:recommendation_id;index" json:"recommendation_id"`
	FellowID         int        `gorm:"column:fellow_id" json:"fellow_id"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`

	Fellow User `gorm:"foreignKey:FellowID" json:"fellow,omitempty"`
}

// RecommendationVote holds one Fellow's vote on one recommendation. Votes
// are mutated only through the dedicated cast-vote action, which removes any
// existing row for the (recommendation, fellow) pair before inserting one,
// keeping "one vote per eligible Fellow" a set-membership toggle.
type RecommendationVote struct {
	ID               int        `gorm:"primaryKey;column:id" json:"id"`
	RecommendationID int        `gorm:"column:recommendation_id;index" json:"recommendation_id"`
	FellowID         int        `gorm:"column:fellow_id" json:"fellow_id"`
	Vote             string     `gorm:"column:vote" json:"vote"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`

	Fellow User `gorm:"foreignKey:FellowID" json:"fellow,omitempty"`
}

// TableName overrides
func (EICRecommendation) TableName() string {
	return "eic_recommendations"
}

func (RecommendationEligible) TableName() string {
	return "recommendation_eligibles"
}

func (RecommendationVote) TableName() string {
	return "recommendation_votes"
}
