package models

import "time"

// Report statuses. Only vetted reports count toward a journal's
// minimal_nr_of_reports threshold. Refusal statuses form a closed set of
// reason codes.
const (
	ReportDraft    = "draft"
	ReportUnvetted = "unvetted"
	ReportVetted   = "vetted"

	ReportRefusedUnclear     = "refused_unclear"
	ReportRefusedIncorrect   = "refused_incorrect"
	ReportRefusedNotUseful   = "refused_not_useful"
	ReportRefusedNotAcademic = "refused_not_academic"
	ReportRefusedDuplicate   = "refused_duplicate"
)

// ReportRefusalStatuses enumerates the refusal reason codes accepted when
// vetting refuses a report.
var ReportRefusalStatuses = []string{
	ReportRefusedUnclear,
	ReportRefusedIncorrect,
	ReportRefusedNotUseful,
	ReportRefusedNotAcademic,
	ReportRefusedDuplicate,
}

// Report types: reports delivered before the EIC recommendation are normal;
// anything after is an addendum.
const (
	ReportTypeNormal   = "report_normal"
	ReportTypeAddendum = "report_addendum"
)

// Recommendation values shared by Report and EICRecommendation.
const (
	RecPublish       = "publish"
	RecMinorRevision = "minor_revision"
	RecMajorRevision = "major_revision"
	RecReject        = "reject"
)

// Report is a referee's submitted evaluation of a Submission.
type Report struct {
	ReportID         int        `gorm:"primaryKey;column:report_id" json:"report_id"`
	SubmissionID     int        `gorm:"column:submission_id;index" json:"submission_id"`
	AuthorID         int        `gorm:"column:author_id" json:"author_id"`
	Status           string     `gorm:"column:status" json:"status"`
	ReportType       string     `gorm:"column:report_type" json:"report_type"`
	Recommendation   *string    `gorm:"column:recommendation" json:"recommendation,omitempty"`
	Strengths        *string    `gorm:"column:strengths" json:"strengths,omitempty"`
	Weaknesses       *string    `gorm:"column:weaknesses" json:"weaknesses,omitempty"`
	ReportText       string     `gorm:"column:report_text" json:"report_text"`
	RequestedChanges *string    `gorm:"column:requested_changes" json:"requested_changes,omitempty"`
	Anonymous        bool       `gorm:"column:anonymous" json:"anonymous"`
	Flagged          bool       `gorm:"column:flagged" json:"flagged"`
	NeedsDOI         bool       `gorm:"column:needs_doi" json:"needs_doi"`
	VettedByID       *int       `gorm:"column:vetted_by" json:"vetted_by,omitempty"`
	DateSubmitted    time.Time  `gorm:"column:date_submitted" json:"date_submitted"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`

	Author   User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	VettedBy *User `gorm:"foreignKey:VettedByID" json:"vetted_by_user,omitempty"`
}

// IsVetted reports whether the report counts toward the journal's minimum
// report threshold.
func (r *Report) IsVetted() bool {
	return r.Status == ReportVetted
}

// TableName specifies the table for Report.
func (Report) TableName() string {
	return "reports"
}
