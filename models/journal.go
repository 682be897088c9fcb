package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Journal structure determines which containment levels apply.
const (
	StructureIssuesAndVolumes       = "issues_and_volumes"
	StructureIssuesOnly             = "issues_only"
	StructureIndividualPublications = "individual_publications"
)

// Publication statuses. Withdrawal is a status change, never a deletion, so
// paper numbers are never reused.
const (
	PublicationPublished = "published"
	PublicationWithdrawn = "withdrawn"
)

// Journal represents the journals table.
type Journal struct {
	JournalID            int        `gorm:"primaryKey;column:journal_id" json:"journal_id"`
	Name                 string     `gorm:"column:name" json:"name"`
	DOILabel             string     `gorm:"column:doi_label;unique" json:"doi_label"`
	Structure            string     `gorm:"column:structure" json:"structure"`
	ISSN                 *string    `gorm:"column:issn" json:"issn,omitempty"`
	AssignmentPeriodDays int        `gorm:"column:assignment_period_days" json:"assignment_period_days"`
	RefereeingPeriodDays int        `gorm:"column:refereeing_period_days" json:"refereeing_period_days"`
	MinimalNrOfReports   int        `gorm:"column:minimal_nr_of_reports" json:"minimal_nr_of_reports"`
	CostInfo             *string    `gorm:"column:cost_info" json:"cost_info,omitempty"`
	Active               bool       `gorm:"column:active" json:"active"`
	CreateAt             *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Volumes []Volume `gorm:"foreignKey:JournalID" json:"volumes,omitempty"`
	Issues  []Issue  `gorm:"foreignKey:JournalID" json:"issues,omitempty"`
}

// HasVolumes reports whether the journal's structure includes a volume level.
func (j *Journal) HasVolumes() bool {
	return j.Structure == StructureIssuesAndVolumes
}

// HasIssues reports whether the journal's structure includes an issue level.
func (j *Journal) HasIssues() bool {
	return j.Structure == StructureIssuesAndVolumes || j.Structure == StructureIssuesOnly
}

// AssignmentPeriod returns the assignment window as a duration.
func (j *Journal) AssignmentPeriod() time.Duration {
	return time.Duration(j.AssignmentPeriodDays) * 24 * time.Hour
}

// RefereeingPeriod returns the default reporting window as a duration.
func (j *Journal) RefereeingPeriod() time.Duration {
	return time.Duration(j.RefereeingPeriodDays) * 24 * time.Hour
}

// CostPerPublication looks up the per-publication cost for a year in the
// journal's cost_info JSON map, falling back to the "default" key. A missing
// default is an error.
func (j *Journal) CostPerPublication(year int) (float64, error) {
	costs := map[string]float64{}
	if j.CostInfo != nil && *j.CostInfo != "" {
		if err := json.Unmarshal([]byte(*j.CostInfo), &costs); err != nil {
			return 0, fmt.Errorf("journal %s: malformed cost_info: %w", j.DOILabel, err)
		}
	}
	if cost, ok := costs[fmt.Sprintf("%d", year)]; ok {
		return cost, nil
	}
	cost, ok := costs["default"]
	if !ok {
		return 0, fmt.Errorf("journal %s: cost_info has no default cost", j.DOILabel)
	}
	return cost, nil
}

// Volume represents the volumes table. Only journals whose structure includes
// volumes may own one.
type Volume struct {
	VolumeID  int        `gorm:"primaryKey;column:volume_id" json:"volume_id"`
	JournalID int        `gorm:"column:journal_id" json:"journal_id"`
	Number    int        `gorm:"column:number" json:"number"`
	DOILabel  string     `gorm:"column:doi_label;unique" json:"doi_label"`
	StartDate *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	UntilDate *time.Time `gorm:"column:until_date" json:"until_date,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`

	Journal Journal `gorm:"foreignKey:JournalID;references:JournalID" json:"journal,omitempty"`
	Issues  []Issue `gorm:"foreignKey:VolumeID" json:"issues,omitempty"`
}

// Issue represents the issues table. VolumeID is null for issues-only
// journals, which attach issues directly to the journal.
type Issue struct {
	IssueID   int        `gorm:"primaryKey;column:issue_id" json:"issue_id"`
	JournalID int        `gorm:"column:journal_id" json:"journal_id"`
	VolumeID  *int       `gorm:"column:volume_id" json:"volume_id,omitempty"`
	Number    int        `gorm:"column:number" json:"number"`
	DOILabel  string     `gorm:"column:doi_label;unique" json:"doi_label"`
	Published bool       `gorm:"column:published" json:"published"`
	StartDate *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	UntilDate *time.Time `gorm:"column:until_date" json:"until_date,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`

	Journal      Journal       `gorm:"foreignKey:JournalID;references:JournalID" json:"journal,omitempty"`
	Volume       *Volume       `gorm:"foreignKey:VolumeID;references:VolumeID" json:"volume,omitempty"`
	Publications []Publication `gorm:"foreignKey:IssueID" json:"publications,omitempty"`
}

// Publication represents the publications table. Exactly one accepted
// Submission backs each Publication. IssueID is null for
// individual-publications journals.
type Publication struct {
	PublicationID           int        `gorm:"primaryKey;column:publication_id" json:"publication_id"`
	JournalID               int        `gorm:"column:journal_id" json:"journal_id"`
	IssueID                 *int       `gorm:"column:issue_id" json:"issue_id,omitempty"`
	SubmissionID            int        `gorm:"column:submission_id" json:"submission_id"`
	DOILabel                string     `gorm:"column:doi_label;unique" json:"doi_label"`
	PaperNr                 int        `gorm:"column:paper_nr" json:"paper_nr"`
	Title                   string     `gorm:"column:title" json:"title"`
	AuthorList              string     `gorm:"column:author_list" json:"author_list"`
	Abstract                string     `gorm:"column:abstract" json:"abstract"`
	Status                  string     `gorm:"column:status" json:"status"`
	Tier                    *int       `gorm:"column:tier" json:"tier,omitempty"`
	PublicationDate         *time.Time `gorm:"column:publication_date" json:"publication_date,omitempty"`
	DOIDepositNeedsUpdating bool       `gorm:"column:doideposit_needs_updating" json:"doideposit_needs_updating"`
	CreateAt                *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt                *time.Time `gorm:"column:update_at" json:"update_at"`

	Journal    Journal     `gorm:"foreignKey:JournalID;references:JournalID" json:"journal,omitempty"`
	Issue      *Issue      `gorm:"foreignKey:IssueID;references:IssueID" json:"issue,omitempty"`
	Submission *Submission `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"submission,omitempty"`
}

// TableName overrides
func (Journal) TableName() string {
	return "journals"
}

func (Volume) TableName() string {
	return "volumes"
}

func (Issue) TableName() string {
	return "issues"
}

func (Publication) TableName() string {
	return "publications"
}
