package models

import "time"

// Deposit targets.
const (
	DepositTargetCrossref = "crossref"
	DepositTargetDOAJ     = "doaj"
)

// Deposit records one metadata deposit attempt for a Publication. The XML
// payload itself is produced by the external gateway; the workflow only
// tracks success/failure so EdAdmin can retry manually.
type Deposit struct {
	DepositID         int        `gorm:"primaryKey;column:deposit_id" json:"deposit_id"`
	PublicationID     int        `gorm:"column:publication_id;index" json:"publication_id"`
	Target            string     `gorm:"column:target" json:"target"`
	DOIBatchID        string     `gorm:"column:doi_batch_id" json:"doi_batch_id"`
	DepositSuccessful bool       `gorm:"column:deposit_successful" json:"deposit_successful"`
	ResponseText      *string    `gorm:"column:response_text" json:"response_text,omitempty"`
	DepositedOn       time.Time  `gorm:"column:deposited_on" json:"deposited_on"`
	CreateAt          *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt          *time.Time `gorm:"column:update_at" json:"update_at"`

	Publication Publication `gorm:"foreignKey:PublicationID;references:PublicationID" json:"publication,omitempty"`
}

// TableName specifies the table for Deposit.
func (Deposit) TableName() string {
	return "deposits"
}
