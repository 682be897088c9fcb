package models

import "time"

// Preprint represents the preprints table. IdentifierWVnNr carries the
// version suffix (e.g. "2101.01234v2" or "scipost_202101_00031v1") and is
// globally unique; VnNr increments per resubmission within a thread.
type Preprint struct {
	PreprintID      int        `gorm:"primaryKey;column:preprint_id" json:"preprint_id"`
	IdentifierWVnNr string     `gorm:"column:identifier_w_vn_nr;unique" json:"identifier_w_vn_nr"`
	VnNr            int        `gorm:"column:vn_nr" json:"vn_nr"`
	URL             *string    `gorm:"column:url" json:"url,omitempty"`
	CreateAt        *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName specifies the table for Preprint.
func (Preprint) TableName() string {
	return "preprints"
}
