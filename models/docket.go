package models

import (
	"time"
)

// Docket is a single court case record aggregating filings.
type Docket struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CourtID      string `json:"court_id" gorm:"index;not null"`
	CaseName     string `json:"case_name"`
	DocketNumber string `json:"docket_number" gorm:"index"`

	// PACER-side identifier, unique per court but not globally.
	PacerCaseID string `json:"pacer_case_id,omitempty" gorm:"index"`

	DateFiled      *time.Time `json:"date_filed,omitempty"`
	DateLastFiling *time.Time `json:"date_last_filing,omitempty"`

	Entries []DocketEntry `json:"entries,omitempty" gorm:"foreignKey:DocketID"`
	Tags    []Tag         `json:"tags,omitempty" gorm:"many2many:docket_tags"`
}

// TableName sets the explicit table name.
func (Docket) TableName() string {
	return "dockets"
}
