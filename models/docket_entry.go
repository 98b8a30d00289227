package models

import (
	"time"
)

// DocketEntry is one filing event on a docket. Minute entries carry no entry
// number and are identified by their primary key instead.
type DocketEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DocketID uint `json:"docket_id" gorm:"index;not null"`

	EntryNumber *int64     `json:"entry_number,omitempty" gorm:"index"`
	DateFiled   *time.Time `json:"date_filed,omitempty"`

	// Description is upstream-sanitized HTML; it is stored and served as-is.
	Description string `json:"description,omitempty" gorm:"type:text"`

	Documents []RECAPDocument `json:"documents,omitempty" gorm:"foreignKey:DocketEntryID"`
}

// TableName sets the explicit table name.
func (DocketEntry) TableName() string {
	return "docket_entries"
}
