package models

import (
	"time"

	"gorm.io/datatypes"
)

// Visualization is a user-saved citation network between opinion clusters.
// Deleting one moves it to the trash; a background job purges trashed items
// after a grace period.
type Visualization struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `json:"user_id" gorm:"index;size:128;not null"`

	Title string `json:"title" gorm:"not null"`
	Slug  string `json:"slug,omitempty" gorm:"index"`

	Published   bool       `json:"published" gorm:"default:false"`
	Deleted     bool       `json:"deleted" gorm:"index;default:false"`
	DateDeleted *time.Time `json:"date_deleted,omitempty"`

	ViewCount int `json:"view_count" gorm:"default:0"`

	// SeriesJSON holds the serialized network; CaseCount is derived from it
	// on every write so listings never have to parse the blob.
	CaseCount  int            `json:"case_count" gorm:"default:0"`
	SeriesJSON datatypes.JSON `json:"series_json,omitempty" gorm:"type:jsonb"`
}

// TableName sets the explicit table name.
func (Visualization) TableName() string {
	return "visualizations"
}
