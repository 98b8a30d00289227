package models

import (
	"time"
)

// Tag is a user-owned label attachable to dockets. Names are unique per owner.
// A tag starts private; publishing it makes its listing readable by anyone,
// and unpublishing revokes that immediately.
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `json:"user_id" gorm:"uniqueIndex:idx_tags_user_name;size:128;not null"`
	Name   string `json:"name" gorm:"uniqueIndex:idx_tags_user_name;size:128;not null"`

	Description string `json:"description,omitempty" gorm:"type:text"`
	Published   bool   `json:"published" gorm:"default:false"`
	ViewCount   int    `json:"view_count" gorm:"default:0"`

	Dockets []Docket `json:"dockets,omitempty" gorm:"many2many:docket_tags"`
}

// TableName sets the explicit table name.
func (Tag) TableName() string {
	return "tags"
}

// DocketTag is the association edge between a tag and a docket. The composite
// unique index makes the attach/detach toggle race-safe.
type DocketTag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	TagID    uint `json:"tag_id" gorm:"index:idx_docket_tags_edge,unique;not null"`
	DocketID uint `json:"docket_id" gorm:"index:idx_docket_tags_edge,unique;not null"`
}

// TableName sets the explicit table name.
func (DocketTag) TableName() string {
	return "docket_tags"
}
