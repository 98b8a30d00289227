package models

import (
	"time"
)

// Favorite is a user-saved pointer to exactly one piece of content: an opinion
// cluster, an oral-argument recording, a docket, or a RECAP document. Exactly
// one of the four target fields is populated.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `json:"user_id" gorm:"index;size:128;not null;index:idx_favorites_user_cluster,unique;index:idx_favorites_user_audio,unique;index:idx_favorites_user_docket,unique;index:idx_favorites_user_recap,unique"`

	Name  string `json:"name" gorm:"not null"`
	Notes string `json:"notes,omitempty" gorm:"type:text"`

	// Partial unique indexes enforce one favorite per (user, target) even
	// under concurrent inserts.
	ClusterID  *uint `json:"cluster_id,omitempty" gorm:"index:idx_favorites_user_cluster,unique,where:cluster_id IS NOT NULL"`
	AudioID    *uint `json:"audio_id,omitempty" gorm:"index:idx_favorites_user_audio,unique,where:audio_id IS NOT NULL"`
	DocketID   *uint `json:"docket_id,omitempty" gorm:"index:idx_favorites_user_docket,unique,where:docket_id IS NOT NULL"`
	RecapDocID *uint `json:"recap_doc_id,omitempty" gorm:"index:idx_favorites_user_recap,unique,where:recap_doc_id IS NOT NULL"`
}

// TableName sets the explicit table name.
func (Favorite) TableName() string {
	return "favorites"
}

// TargetCount returns how many of the four target references are set. A valid
// favorite has exactly one.
func (f *Favorite) TargetCount() int {
	n := 0
	for _, set := range []bool{f.ClusterID != nil, f.AudioID != nil, f.DocketID != nil, f.RecapDocID != nil} {
		if set {
			n++
		}
	}
	return n
}
