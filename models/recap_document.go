package models

import (
	"time"
)

// Document types. A document is either the main filing on an entry or one of
// its attachments, never both.
const (
	DocumentTypePacer      = 1
	DocumentTypeAttachment = 2
)

// RECAPDocument is a single document on a docket entry, sourced from PACER or
// a free mirror.
type RECAPDocument struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DocketEntryID uint `json:"docket_entry_id" gorm:"index;not null"`

	DocumentType     int    `json:"document_type" gorm:"not null;default:1"`
	DocumentNumber   string `json:"document_number,omitempty"`
	AttachmentNumber *int   `json:"attachment_number,omitempty"`
	PacerDocID       string `json:"pacer_doc_id,omitempty" gorm:"index"`

	// IsSealed suppresses every download and purchase affordance, no matter
	// what the other fields say.
	IsSealed    bool `json:"is_sealed" gorm:"default:false"`
	IsAvailable bool `json:"is_available" gorm:"default:false"`

	// FilepathLocal is relative to the configured documents root. Non-empty
	// means we hold a copy. FilepathIA points at the free archive mirror.
	FilepathLocal string `json:"filepath_local,omitempty"`
	FilepathIA    string `json:"filepath_ia,omitempty"`

	PageCount  *int       `json:"page_count,omitempty"`
	FileSize   int64      `json:"file_size,omitempty"`
	SHA1       string     `json:"sha1,omitempty" gorm:"column:sha1"`
	DateUpload *time.Time `json:"date_upload,omitempty"`
}

// TableName sets the explicit table name.
func (RECAPDocument) TableName() string {
	return "recap_documents"
}

// IsAttachment reports whether the document is an attachment rather than the
// entry's main filing.
func (d *RECAPDocument) IsAttachment() bool {
	return d.DocumentType == DocumentTypeAttachment
}

// HasLocalCopy reports whether a downloadable copy exists on our storage.
func (d *RECAPDocument) HasLocalCopy() bool {
	return d.IsAvailable && d.FilepathLocal != ""
}
