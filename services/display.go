package services

import (
	"fmt"

	"docket-hand/models"
)

// Availability is the single display variant a document resolves to. The
// precedence is strict: Sealed > Download > Buy > Unavailable, so a sealed
// document never exposes a download or purchase affordance.
type Availability string

const (
	AvailabilitySealed      Availability = "sealed"
	AvailabilityDownload    Availability = "download"
	AvailabilityBuy         Availability = "buy"
	AvailabilityUnavailable Availability = "unavailable"
)

// DocumentAvailability maps a document's state to exactly one display variant.
func DocumentAvailability(sealed, hasLocalCopy, hasPacerLink bool) Availability {
	switch {
	case sealed:
		return AvailabilitySealed
	case hasLocalCopy:
		return AvailabilityDownload
	case hasPacerLink:
		return AvailabilityBuy
	default:
		return AvailabilityUnavailable
	}
}

// EntryAnchor returns the stable in-page anchor for a docket entry. Numbered
// entries anchor on their number; minute entries fall back to the primary key.
func EntryAnchor(e *models.DocketEntry) string {
	if e.EntryNumber != nil {
		return fmt.Sprintf("entry-%d", *e.EntryNumber)
	}
	return fmt.Sprintf("minute-entry-%d", e.ID)
}

// RoleLabel names a document's role on its entry ("Main Document" or
// "Attachment N"). Documents without a document number get no label at all;
// those are minute-entry sub-documents.
func RoleLabel(d *models.RECAPDocument) string {
	if d.DocumentNumber == "" {
		return ""
	}
	if d.IsAttachment() {
		if d.AttachmentNumber != nil {
			return fmt.Sprintf("Attachment %d", *d.AttachmentNumber)
		}
		return "Attachment"
	}
	return "Main Document"
}

// PacerPricer computes the purchase price PACER would charge for a document.
type PacerPricer struct {
	PricePerPage float64
	PriceCap     float64
}

// Price returns the formatted dollar price for a document with the given page
// count, or "" when the page count is unknown. PACER caps the per-document
// charge.
func (p PacerPricer) Price(pageCount *int) string {
	if pageCount == nil || *pageCount <= 0 {
		return ""
	}
	price := float64(*pageCount) * p.PricePerPage
	if price > p.PriceCap {
		price = p.PriceCap
	}
	return fmt.Sprintf("%.2f", price)
}

// DocumentView is the display model for one document on an entry row.
type DocumentView struct {
	ID           uint         `json:"id"`
	RoleLabel    string       `json:"role_label,omitempty"`
	Availability Availability `json:"availability"`
	DownloadPath string       `json:"download_path,omitempty"`
	MirrorPath   string       `json:"mirror_path,omitempty"`
	PacerDocID   string       `json:"pacer_doc_id,omitempty"`
	Price        string       `json:"price,omitempty"`
}

// EntryRow is the display model for one docket entry.
type EntryRow struct {
	Anchor      string         `json:"anchor"`
	EntryNumber string         `json:"entry_number"`
	DateFiled   string         `json:"date_filed"`
	Description string         `json:"description"`
	Documents   []DocumentView `json:"documents"`
}

// dateUnknown is the placeholder shown when an entry has no filing date.
const dateUnknown = "Unknown"

// BuildEntryRows turns persisted docket entries into display rows, keeping the
// order they were handed in. The query owns the ordering, not this function.
func BuildEntryRows(entries []models.DocketEntry, pricer PacerPricer) []EntryRow {
	rows := make([]EntryRow, 0, len(entries))
	for i := range entries {
		e := &entries[i]

		row := EntryRow{
			Anchor:      EntryAnchor(e),
			Description: e.Description,
			DateFiled:   dateUnknown,
		}
		if e.EntryNumber != nil {
			row.EntryNumber = fmt.Sprintf("%d", *e.EntryNumber)
		}
		if e.DateFiled != nil {
			row.DateFiled = e.DateFiled.Format("2006-01-02")
		}

		row.Documents = make([]DocumentView, 0, len(e.Documents))
		for j := range e.Documents {
			d := &e.Documents[j]
			view := DocumentView{
				ID:           d.ID,
				RoleLabel:    RoleLabel(d),
				Availability: DocumentAvailability(d.IsSealed, d.HasLocalCopy(), d.PacerDocID != ""),
			}
			switch view.Availability {
			case AvailabilityDownload:
				view.DownloadPath = d.FilepathLocal
				view.MirrorPath = d.FilepathIA
			case AvailabilityBuy:
				view.PacerDocID = d.PacerDocID
				view.Price = pricer.Price(d.PageCount)
			}
			row.Documents = append(row.Documents, view)
		}
		rows = append(rows, row)
	}
	return rows
}
