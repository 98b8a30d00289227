package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docket-hand/models"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestDocumentAvailabilityPrecedence(t *testing.T) {
	tests := []struct {
		name         string
		sealed       bool
		hasLocalCopy bool
		hasPacerLink bool
		want         Availability
	}{
		{"sealed wins over everything", true, true, true, AvailabilitySealed},
		{"sealed with pacer link only", true, false, true, AvailabilitySealed},
		{"sealed with nothing else", true, false, false, AvailabilitySealed},
		{"local copy beats pacer link", false, true, true, AvailabilityDownload},
		{"local copy alone", false, true, false, AvailabilityDownload},
		{"pacer link alone", false, false, true, AvailabilityBuy},
		{"nothing at all", false, false, false, AvailabilityUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentAvailability(tt.sealed, tt.hasLocalCopy, tt.hasPacerLink))
		})
	}
}

func TestSealedDocumentNeverExposesAffordances(t *testing.T) {
	// A sealed document must never yield a download or buy affordance,
	// whatever the other fields claim.
	for _, hasLocal := range []bool{true, false} {
		for _, hasLink := range []bool{true, false} {
			got := DocumentAvailability(true, hasLocal, hasLink)
			assert.Equal(t, AvailabilitySealed, got)
		}
	}
}

func TestEntryAnchor(t *testing.T) {
	numbered := models.DocketEntry{ID: 7}
	numbered.EntryNumber = int64Ptr(42)
	assert.Equal(t, "entry-42", EntryAnchor(&numbered))

	minute := models.DocketEntry{ID: 7}
	assert.Equal(t, "minute-entry-7", EntryAnchor(&minute))
}

func TestEntryAnchorsUniquePerPage(t *testing.T) {
	entries := []models.DocketEntry{
		{ID: 1, EntryNumber: int64Ptr(1)},
		{ID: 2, EntryNumber: int64Ptr(2)},
		{ID: 3}, // minute entry
		{ID: 4}, // another minute entry
	}
	seen := make(map[string]bool)
	for i := range entries {
		anchor := EntryAnchor(&entries[i])
		assert.False(t, seen[anchor], "duplicate anchor %q", anchor)
		seen[anchor] = true
	}
}

func TestRoleLabel(t *testing.T) {
	main := models.RECAPDocument{DocumentType: models.DocumentTypePacer, DocumentNumber: "12"}
	assert.Equal(t, "Main Document", RoleLabel(&main))

	att := models.RECAPDocument{
		DocumentType:     models.DocumentTypeAttachment,
		DocumentNumber:   "12",
		AttachmentNumber: intPtr(3),
	}
	assert.Equal(t, "Attachment 3", RoleLabel(&att))

	// Minute-entry sub-documents have no document number and get no label.
	sub := models.RECAPDocument{DocumentType: models.DocumentTypeAttachment, AttachmentNumber: intPtr(1)}
	assert.Equal(t, "", RoleLabel(&sub))
}

func TestPacerPrice(t *testing.T) {
	pricer := PacerPricer{PricePerPage: 0.10, PriceCap: 3.00}

	assert.Equal(t, "0.50", pricer.Price(intPtr(5)))
	assert.Equal(t, "3.00", pricer.Price(intPtr(30)))
	// The cap holds for long documents.
	assert.Equal(t, "3.00", pricer.Price(intPtr(500)))
	// Unknown page count means no price shown.
	assert.Equal(t, "", pricer.Price(nil))
	assert.Equal(t, "", pricer.Price(intPtr(0)))
}

func TestBuildEntryRowsMinuteEntryScenario(t *testing.T) {
	// Minute entry with two documents: one sealed, one locally available.
	// Expect one sealed indicator and one download affordance under a single
	// minute-entry anchor.
	entries := []models.DocketEntry{
		{
			ID: 99,
			Documents: []models.RECAPDocument{
				{ID: 1, IsSealed: true},
				{ID: 2, IsAvailable: true, FilepathLocal: "recap/99/2.pdf"},
			},
		},
	}

	rows := BuildEntryRows(entries, PacerPricer{PricePerPage: 0.10, PriceCap: 3.00})
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "minute-entry-99", row.Anchor)
	assert.Equal(t, "", row.EntryNumber)
	assert.Equal(t, "Unknown", row.DateFiled)

	require.Len(t, row.Documents, 2)
	sealed := row.Documents[0]
	assert.Equal(t, AvailabilitySealed, sealed.Availability)
	assert.Empty(t, sealed.DownloadPath)
	assert.Empty(t, sealed.Price)

	download := row.Documents[1]
	assert.Equal(t, AvailabilityDownload, download.Availability)
	assert.Equal(t, "recap/99/2.pdf", download.DownloadPath)
}

func TestBuildEntryRowsKeepsOrderAndFormatsFields(t *testing.T) {
	filed := time.Date(2023, 4, 17, 0, 0, 0, 0, time.UTC)
	pages := 12
	entries := []models.DocketEntry{
		{
			ID:          1,
			EntryNumber: int64Ptr(3),
			DateFiled:   &filed,
			Description: "ORDER granting motion",
			Documents: []models.RECAPDocument{
				{ID: 10, DocumentNumber: "3", PacerDocID: "gov.uscourts.1234.3", PageCount: &pages},
			},
		},
		{ID: 2, EntryNumber: int64Ptr(4)},
	}

	rows := BuildEntryRows(entries, PacerPricer{PricePerPage: 0.10, PriceCap: 3.00})
	require.Len(t, rows, 2)

	assert.Equal(t, "entry-3", rows[0].Anchor)
	assert.Equal(t, "3", rows[0].EntryNumber)
	assert.Equal(t, "2023-04-17", rows[0].DateFiled)
	assert.Equal(t, "ORDER granting motion", rows[0].Description)

	require.Len(t, rows[0].Documents, 1)
	buy := rows[0].Documents[0]
	assert.Equal(t, AvailabilityBuy, buy.Availability)
	assert.Equal(t, "gov.uscourts.1234.3", buy.PacerDocID)
	assert.Equal(t, "1.20", buy.Price)
	assert.Equal(t, "Main Document", buy.RoleLabel)

	assert.Equal(t, "entry-4", rows[1].Anchor)
	assert.Empty(t, rows[1].Documents)
}
