package services

import (
	"errors"
	"time"

	"docket-hand/models"
)

// ErrFavoriteTarget is returned when a favorite doesn't point at exactly one
// piece of content.
var ErrFavoriteTarget = errors.New("favorite must reference exactly one target")

// Bucket keys, in display order.
const (
	BucketDockets       = "dockets"
	BucketOralArguments = "oral_arguments"
	BucketRecapDocs     = "recap_documents"
	BucketOpinions      = "opinions"
)

// BucketOrder is the fixed tab order on the favorites dashboard. Every bucket
// renders, empty or not.
var BucketOrder = []string{BucketDockets, BucketOralArguments, BucketRecapDocs, BucketOpinions}

// FavoriteRow is one favorite within a bucket. LastFiling is only populated
// for docket favorites.
type FavoriteRow struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Notes      string     `json:"notes,omitempty"`
	TargetID   uint       `json:"target_id"`
	LastFiling *time.Time `json:"last_filing,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// FavoriteBucket is one tab on the dashboard with its count badge.
type FavoriteBucket struct {
	Key   string        `json:"key"`
	Count int           `json:"count"`
	Rows  []FavoriteRow `json:"rows"`
}

// BucketFor returns the bucket key a favorite belongs to, or "" when the
// record is malformed (no target set).
func BucketFor(f *models.Favorite) string {
	switch {
	case f.DocketID != nil:
		return BucketDockets
	case f.AudioID != nil:
		return BucketOralArguments
	case f.RecapDocID != nil:
		return BucketRecapDocs
	case f.ClusterID != nil:
		return BucketOpinions
	default:
		return ""
	}
}

// GroupFavorites partitions favorites into the four fixed buckets. Each
// favorite lands in exactly one bucket, so the per-bucket counts sum to the
// input length. lastFilings maps docket IDs to their most recent filing date
// for the docket tab's extra column.
func GroupFavorites(favorites []models.Favorite, lastFilings map[uint]*time.Time) []FavoriteBucket {
	rows := make(map[string][]FavoriteRow, len(BucketOrder))
	for i := range favorites {
		f := &favorites[i]
		key := BucketFor(f)
		if key == "" {
			continue
		}
		row := FavoriteRow{
			ID:        f.ID,
			Name:      f.Name,
			Notes:     f.Notes,
			CreatedAt: f.CreatedAt,
		}
		switch key {
		case BucketDockets:
			row.TargetID = *f.DocketID
			row.LastFiling = lastFilings[*f.DocketID]
		case BucketOralArguments:
			row.TargetID = *f.AudioID
		case BucketRecapDocs:
			row.TargetID = *f.RecapDocID
		case BucketOpinions:
			row.TargetID = *f.ClusterID
		}
		rows[key] = append(rows[key], row)
	}

	buckets := make([]FavoriteBucket, 0, len(BucketOrder))
	for _, key := range BucketOrder {
		buckets = append(buckets, FavoriteBucket{
			Key:   key,
			Count: len(rows[key]),
			Rows:  rows[key],
		})
	}
	return buckets
}

// ValidateFavoriteTarget enforces the exactly-one-target rule.
func ValidateFavoriteTarget(f *models.Favorite) error {
	if f.TargetCount() != 1 {
		return ErrFavoriteTarget
	}
	return nil
}
