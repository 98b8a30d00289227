package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docket-hand/models"
)

func uintPtr(v uint) *uint { return &v }

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketDockets, BucketFor(&models.Favorite{DocketID: uintPtr(1)}))
	assert.Equal(t, BucketOralArguments, BucketFor(&models.Favorite{AudioID: uintPtr(1)}))
	assert.Equal(t, BucketRecapDocs, BucketFor(&models.Favorite{RecapDocID: uintPtr(1)}))
	assert.Equal(t, BucketOpinions, BucketFor(&models.Favorite{ClusterID: uintPtr(1)}))
	assert.Equal(t, "", BucketFor(&models.Favorite{}))
}

func TestGroupFavoritesPartition(t *testing.T) {
	favorites := []models.Favorite{
		{ID: 1, Name: "big case", DocketID: uintPtr(11)},
		{ID: 2, Name: "argument", AudioID: uintPtr(22)},
		{ID: 3, Name: "exhibit A", RecapDocID: uintPtr(33)},
		{ID: 4, Name: "landmark opinion", ClusterID: uintPtr(44)},
		{ID: 5, Name: "second docket", DocketID: uintPtr(55)},
	}

	buckets := GroupFavorites(favorites, nil)
	require.Len(t, buckets, 4)

	// Fixed tab order, empty or not.
	for i, key := range BucketOrder {
		assert.Equal(t, key, buckets[i].Key)
	}

	// Every favorite lands in exactly one bucket; counts sum to N.
	total := 0
	seen := make(map[uint]int)
	for _, b := range buckets {
		assert.Equal(t, len(b.Rows), b.Count)
		total += b.Count
		for _, row := range b.Rows {
			seen[row.ID]++
		}
	}
	assert.Equal(t, len(favorites), total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "favorite %d appears in %d buckets", id, n)
	}
}

func TestGroupFavoritesEmptyBucketsStillRender(t *testing.T) {
	buckets := GroupFavorites(nil, nil)
	require.Len(t, buckets, 4)
	for _, b := range buckets {
		assert.Zero(t, b.Count)
		assert.Empty(t, b.Rows)
	}
}

func TestGroupFavoritesLastFilingOnlyForDockets(t *testing.T) {
	filing := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	favorites := []models.Favorite{
		{ID: 1, Name: "case", DocketID: uintPtr(7)},
		{ID: 2, Name: "opinion", ClusterID: uintPtr(7)},
	}
	lastFilings := map[uint]*time.Time{7: &filing}

	buckets := GroupFavorites(favorites, lastFilings)

	require.Len(t, buckets[0].Rows, 1)
	require.NotNil(t, buckets[0].Rows[0].LastFiling)
	assert.True(t, filing.Equal(*buckets[0].Rows[0].LastFiling))

	// The opinions bucket shares the target ID but carries no filing date.
	require.Len(t, buckets[3].Rows, 1)
	assert.Nil(t, buckets[3].Rows[0].LastFiling)
}

func TestValidateFavoriteTarget(t *testing.T) {
	assert.NoError(t, ValidateFavoriteTarget(&models.Favorite{DocketID: uintPtr(1)}))

	err := ValidateFavoriteTarget(&models.Favorite{})
	assert.ErrorIs(t, err, ErrFavoriteTarget)

	err = ValidateFavoriteTarget(&models.Favorite{DocketID: uintPtr(1), ClusterID: uintPtr(2)})
	assert.ErrorIs(t, err, ErrFavoriteTarget)
}
