package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"docket-hand/models"
)

// CaseCountFromSeries counts the distinct opinion clusters referenced by a
// serialized visualization network. The series is a list of nodes, each with
// an "id"; a malformed or empty blob counts zero.
func CaseCountFromSeries(series []byte) int {
	if len(series) == 0 {
		return 0
	}
	var nodes []struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(series, &nodes); err != nil {
		return 0
	}
	seen := make(map[uint]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID != 0 {
			seen[n.ID] = struct{}{}
		}
	}
	return len(seen)
}

// PurgeTrashedVisualizations hard-deletes visualizations that have sat in the
// trash longer than ttl. Returns the number of rows removed.
func PurgeTrashedVisualizations(db *gorm.DB, ttl time.Duration, logger *zap.Logger) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := db.
		Where("deleted = ? AND date_deleted IS NOT NULL AND date_deleted < ?", true, cutoff).
		Delete(&models.Visualization{})
	if res.Error != nil {
		logger.Error("Trash purge failed", zap.Error(res.Error))
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		logger.Info("Purged trashed visualizations", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}
