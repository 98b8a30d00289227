package services

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docket-hand/models"
)

// ErrInvalidTagName is returned when a submitted name doesn't normalize to a
// usable slug.
var ErrInvalidTagName = errors.New("invalid tag name")

var tagNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-\.]{0,63}$`)

// NormalizeTagName trims, lowercases and dash-joins a submitted tag name so
// that "Discovery Motions" and "discovery-motions" resolve to the same tag.
func NormalizeTagName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "-")
	return name
}

// ValidTagName reports whether a normalized name is acceptable.
func ValidTagName(name string) bool {
	return tagNamePattern.MatchString(name)
}

// CanViewTag is the one visibility rule for tags: the owner always can, anyone
// else only while the tag is published. Flipping Published back off revokes
// access with no grace period.
func CanViewTag(tag *models.Tag, viewerID string) bool {
	return tag.UserID == viewerID || tag.Published
}

// TagService implements the tag chooser: find-or-create a tag by name for a
// user, then toggle its association with a docket.
type TagService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewTagService creates a new TagService.
func NewTagService(db *gorm.DB, logger *zap.Logger) *TagService {
	return &TagService{DB: db, Logger: logger}
}

// Toggle attaches the named tag to the docket if it isn't attached, detaches
// it if it is, creating the tag on first use. Returns the tag and whether the
// association exists after the call. Submitting the same name twice returns
// to the original state.
func (s *TagService) Toggle(userID, name string, docketID uint) (*models.Tag, bool, error) {
	name = NormalizeTagName(name)
	if !ValidTagName(name) {
		return nil, false, ErrInvalidTagName
	}

	var tag models.Tag
	var attached bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var docket models.Docket
		if err := tx.First(&docket, docketID).Error; err != nil {
			return err
		}

		// Find-or-create keyed on (user_id, name). The unique index plus
		// DoNothing resolves a concurrent duplicate-name creation to the
		// existing row instead of a second tag.
		tag = models.Tag{UserID: userID, Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&tag).Error; err != nil {
			return err
		}

		res := tx.Where("tag_id = ? AND docket_id = ?", tag.ID, docketID).
			Delete(&models.DocketTag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			attached = false
			return nil
		}

		edge := models.DocketTag{TagID: tag.ID, DocketID: docketID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tag_id"}, {Name: "docket_id"}},
			DoNothing: true,
		}).Create(&edge).Error; err != nil {
			return err
		}
		attached = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.Logger.Info("Tag toggled",
		zap.String("user_id", userID),
		zap.String("tag", tag.Name),
		zap.Uint("docket_id", docketID),
		zap.Bool("attached", attached))
	return &tag, attached, nil
}

// PublicRead loads a published tag for a non-owner viewer and bumps its view
// counter. Owners read their own tags regardless of visibility and don't
// count as views.
func (s *TagService) PublicRead(ownerID, name, viewerID string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.DB.Where("user_id = ? AND name = ?", ownerID, NormalizeTagName(name)).
		First(&tag).Error; err != nil {
		return nil, err
	}
	if !CanViewTag(&tag, viewerID) {
		return nil, gorm.ErrRecordNotFound
	}
	if tag.UserID != viewerID {
		if err := s.DB.Model(&tag).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
			s.Logger.Warn("Failed to bump tag view count", zap.Uint("tag_id", tag.ID), zap.Error(err))
		} else {
			tag.ViewCount++
		}
	}
	return &tag, nil
}
