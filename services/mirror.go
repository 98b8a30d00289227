package services

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"docket-hand/config"
	"docket-hand/models"
	"docket-hand/storage"
)

// MirrorService copies locally held RECAP documents to the free archive
// bucket so they can be served without touching PACER. Sealed documents are
// never mirrored.
type MirrorService struct {
	Config   *config.Config
	DB       *gorm.DB
	S3Client *s3.Client
	Logger   *zap.Logger
}

// NewMirrorService creates a new MirrorService.
func NewMirrorService(cfg *config.Config, db *gorm.DB, s3Client *s3.Client, logger *zap.Logger) *MirrorService {
	return &MirrorService{
		Config:   cfg,
		DB:       db,
		S3Client: s3Client,
		Logger:   logger,
	}
}

// Run mirrors one batch of unmirrored documents and returns how many copies
// it uploaded. Per-document failures are logged and skipped so one bad file
// doesn't stall the whole batch.
func (m *MirrorService) Run(ctx context.Context) (int, error) {
	var docs []models.RECAPDocument
	err := m.DB.
		Where("is_available = ? AND is_sealed = ? AND filepath_local <> '' AND filepath_ia = ''", true, false).
		Order("id asc").
		Limit(m.Config.MirrorBatchSize).
		Find(&docs).Error
	if err != nil {
		m.Logger.Error("Failed to query documents for mirroring", zap.Error(err))
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	mirrored := 0
	for i := range docs {
		doc := &docs[i]
		log := m.Logger.With(zap.Uint("recap_document_id", doc.ID))

		data, err := os.ReadFile(filepath.Join(m.Config.DocumentsRoot, doc.FilepathLocal))
		if err != nil {
			log.Warn("Could not read local document copy", zap.String("path", doc.FilepathLocal), zap.Error(err))
			continue
		}

		// Object names are opaque; only uniqueness matters. Keep the original
		// extension so mirrors stay recognizable.
		key := "recap/" + uuid.New().String() + filepath.Ext(doc.FilepathLocal)
		link, err := storage.UploadDocument(ctx, m.S3Client, m.Config.ArchiveS3Bucket, key, data, m.Config)
		if err != nil {
			log.Error("Archive upload failed", zap.Error(err))
			continue
		}

		if err := m.DB.Model(doc).UpdateColumn("filepath_ia", link).Error; err != nil {
			log.Error("Failed to record mirror path", zap.Error(err))
			continue
		}
		mirrored++
	}

	m.Logger.Info("Mirror batch completed",
		zap.Int("candidates", len(docs)),
		zap.Int("mirrored", mirrored))
	return mirrored, nil
}
