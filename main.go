package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"docket-hand/config"
	"docket-hand/models"
	"docket-hand/services"
	"docket-hand/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	tagTogglesCounter   prometheus.Counter
	favoritesCounter    prometheus.Counter
	mirroredDocsCounter prometheus.Counter
	trashedVizCounter   prometheus.Counter
	purgedVizCounter    prometheus.Counter
)

func init() {
	tagTogglesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tag_toggles_total",
			Help: "Total number of tag attach/detach toggles.",
		},
	)
	favoritesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "favorites_created_total",
			Help: "Total number of favorites created.",
		},
	)
	mirroredDocsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "documents_mirrored_total",
			Help: "Total number of documents copied to the free archive.",
		},
	)
	trashedVizCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visualizations_trashed_total",
			Help: "Total number of visualizations moved to the trash.",
		},
	)
	purgedVizCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "visualizations_purged_total",
			Help: "Total number of trashed visualizations purged.",
		},
	)
	prometheus.MustRegister(tagTogglesCounter, favoritesCounter,
		mirroredDocsCounter, trashedVizCounter, purgedVizCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// userScopeMiddleware requires the caller to identify itself; ownership of
// tags, favorites and visualizations is keyed on this value. Authentication
// proper lives in front of this service.
func userScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString("user_id")
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	// Auto-Migration
	if gin.Mode() == gin.DebugMode {
		logging.Info("Debug mode detected. Dropping tables for fresh start.")
		db.Migrator().DropTable(&models.DocketTag{}, &models.Tag{}, &models.Favorite{},
			&models.Visualization{}, &models.Webhook{}, &models.RECAPDocument{},
			&models.DocketEntry{}, &models.Docket{})
	}
	logging.Info("Running database auto-migration...")
	if err := db.SetupJoinTable(&models.Tag{}, "Dockets", &models.DocketTag{}); err != nil {
		logging.Fatal("Join table setup error", zap.Error(err))
	}
	db.AutoMigrate(&models.Docket{}, &models.DocketEntry{}, &models.RECAPDocument{},
		&models.Tag{}, &models.DocketTag{}, &models.Favorite{},
		&models.Visualization{}, &models.Webhook{})

	// Setup Services
	s3Client, err := storage.NewArchiveClient(cfg)
	if err != nil {
		logging.Fatal("Archive S3 client creation failed", zap.Error(err))
	}
	tagService := services.NewTagService(db, logging)
	mirrorService := services.NewMirrorService(cfg, db, s3Client, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupDocketRoutes(router, cfg, db, tagService, logging)
	setupTagRoutes(router, db, tagService, logging)
	setupFavoriteRoutes(router, db, logging)
	setupVisualizationRoutes(router, cfg, db, logging)
	setupWebhookRoutes(router, db, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.MirrorCronSchedule, func() {
		logging.Info("Running scheduled archive mirror job...")
		count, err := mirrorService.Run(context.Background())
		if err != nil {
			logging.Error("Mirror job failed", zap.Error(err))
		} else {
			mirroredDocsCounter.Add(float64(count))
		}
	})
	cronScheduler.AddFunc(cfg.PurgeCronSchedule, func() {
		logging.Info("Running scheduled trash purge...")
		ttl := time.Duration(cfg.TrashTTLDays) * 24 * time.Hour
		count, err := services.PurgeTrashedVisualizations(db, ttl, logging)
		if err != nil {
			logging.Error("Trash purge failed", zap.Error(err))
		} else {
			purgedVizCounter.Add(float64(count))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupDocketRoutes(router *gin.Engine, cfg *config.Config, db *gorm.DB, tags *services.TagService, log *zap.Logger) {
	rg := router.Group("/dockets")

	rg.GET("/", func(c *gin.Context) {
		var dockets []models.Docket
		if err := db.Order("date_last_filing desc NULLS LAST").Limit(cfg.MaxPageSize).Find(&dockets).Error; err != nil {
			log.Error("Database query for dockets failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, dockets)
	})

	// Body-driven endpoint for filtered lookups.
	rg.POST("/query", func(c *gin.Context) {
		type DocketQuery struct {
			CourtID      string `json:"court_id"`
			DocketNumber string `json:"docket_number"`
			CaseName     string `json:"case_name"`
			PacerCaseID  string `json:"pacer_case_id"`
			Limit        int    `json:"limit"`
		}

		var req DocketQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Docket{})

		if req.CourtID != "" {
			query = query.Where("court_id = ?", req.CourtID)
		}
		if req.DocketNumber != "" {
			query = query.Where("docket_number = ?", req.DocketNumber)
		}
		if req.CaseName != "" {
			query = query.Where("case_name ILIKE ?", "%"+req.CaseName+"%")
		}
		if req.PacerCaseID != "" {
			query = query.Where("pacer_case_id = ?", req.PacerCaseID)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var dockets []models.Docket
		if err := query.Order("date_last_filing desc NULLS LAST").Find(&dockets).Error; err != nil {
			log.Error("Database query for dockets failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, dockets)
	})

	// Ingest/admin create, nested entries and documents included.
	rg.POST("/", func(c *gin.Context) {
		var docket models.Docket
		if err := c.ShouldBindJSON(&docket); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if docket.CourtID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "court_id is required"})
			return
		}
		if err := db.Create(&docket).Error; err != nil {
			log.Error("Failed to create docket", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create docket"})
			return
		}
		c.JSON(http.StatusCreated, docket)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var docket models.Docket
		if err := db.Preload("Tags", "published = ?", true).First(&docket, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "docket not found"})
				return
			}
			log.Error("DB error fetching docket", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, docket)
	})

	// Display rows for the docket-entry table. Ordering lives in this query;
	// the row builder keeps whatever order it is handed.
	rg.GET("/:id/entries", func(c *gin.Context) {
		id := c.Param("id")
		var docket models.Docket
		if err := db.First(&docket, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "docket not found"})
				return
			}
			log.Error("DB error fetching docket", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var entries []models.DocketEntry
		err := db.
			Where("docket_id = ?", docket.ID).
			Order("entry_number asc NULLS LAST, id asc").
			Preload("Documents", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("recap_documents.document_type asc, recap_documents.attachment_number asc")
			}).
			Find(&entries).Error
		if err != nil {
			log.Error("DB error fetching docket entries", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		pricer := services.PacerPricer{
			PricePerPage: cfg.PacerPricePerPage,
			PriceCap:     cfg.PacerPriceCap,
		}
		c.JSON(http.StatusOK, gin.H{
			"docket_id": docket.ID,
			"case_name": docket.CaseName,
			"entries":   services.BuildEntryRows(entries, pricer),
		})
	})

	// Tag chooser: toggle a named tag on this docket for the calling user.
	rg.POST("/:id/tags", userScopeMiddleware(), func(c *gin.Context) {
		docketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid docket id"})
			return
		}

		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'name' field is required."})
			return
		}

		tag, attached, err := tags.Toggle(currentUser(c), req.Name, uint(docketID))
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidTagName):
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag name"})
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "docket not found"})
			default:
				log.Error("Tag toggle failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			}
			return
		}

		tagTogglesCounter.Inc()
		c.JSON(http.StatusOK, gin.H{"tag": tag, "attached": attached})
	})
}

func setupTagRoutes(router *gin.Engine, db *gorm.DB, tags *services.TagService, log *zap.Logger) {
	rg := router.Group("/tags")
	rg.Use(userScopeMiddleware())

	rg.GET("/", func(c *gin.Context) {
		var list []models.Tag
		if err := db.Where("user_id = ?", currentUser(c)).Order("name asc").Find(&list).Error; err != nil {
			log.Error("Database query for tags failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	// Partial update: description and the public/private flag. The flag flip
	// takes effect on the next read, there is no intermediate state.
	rg.PUT("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var tag models.Tag
		if err := db.Where("user_id = ?", currentUser(c)).First(&tag, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
				return
			}
			log.Error("DB error fetching tag", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var payload struct {
			Description *string `json:"description"`
			Published   *bool   `json:"published"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if payload.Description != nil {
			updates["description"] = *payload.Description
		}
		if payload.Published != nil {
			updates["published"] = *payload.Published
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
			return
		}

		if err := db.Model(&tag).Updates(updates).Error; err != nil {
			log.Error("DB error updating tag", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update tag"})
			return
		}
		c.JSON(http.StatusOK, tag)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var tag models.Tag
		if err := db.Where("user_id = ?", currentUser(c)).First(&tag, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
				return
			}
			log.Error("DB error fetching tag", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.DocketTag{}).Error; err != nil {
				return err
			}
			return tx.Delete(&tag).Error
		}); err != nil {
			log.Error("DB error deleting tag", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete tag"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})

	// Public listing page for a tag. Anyone may read it while it is published;
	// the owner always may. X-User-ID is optional here.
	router.GET("/users/:user/tags/:name", func(c *gin.Context) {
		tag, err := tags.PublicRead(c.Param("user"), c.Param("name"), c.GetHeader("X-User-ID"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
				return
			}
			log.Error("DB error reading public tag", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var dockets []models.Docket
		if err := db.Model(tag).Association("Dockets").Find(&dockets); err != nil {
			log.Error("DB error loading tagged dockets", zap.Uint("tag_id", tag.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tag": tag, "dockets": dockets})
	})
}

func setupFavoriteRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/favorites")
	rg.Use(userScopeMiddleware())

	rg.POST("/", func(c *gin.Context) {
		var fav models.Favorite
		if err := c.ShouldBindJSON(&fav); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		fav.ID = 0
		fav.UserID = currentUser(c)
		if fav.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		if err := services.ValidateFavoriteTarget(&fav); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// One favorite per target per user.
		var count int64
		if err := db.Model(&models.Favorite{}).
			Where("user_id = ?", fav.UserID).
			Where("cluster_id IS NOT DISTINCT FROM ? AND audio_id IS NOT DISTINCT FROM ? AND docket_id IS NOT DISTINCT FROM ? AND recap_doc_id IS NOT DISTINCT FROM ?",
				fav.ClusterID, fav.AudioID, fav.DocketID, fav.RecapDocID).
			Count(&count).Error; err != nil {
			log.Error("Database query for favorite check failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "favorite already exists for this target"})
			return
		}

		if err := db.Create(&fav).Error; err != nil {
			// Racing requests can both pass the check; the partial unique
			// indexes on favorites catch the loser here.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "favorite already exists for this target"})
				return
			}
			log.Error("Failed to create favorite", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create favorite"})
			return
		}
		favoritesCounter.Inc()
		c.JSON(http.StatusCreated, fav)
	})

	// Dashboard: fixed bucket order, one bucket per target type.
	rg.GET("/", func(c *gin.Context) {
		var favorites []models.Favorite
		if err := db.Where("user_id = ?", currentUser(c)).Order("created_at desc").Find(&favorites).Error; err != nil {
			log.Error("Database query for favorites failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		// The docket tab shows a Last Filing column; fetch those dates in one go.
		docketIDs := make([]uint, 0, len(favorites))
		for i := range favorites {
			if favorites[i].DocketID != nil {
				docketIDs = append(docketIDs, *favorites[i].DocketID)
			}
		}
		lastFilings := make(map[uint]*time.Time, len(docketIDs))
		if len(docketIDs) > 0 {
			var dockets []models.Docket
			if err := db.Select("id", "date_last_filing").Where("id IN ?", docketIDs).Find(&dockets).Error; err != nil {
				log.Error("Database query for favorite dockets failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			for i := range dockets {
				lastFilings[dockets[i].ID] = dockets[i].DateLastFiling
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"total":   len(favorites),
			"buckets": services.GroupFavorites(favorites, lastFilings),
		})
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var fav models.Favorite
		if err := db.Where("user_id = ?", currentUser(c)).First(&fav, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
				return
			}
			log.Error("DB error fetching favorite", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var payload struct {
			Name  *string `json:"name"`
			Notes *string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if payload.Name != nil {
			if *payload.Name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
				return
			}
			updates["name"] = *payload.Name
		}
		if payload.Notes != nil {
			updates["notes"] = *payload.Notes
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
			return
		}

		if err := db.Model(&fav).Updates(updates).Error; err != nil {
			log.Error("DB error updating favorite", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update favorite"})
			return
		}
		c.JSON(http.StatusOK, fav)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id := c.Param("id")
		res := db.Where("user_id = ?", currentUser(c)).Delete(&models.Favorite{}, id)
		if res.Error != nil {
			log.Error("DB error deleting favorite", zap.String("id", id), zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete favorite"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})
}

func setupVisualizationRoutes(router *gin.Engine, cfg *config.Config, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/visualizations")
	rg.Use(userScopeMiddleware())

	rg.POST("/", func(c *gin.Context) {
		var viz models.Visualization
		if err := c.ShouldBindJSON(&viz); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		viz.ID = 0
		viz.UserID = currentUser(c)
		viz.Deleted = false
		viz.DateDeleted = nil
		viz.ViewCount = 0
		if viz.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		viz.CaseCount = services.CaseCountFromSeries(viz.SeriesJSON)

		if err := db.Create(&viz).Error; err != nil {
			log.Error("Failed to create visualization", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create visualization"})
			return
		}
		c.JSON(http.StatusCreated, viz)
	})

	rg.GET("/", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(cfg.DefaultPageSize)))
		if pageSize < 1 {
			pageSize = cfg.DefaultPageSize
		}
		if pageSize > cfg.MaxPageSize {
			pageSize = cfg.MaxPageSize
		}

		var total int64
		if err := db.Model(&models.Visualization{}).
			Where("user_id = ? AND deleted = ?", currentUser(c), false).
			Count(&total).Error; err != nil {
			log.Error("Database count for visualizations failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var list []models.Visualization
		err := db.
			Where("user_id = ? AND deleted = ?", currentUser(c), false).
			Omit("series_json").
			Order("created_at desc").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&list).Error
		if err != nil {
			log.Error("Database query for visualizations failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"page":           page,
			"page_size":      pageSize,
			"total":          total,
			"visualizations": list,
		})
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var viz models.Visualization
		if err := db.Where("user_id = ?", currentUser(c)).First(&viz, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "visualization not found"})
				return
			}
			log.Error("DB error fetching visualization", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var payload struct {
			Title     *string         `json:"title"`
			Published *bool           `json:"published"`
			Series    json.RawMessage `json:"series_json"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if payload.Title != nil {
			if *payload.Title == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
				return
			}
			updates["title"] = *payload.Title
		}
		if payload.Published != nil {
			updates["published"] = *payload.Published
		}
		if len(payload.Series) > 0 {
			updates["series_json"] = datatypes.JSON(payload.Series)
			updates["case_count"] = services.CaseCountFromSeries(payload.Series)
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
			return
		}

		if err := db.Model(&viz).Updates(updates).Error; err != nil {
			log.Error("DB error updating visualization", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update visualization"})
			return
		}
		c.JSON(http.StatusOK, viz)
	})

	// Soft delete. The purge cron removes trashed items after the TTL.
	rg.POST("/:id/trash", func(c *gin.Context) {
		id := c.Param("id")
		now := time.Now()
		res := db.Model(&models.Visualization{}).
			Where("id = ? AND user_id = ? AND deleted = ?", id, currentUser(c), false).
			Updates(map[string]interface{}{"deleted": true, "date_deleted": now})
		if res.Error != nil {
			log.Error("DB error trashing visualization", zap.String("id", id), zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to trash visualization"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "visualization not found"})
			return
		}
		trashedVizCounter.Inc()
		c.JSON(http.StatusOK, gin.H{"message": "trashed", "date_deleted": now})
	})

	rg.POST("/:id/restore", func(c *gin.Context) {
		id := c.Param("id")
		res := db.Model(&models.Visualization{}).
			Where("id = ? AND user_id = ? AND deleted = ?", id, currentUser(c), true).
			Updates(map[string]interface{}{"deleted": false, "date_deleted": nil})
		if res.Error != nil {
			log.Error("DB error restoring visualization", zap.String("id", id), zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to restore visualization"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "visualization not found in trash"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "restored"})
	})
}

func setupWebhookRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/webhooks")
	rg.Use(userScopeMiddleware())

	rg.POST("/", func(c *gin.Context) {
		var req struct {
			EventType int    `json:"event_type" binding:"required"`
			URL       string `json:"url" binding:"required,url"`
			Enabled   *bool  `json:"enabled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'event_type' and a valid 'url' are required."})
			return
		}
		if !models.ValidEventType(req.EventType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type"})
			return
		}

		hook := models.Webhook{
			UserID:    currentUser(c),
			EventType: req.EventType,
			URL:       req.URL,
			Enabled:   true,
		}
		if req.Enabled != nil {
			hook.Enabled = *req.Enabled
		}

		var count int64
		if err := db.Model(&models.Webhook{}).
			Where("user_id = ? AND event_type = ?", hook.UserID, hook.EventType).
			Count(&count).Error; err != nil {
			log.Error("Database query for webhook check failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "webhook already registered for this event type"})
			return
		}

		if err := db.Create(&hook).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "webhook already registered for this event type"})
				return
			}
			log.Error("Failed to create webhook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create webhook"})
			return
		}
		c.JSON(http.StatusCreated, hook)
	})

	rg.GET("/", func(c *gin.Context) {
		var hooks []models.Webhook
		if err := db.Where("user_id = ?", currentUser(c)).Order("event_type asc").Find(&hooks).Error; err != nil {
			log.Error("Database query for webhooks failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, hooks)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id := c.Param("id")
		res := db.Where("user_id = ?", currentUser(c)).Delete(&models.Webhook{}, id)
		if res.Error != nil {
			log.Error("DB error deleting webhook", zap.String("id", id), zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete webhook"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "webhook not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})
}
