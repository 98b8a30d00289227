package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newBrokenDB returns a gorm handle whose underlying connection is closed, so
// every query errors out.
func newBrokenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return db
}

func performJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateFavoriteSurfacesDuplicateCheckError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	setupFavoriteRoutes(router, newBrokenDB(t), zap.NewNop())

	// The duplicate check must report a database failure instead of reading
	// the zero count as "no duplicate" and moving on.
	w := performJSON(router, http.MethodPost, "/favorites/", `{"name":"lead case","docket_id":7}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "database error")
}

func TestCreateWebhookSurfacesDuplicateCheckError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	setupWebhookRoutes(router, newBrokenDB(t), zap.NewNop())

	w := performJSON(router, http.MethodPost, "/webhooks/", `{"event_type":1,"url":"https://example.com/hook"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "database error")
}
