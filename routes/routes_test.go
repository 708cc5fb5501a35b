package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"reelfake-backend/models"
	"reelfake-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockStorage struct{}

func (m *mockStorage) UploadPoster(ctx context.Context, movieID uint, file io.Reader, filename, contentType string) (string, error) {
	return "", nil
}
func (m *mockStorage) MirrorPoster(ctx context.Context, movieID uint, imageURL string) (string, error) {
	return "", nil
}
func (m *mockStorage) DeleteFile(ctx context.Context, objectPath string) error { return nil }

func init() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-for-routes")
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Genre{}, &models.Country{}, &models.Language{}, &models.Movie{}); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.GenreTable).Error; err != nil {
		t.Fatal(err)
	}
	return db
}

func setupRouter(t *testing.T) *gin.Engine {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_DIR", t.TempDir())
	r := gin.New()
	SetupRoutes(r, db, db, &mockStorage{}, utils.NewUploadRegistry(time.Hour))
	return r
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := utils.GenerateToken(uuid.New(), role+"@test.com", role)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPublicCatalogRoutes(t *testing.T) {
	r := setupRouter(t)
	for _, path := range []string{"/api/genres", "/api/movies"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/cart", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminRouteBlocksNonAdmin(t *testing.T) {
	r := setupRouter(t)

	for _, role := range []string{models.RoleCustomer, models.RoleStaff} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/admin/movies/upload", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, role))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d: %s", role, w.Code, w.Body.String())
		}
	}
}

func TestStaffRouteBlocksCustomer(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/staff/rentals", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleCustomer))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadRoutesReachHandler(t *testing.T) {
	r := setupRouter(t)
	token := tokenFor(t, models.RoleAdmin)

	cases := []struct {
		method, path string
		status       int
	}{
		{"POST", "/api/admin/movies/upload", http.StatusBadRequest},
		{"POST", "/api/admin/movies/upload/validate?delay_event_ms=2000", http.StatusBadRequest},
		{"GET", "/api/admin/movies/upload/track?upload_id=" + uuid.NewString(), http.StatusNotFound},
		{"GET", "/api/admin/movies/upload/track_validation?upload_id=bad", http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		if w.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d: %s", tc.method, tc.path, tc.status, w.Code, w.Body.String())
		}
	}
}
