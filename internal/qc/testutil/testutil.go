package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/middleware"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_qc"
	JWTSecret  = "nimo-qc-jwt-secret-test"
)

var loadEnvOnce sync.Once

// loadEnv reads the .env next to go.mod, once per test binary.
func loadEnv() {
	loadEnvOnce.Do(func() {
		_, file, _, _ := runtime.Caller(0)
		for dir := filepath.Dir(file); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
				_ = godotenv.Load(filepath.Join(dir, ".env"))
				return
			}
		}
	})
}

func testDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable connect_timeout=2",
		getEnv("DB_HOST", "127.0.0.1"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "nimo"),
		getEnv("DB_PASSWORD", "nimo123"),
		getEnv("DB_NAME", "nimo_qc"),
	)
}

func openQuiet(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// SetupTestDB opens Postgres on a throwaway schema holding the qc tables.
// The test is skipped when no database is reachable.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	base := testDSN()
	admin, err := openQuiet(base)
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	schema := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)
	if err := admin.Exec("CREATE SCHEMA IF NOT EXISTS " + schema).Error; err != nil {
		closeDB(admin)
		t.Skipf("postgres not usable: %v", err)
	}

	// search_path in the DSN so every pooled connection sees the schema
	db, err := openQuiet(base + " search_path=" + schema)
	if err != nil {
		closeDB(admin)
		t.Fatalf("open test schema: %v", err)
	}
	if err := db.AutoMigrate(&entity.SubmissionLog{}, &entity.PrintArchive{}); err != nil {
		t.Fatalf("migrate qc tables: %v", err)
	}

	t.Cleanup(func() {
		closeDB(db)
		admin.Exec("DROP SCHEMA IF EXISTS " + schema + " CASCADE")
		closeDB(admin)
	})
	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group behind JWT auth.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken signs a token for the given user.
func GenerateTestToken(username, role string, departmentID int) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":           username,
		"username":      username,
		"name":          username,
		"role":          role,
		"department_id": departmentID,
		"iss":           "nimo-qc",
		"iat":           now.Unix(),
		"exp":           now.Add(24 * time.Hour).Unix(),
		"jti":           fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// UserToken is a department user of Quality.
func UserToken() string {
	return GenerateTestToken("inspector", entity.RoleUser, entity.DepartmentQuality)
}

// HODToken is the head of the Quality department.
func HODToken() string {
	return GenerateTestToken("hod.quality", entity.RoleHOD, entity.DepartmentQuality)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DoMultipart posts one file under field "file" plus form values.
func DoMultipart(r *gin.Engine, path string, fields map[string]string, fileName string, data []byte, token string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if fileName != "" {
		part, _ := mw.CreateFormFile("file", fileName)
		part.Write(data)
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// ResponseData returns the "data" object of a response.
func ResponseData(w *httptest.ResponseRecorder) map[string]interface{} {
	data, _ := ParseResponse(w)["data"].(map[string]interface{})
	return data
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
