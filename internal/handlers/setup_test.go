package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/routes"
	"hospital-admin-server/internal/utils"
)

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
	cfg    *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		Port:                      "0",
		Origin:                    "http://localhost",
		Environment:               "development",
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}

	router := gin.New()
	routes.SetupRoutes(router, db, cfg)

	return &testServer{db: db, router: router, cfg: cfg}
}

// tokenFor creates a user with the given role and linked profile and returns
// a bearer token for it.
func (s *testServer) tokenFor(t *testing.T, role models.Role, profileID string) string {
	t.Helper()
	user := models.User{
		Username:  string(role) + "-user",
		Email:     string(role) + "-" + uuid.NewString() + "@test.local",
		Role:      role,
		ProfileID: profileID,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := s.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	access, _, err := utils.GenerateTokens(&user, s.cfg)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return access
}

func (s *testServer) seedDoctor(t *testing.T, firstName, lastName string) models.Doctor {
	t.Helper()
	doctor := models.Doctor{
		FirstName:      firstName,
		LastName:       lastName,
		Specialization: "Cardiology",
		Department:     "Cardiology",
		Phone:          "555-0100",
		Email:          firstName + "." + lastName + "@hospital.local",
		LicenseNumber:  "LIC-" + firstName + lastName,
		IsActive:       true,
	}
	if err := s.db.Create(&doctor).Error; err != nil {
		t.Fatalf("failed to seed doctor: %v", err)
	}
	return doctor
}

func (s *testServer) seedPatient(t *testing.T, firstName, lastName string) models.Patient {
	t.Helper()
	patient := models.Patient{
		FirstName: firstName,
		LastName:  lastName,
		Gender:    "Female",
		Phone:     "555-0200",
		Email:     firstName + "." + lastName + "@test.local",
		IsActive:  true,
	}
	if err := s.db.Create(&patient).Error; err != nil {
		t.Fatalf("failed to seed patient: %v", err)
	}
	return patient
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do performs a request against the test router. body is JSON-marshalled
// when non-nil; token is attached as a bearer credential when non-empty.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode data %q: %v", string(env.Data), err)
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
