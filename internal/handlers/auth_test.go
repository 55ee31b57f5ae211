package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"hospital-admin-server/internal/handlers"
	"hospital-admin-server/internal/models"
)

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	register := map[string]interface{}{
		"username": "pdoe",
		"email":    "pdoe@test.local",
		"password": "password123",
		"role":     "patient",
		"profileData": map[string]interface{}{
			"firstName": "Pat",
			"lastName":  "Doe",
			"gender":    "Male",
			"phone":     "555-0300",
		},
	}

	w, env := s.do(t, http.MethodPost, "/api/auth/register", "", register)
	wantStatus(t, w, http.StatusCreated)

	var login handlers.LoginResponse
	decodeData(t, env, &login)
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatal("expected token pair on registration")
	}
	if login.User.Role != models.RolePatient {
		t.Fatalf("expected patient role, got %s", login.User.Role)
	}
	if login.User.ProfileID == "" {
		t.Fatal("expected a linked patient profile")
	}

	// The profile record exists with the supplied fields.
	var patient models.Patient
	if err := s.db.First(&patient, "id = ?", login.User.ProfileID).Error; err != nil {
		t.Fatalf("patient profile was not created: %v", err)
	}
	if patient.FirstName != "Pat" || patient.Email != "pdoe@test.local" {
		t.Errorf("unexpected profile %s / %s", patient.FirstName, patient.Email)
	}

	t.Run("duplicate email rejected", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPost, "/api/auth/register", "", register)
		wantStatus(t, w, http.StatusBadRequest)
	})

	t.Run("login with correct password", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
			"email": "pdoe@test.local", "password": "password123",
		})
		wantStatus(t, w, http.StatusOK)
		decodeData(t, env, &login)
		if login.AccessToken == "" {
			t.Fatal("expected an access token")
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
			"email": "pdoe@test.local", "password": "wrong-password",
		})
		wantStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("me returns user and profile", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/auth/me", login.AccessToken, nil)
		wantStatus(t, w, http.StatusOK)
		var me struct {
			User    models.UserSanitized `json:"user"`
			Profile *models.Patient      `json:"profile"`
		}
		decodeData(t, env, &me)
		if me.User.Email != "pdoe@test.local" {
			t.Errorf("unexpected user %s", me.User.Email)
		}
		if me.Profile == nil || me.Profile.LastName != "Doe" {
			t.Error("expected linked patient profile in response")
		}
	})
}

func TestRegister_NoOrphanProfileOnFailure(t *testing.T) {
	s := newTestServer(t)

	// bcrypt rejects passwords longer than 72 bytes, so hashing fails after
	// the profile insert. The rollback must take the profile with it.
	w, _ := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username": "orphan",
		"email":    "orphan@test.local",
		"password": strings.Repeat("x", 100),
		"role":     "patient",
		"profileData": map[string]interface{}{
			"firstName": "Orla", "lastName": "Orphan",
		},
	})
	wantStatus(t, w, http.StatusInternalServerError)

	var count int64
	if err := s.db.Model(&models.Patient{}).Where("email = ?", "orphan@test.local").Count(&count).Error; err != nil {
		t.Fatalf("failed to count patients: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no patient profile after failed registration, found %d", count)
	}

	var users int64
	if err := s.db.Model(&models.User{}).Where("email = ?", "orphan@test.local").Count(&users).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if users != 0 {
		t.Fatalf("expected no user after failed registration, found %d", users)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username": "ddoe",
		"email":    "ddoe@test.local",
		"password": "password123",
		"role":     "doctor",
		"profileData": map[string]interface{}{
			"firstName":      "Dana",
			"lastName":       "Doe",
			"specialization": "Neurology",
			"licenseNumber":  "LIC-ddoe",
		},
	})
	wantStatus(t, w, http.StatusCreated)
	var login handlers.LoginResponse
	decodeData(t, env, &login)

	w, env = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]interface{}{
		"refreshToken": login.RefreshToken,
	})
	wantStatus(t, w, http.StatusOK)
	var refreshed handlers.RefreshTokenResponse
	decodeData(t, env, &refreshed)
	if refreshed.AccessToken == "" || refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a rotated token pair")
	}

	// The old refresh token is revoked after rotation.
	w, _ = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]interface{}{
		"refreshToken": login.RefreshToken,
	})
	wantStatus(t, w, http.StatusUnauthorized)
}
