package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// ProfileData carries the role-specific profile fields supplied at
// registration. Only the fields matching the requested role are used.
type ProfileData struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Gender         string `json:"gender"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	Specialization string `json:"specialization"`
	Department     string `json:"department"`
	LicenseNumber  string `json:"licenseNumber"`
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Username    string      `json:"username" binding:"required"`
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=8"`
	Role        string      `json:"role" binding:"required,oneof=admin doctor patient"`
	ProfileData ProfileData `json:"profileData"`
}

// Register creates a login identity and, for patients and doctors, the
// linked profile record.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	role := models.Role(req.Role)
	var user models.User

	// Profile and user are created together: a failed user insert must not
	// leave an orphaned profile behind.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var profileID string
		switch role {
		case models.RolePatient:
			patient := models.Patient{
				FirstName: req.ProfileData.FirstName,
				LastName:  req.ProfileData.LastName,
				Gender:    req.ProfileData.Gender,
				Phone:     req.ProfileData.Phone,
				Email:     pick(req.ProfileData.Email, req.Email),
				Address:   req.ProfileData.Address,
				IsActive:  true,
			}
			if err := tx.Create(&patient).Error; err != nil {
				return err
			}
			profileID = patient.ID
		case models.RoleDoctor:
			doctor := models.Doctor{
				FirstName:      req.ProfileData.FirstName,
				LastName:       req.ProfileData.LastName,
				Specialization: req.ProfileData.Specialization,
				Department:     req.ProfileData.Department,
				Phone:          req.ProfileData.Phone,
				Email:          pick(req.ProfileData.Email, req.Email),
				LicenseNumber:  req.ProfileData.LicenseNumber,
				IsActive:       true,
			}
			if err := tx.Create(&doctor).Error; err != nil {
				return err
			}
			profileID = doctor.ID
		}

		user = models.User{
			Username:  req.Username,
			Email:     req.Email,
			Role:      role,
			ProfileID: profileID,
		}
		if err := user.SetPassword(req.Password); err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to register user: "+err.Error())
		return
	}

	accessToken, refreshTokenString, err := h.issueTokens(c, &user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	utils.Created(c, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user.Sanitize(),
	})
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, refreshTokenString, err := h.issueTokens(c, &user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	utils.Success(c, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user.Sanitize(),
	})
}

// issueTokens generates the token pair, persists the refresh token, and sets
// the refresh cookie.
func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (string, string, error) {
	accessToken, refreshTokenString, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		return "", "", err
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
	}
	if err := h.DB.Create(&refreshToken).Error; err != nil {
		return "", "", err
	}

	c.SetCookie(
		"refresh_token",
		refreshTokenString,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)

	return accessToken, refreshTokenString, nil
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles refreshing an access token using a refresh token.
// Tokens rotate: the presented refresh token is revoked and replaced.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshTokenString, err := c.Cookie("refresh_token")
	if err != nil || refreshTokenString == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		refreshTokenString = req.RefreshToken
	}

	claims, err := utils.ValidateToken(refreshTokenString, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	var storedToken models.RefreshToken
	if err := h.DB.Where("token = ? AND user_id = ?",
		refreshTokenString, claims.UserID).First(&storedToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Refresh token not found")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token: "+err.Error())
		}
		return
	}
	if !storedToken.Usable(time.Now()) {
		utils.Unauthorized(c, "Refresh token expired or revoked")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.InternalServerError(c, "Failed to find user associated with token: "+err.Error())
		return
	}

	storedToken.IsRevoked = true
	if err := h.DB.Save(&storedToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
		return
	}

	newAccessToken, newRefreshTokenString, err := h.issueTokens(c, &user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}

	utils.Success(c, RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenString,
	})
}

// Logout revokes the presented refresh token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshTokenString, _ := c.Cookie("refresh_token")
	if refreshTokenString == "" {
		var req RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshTokenString = req.RefreshToken
		}
	}
	if refreshTokenString == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	var storedToken models.RefreshToken
	err := h.DB.Where("token = ? AND is_revoked = ?", refreshTokenString, false).First(&storedToken).Error
	if err == nil {
		storedToken.IsRevoked = true
		storedToken.ExpiresAt = time.Now()
		if err := h.DB.Save(&storedToken).Error; err != nil {
			utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
			return
		}
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error during logout: "+err.Error())
		return
	}

	c.SetCookie("refresh_token", "", -1, "/", "", h.Cfg.Environment != "development", true)
	utils.Success(c, gin.H{})
}

// GetMe returns the authenticated user together with the linked
// patient or doctor profile.
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var profile interface{}
	switch user.Role {
	case models.RolePatient:
		var patient models.Patient
		if err := h.DB.Preload("MedicalHistory").First(&patient, "id = ?", user.ProfileID).Error; err == nil {
			profile = patient
		}
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.Preload("Availability").First(&doctor, "id = ?", user.ProfileID).Error; err == nil {
			profile = doctor
		}
	}

	utils.Success(c, gin.H{
		"user":    user.Sanitize(),
		"profile": profile,
	})
}
