package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// DoctorHandler handles doctor registry requests.
type DoctorHandler struct {
	DB *gorm.DB
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db}
}

// GetDoctors returns all active doctors.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	var doctors []models.Doctor
	if err := h.DB.Preload("Availability").Where("is_active = ?", true).Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.SuccessWithCount(c, len(doctors), doctors)
}

// GetDoctor returns a single doctor.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.Preload("Availability").First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, doctor)
}

// CreateDoctorRequest represents the request body for creating a doctor.
type CreateDoctorRequest struct {
	FirstName      string              `json:"firstName" binding:"required"`
	LastName       string              `json:"lastName" binding:"required"`
	Specialization string              `json:"specialization" binding:"required"`
	Department     string              `json:"department" binding:"required"`
	Phone          string              `json:"phone" binding:"required"`
	Email          string              `json:"email" binding:"required,email"`
	LicenseNumber  string              `json:"licenseNumber" binding:"required"`
	Education      []models.Education  `json:"education"`
	Experience     []models.Experience `json:"experience"`
}

// CreateDoctor registers a new doctor.
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor := models.Doctor{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Specialization: req.Specialization,
		Department:     req.Department,
		Phone:          req.Phone,
		Email:          req.Email,
		LicenseNumber:  req.LicenseNumber,
		Education:      req.Education,
		Experience:     req.Experience,
		IsActive:       true,
	}
	if err := h.DB.Create(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to create doctor: "+err.Error())
		return
	}
	utils.Created(c, doctor)
}

// UpdateDoctorRequest represents a partial doctor update.
type UpdateDoctorRequest struct {
	FirstName      *string              `json:"firstName"`
	LastName       *string              `json:"lastName"`
	Specialization *string              `json:"specialization"`
	Department     *string              `json:"department"`
	Phone          *string              `json:"phone"`
	Email          *string              `json:"email"`
	LicenseNumber  *string              `json:"licenseNumber"`
	Education      *[]models.Education  `json:"education"`
	Experience     *[]models.Experience `json:"experience"`
	IsActive       *bool                `json:"isActive"`
}

// UpdateDoctor applies a partial update. Doctors may only update their own profile.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RoleDoctor && middleware.GetProfileIDFromContext(c) != c.Param("id") {
		utils.Unauthorized(c, "Not authorized to update this doctor")
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.FirstName != nil {
		doctor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		doctor.LastName = *req.LastName
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Department != nil {
		doctor.Department = *req.Department
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.LicenseNumber != nil {
		doctor.LicenseNumber = *req.LicenseNumber
	}
	if req.Education != nil {
		doctor.Education = *req.Education
	}
	if req.Experience != nil {
		doctor.Experience = *req.Experience
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}
	utils.Success(c, doctor)
}

// DeleteDoctor deactivates a doctor. The record stays so past appointments
// and bills keep a valid reference.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	doctor.IsActive = false
	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate doctor: "+err.Error())
		return
	}
	utils.Success(c, doctor)
}

// GetAvailability returns a doctor's weekly availability windows.
func (h *DoctorHandler) GetAvailability(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.Preload("Availability").First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, doctor.Availability)
}

// UpdateAvailabilityRequest carries the replacement window set.
type UpdateAvailabilityRequest struct {
	Availability []models.AvailabilityWindow `json:"availability" binding:"required"`
}

// UpdateAvailability replaces a doctor's availability windows wholesale.
// Overlapping windows on the same day are rejected.
func (h *DoctorHandler) UpdateAvailability(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RoleDoctor && middleware.GetProfileIDFromContext(c) != c.Param("id") {
		utils.Unauthorized(c, "Not authorized to update this doctor's availability")
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req UpdateAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if err := models.ValidateAvailability(req.Availability); err != nil {
		utils.BadRequest(c, "Invalid availability: "+err.Error())
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&models.AvailabilityWindow{}).Error; err != nil {
			return err
		}
		for i := range req.Availability {
			req.Availability[i].ID = ""
			req.Availability[i].DoctorID = doctor.ID
			if err := tx.Create(&req.Availability[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update availability: "+err.Error())
		return
	}

	utils.Success(c, req.Availability)
}
