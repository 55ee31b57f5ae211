package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// PatientHandler handles patient registry requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// GetPatients returns all patients.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	var patients []models.Patient
	if err := h.DB.Order("created_at desc").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.SuccessWithCount(c, len(patients), patients)
}

// GetPatient returns a single patient. Patients may only read their own record.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RolePatient && middleware.GetProfileIDFromContext(c) != c.Param("id") {
		utils.Unauthorized(c, "Not authorized to access this patient")
		return
	}

	var patient models.Patient
	if err := h.DB.Preload("MedicalHistory").First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, patient)
}

// CreatePatientRequest represents the request body for creating a patient.
type CreatePatientRequest struct {
	FirstName        string                  `json:"firstName" binding:"required"`
	LastName         string                  `json:"lastName" binding:"required"`
	Gender           string                  `json:"gender"`
	DateOfBirth      *time.Time              `json:"dateOfBirth"`
	BloodType        string                  `json:"bloodType"`
	Phone            string                  `json:"phone" binding:"required"`
	Email            string                  `json:"email" binding:"required,email"`
	Address          string                  `json:"address"`
	EmergencyContact models.EmergencyContact `json:"emergencyContact"`
	Allergies        []string                `json:"allergies"`
}

// CreatePatient registers a new patient.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := models.Patient{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Gender:           req.Gender,
		DateOfBirth:      req.DateOfBirth,
		BloodType:        req.BloodType,
		Phone:            req.Phone,
		Email:            req.Email,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		Allergies:        req.Allergies,
		IsActive:         true,
	}
	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}
	utils.Created(c, patient)
}

// UpdatePatientRequest represents a partial patient update.
type UpdatePatientRequest struct {
	FirstName        *string                  `json:"firstName"`
	LastName         *string                  `json:"lastName"`
	Gender           *string                  `json:"gender"`
	DateOfBirth      *time.Time               `json:"dateOfBirth"`
	BloodType        *string                  `json:"bloodType"`
	Phone            *string                  `json:"phone"`
	Email            *string                  `json:"email"`
	Address          *string                  `json:"address"`
	EmergencyContact *models.EmergencyContact `json:"emergencyContact"`
	Allergies        *[]string                `json:"allergies"`
	IsActive         *bool                    `json:"isActive"`
}

// UpdatePatient applies a partial update. Patients may only update their own record.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RolePatient && middleware.GetProfileIDFromContext(c) != c.Param("id") {
		utils.Unauthorized(c, "Not authorized to update this patient")
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.BloodType != nil {
		patient.BloodType = *req.BloodType
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}
	if req.Allergies != nil {
		patient.Allergies = *req.Allergies
	}
	if req.IsActive != nil {
		patient.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}
	utils.Success(c, patient)
}

// DeletePatient removes a patient record.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+err.Error())
		return
	}
	utils.Success(c, gin.H{})
}

// GetMedicalHistory returns a patient's medical history entries.
func (h *PatientHandler) GetMedicalHistory(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RolePatient && middleware.GetProfileIDFromContext(c) != c.Param("id") {
		utils.Unauthorized(c, "Not authorized to access this patient's history")
		return
	}

	var patient models.Patient
	if err := h.DB.Preload("MedicalHistory").First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, patient.MedicalHistory)
}

// AddMedicalHistoryRequest represents the request body for a history entry.
type AddMedicalHistoryRequest struct {
	Condition string `json:"condition" binding:"required"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	Notes     string `json:"notes"`
}

// AddMedicalHistory appends an entry to a patient's medical history.
func (h *PatientHandler) AddMedicalHistory(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req AddMedicalHistoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	entry := models.MedicalHistoryEntry{
		PatientID: patient.ID,
		Condition: req.Condition,
		Diagnosis: req.Diagnosis,
		Treatment: req.Treatment,
		Notes:     req.Notes,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to add history entry: "+err.Error())
		return
	}

	var history []models.MedicalHistoryEntry
	if err := h.DB.Where("patient_id = ?", patient.ID).Order("date asc").Find(&history).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch history: "+err.Error())
		return
	}
	utils.Success(c, history)
}
