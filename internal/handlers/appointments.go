package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// AppointmentHandler handles appointment scheduling requests.
type AppointmentHandler struct {
	DB *gorm.DB
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db}
}

// patientRef and doctorRef are the minimal display fields appointments are
// enriched with when listed.
type patientRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type doctorRef struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization"`
}

type appointmentView struct {
	models.Appointment
	Patient *patientRef `json:"patient,omitempty"`
	Doctor  *doctorRef  `json:"doctor,omitempty"`
}

func toAppointmentView(a models.Appointment) appointmentView {
	view := appointmentView{Appointment: a}
	if a.Patient.ID != "" {
		view.Patient = &patientRef{
			ID:        a.Patient.ID,
			FirstName: a.Patient.FirstName,
			LastName:  a.Patient.LastName,
			Phone:     a.Patient.Phone,
			Email:     a.Patient.Email,
		}
	}
	if a.Doctor.ID != "" {
		view.Doctor = &doctorRef{
			ID:             a.Doctor.ID,
			FirstName:      a.Doctor.FirstName,
			LastName:       a.Doctor.LastName,
			Specialization: a.Doctor.Specialization,
		}
	}
	return view
}

// isDuplicateSlot reports whether err is the unique slot-key violation.
// TranslateError covers MySQL; the message sniff covers drivers that do not
// implement the translator.
func isDuplicateSlot(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}

const conflictMessage = "Doctor already has an appointment at this time"

// hasConflict checks for another active appointment holding the same
// doctor/date/time. excludeID skips the record being updated.
func (h *AppointmentHandler) hasConflict(doctorID, date, timeStr, excludeID string) (bool, error) {
	query := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ? AND status <> ?",
			doctorID, date, timeStr, models.StatusCancelled)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func validSlot(date, timeStr string) bool {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return false
	}
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return false
	}
	return true
}

// CreateAppointmentRequest represents the request body for booking a slot.
type CreateAppointmentRequest struct {
	DoctorID  string `json:"doctorId" binding:"required"`
	PatientID string `json:"patientId"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Notes     string `json:"notes"`
}

// CreateAppointment books a slot with a doctor. Patients always book for
// themselves; doctors and admins may book on a patient's behalf.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RolePatient {
		req.PatientID = middleware.GetProfileIDFromContext(c)
	}
	if req.PatientID == "" {
		utils.BadRequest(c, "patientId is required")
		return
	}
	if !validSlot(req.Date, req.Time) {
		utils.BadRequest(c, "date must be YYYY-MM-DD and time must be HH:MM")
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", req.DoctorID).Error; err != nil || !doctor.IsActive {
		if err != nil && err != gorm.ErrRecordNotFound {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
			return
		}
		utils.NotFound(c, "Doctor not available")
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil || !patient.IsActive {
		if err != nil && err != gorm.ErrRecordNotFound {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
			return
		}
		utils.NotFound(c, "Patient not found")
		return
	}

	// Friendly pre-check; the unique slot key below is the real guard.
	conflict, err := h.hasConflict(req.DoctorID, req.Date, req.Time, "")
	if err != nil {
		utils.InternalServerError(c, "Database error checking conflicts: "+err.Error())
		return
	}
	if conflict {
		utils.BadRequest(c, conflictMessage)
		return
	}

	appointment := models.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		Notes:     req.Notes,
		Status:    models.StatusScheduled,
	}
	if err := h.DB.Create(&appointment).Error; err != nil {
		if isDuplicateSlot(err) {
			utils.BadRequest(c, conflictMessage)
			return
		}
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	utils.Created(c, appointment)
}

// GetAppointments lists appointments scoped by role: patients and doctors
// see their own, admins see everything with optional filters.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	profileID := middleware.GetProfileIDFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").Order("date asc, time asc")

	switch role {
	case models.RolePatient:
		query = query.Where("patient_id = ?", profileID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", profileID)
	case models.RoleAdmin:
		if doctorID := c.Query("doctorId"); doctorID != "" {
			query = query.Where("doctor_id = ?", doctorID)
		}
		if patientID := c.Query("patientId"); patientID != "" {
			query = query.Where("patient_id = ?", patientID)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if date := c.Query("date"); date != "" {
			query = query.Where("date = ?", date)
		}
	default:
		utils.Unauthorized(c, "Role not permitted to view appointments")
		return
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	views := make([]appointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, toAppointmentView(a))
	}
	utils.SuccessWithCount(c, len(views), views)
}

// loadAuthorized fetches an appointment and enforces the ownership rule:
// the owning patient, the assigned doctor, or an admin.
func (h *AppointmentHandler) loadAuthorized(c *gin.Context) (*models.Appointment, bool) {
	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	profileID := middleware.GetProfileIDFromContext(c)

	switch role {
	case models.RoleAdmin:
	case models.RolePatient:
		if appointment.PatientID != profileID {
			utils.Unauthorized(c, "Not authorized to access this appointment")
			return nil, false
		}
	case models.RoleDoctor:
		if appointment.DoctorID != profileID {
			utils.Unauthorized(c, "Not authorized to access this appointment")
			return nil, false
		}
	default:
		utils.Unauthorized(c, "Not authorized to access this appointment")
		return nil, false
	}

	return &appointment, true
}

// GetAppointment returns a single appointment.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appointment, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	utils.Success(c, toAppointmentView(*appointment))
}

// UpdateAppointmentRequest represents a partial appointment update.
type UpdateAppointmentRequest struct {
	Date   *string                   `json:"date"`
	Time   *string                   `json:"time"`
	Reason *string                   `json:"reason"`
	Notes  *string                   `json:"notes"`
	Status *models.AppointmentStatus `json:"status"`
}

// UpdateAppointment applies a partial update. A date or time change re-runs
// the conflict check against the doctor's other active appointments.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	appointment, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Status != nil && !models.ValidStatus(*req.Status) {
		utils.BadRequest(c, "Invalid appointment status")
		return
	}

	newDate := appointment.Date
	newTime := appointment.Time
	if req.Date != nil {
		newDate = *req.Date
	}
	if req.Time != nil {
		newTime = *req.Time
	}
	if !validSlot(newDate, newTime) {
		utils.BadRequest(c, "date must be YYYY-MM-DD and time must be HH:MM")
		return
	}

	slotChanged := newDate != appointment.Date || newTime != appointment.Time
	if slotChanged {
		conflict, err := h.hasConflict(appointment.DoctorID, newDate, newTime, appointment.ID)
		if err != nil {
			utils.InternalServerError(c, "Database error checking conflicts: "+err.Error())
			return
		}
		if conflict {
			utils.BadRequest(c, conflictMessage)
			return
		}
	}

	appointment.Date = newDate
	appointment.Time = newTime
	if req.Reason != nil {
		appointment.Reason = *req.Reason
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.Status != nil {
		appointment.Status = *req.Status
	}

	if err := h.DB.Omit(clause.Associations).Save(appointment).Error; err != nil {
		if isDuplicateSlot(err) {
			utils.BadRequest(c, conflictMessage)
			return
		}
		utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
		return
	}

	utils.Success(c, toAppointmentView(*appointment))
}

// CancelAppointment soft-deletes an appointment by moving it to Cancelled,
// freeing the slot for rebooking. Cancelling twice is a no-op.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appointment, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	if appointment.Status != models.StatusCancelled {
		appointment.Status = models.StatusCancelled
		if err := h.DB.Omit(clause.Associations).Save(appointment).Error; err != nil {
			utils.InternalServerError(c, "Failed to cancel appointment: "+err.Error())
			return
		}
	}

	utils.Success(c, gin.H{})
}
