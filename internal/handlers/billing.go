package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// BillingHandler handles billing ledger requests.
type BillingHandler struct {
	DB *gorm.DB
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(db *gorm.DB) *BillingHandler {
	return &BillingHandler{DB: db}
}

// GetBills lists bills: admins see all, patients only their own.
func (h *BillingHandler) GetBills(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Order("date_issued desc")
	if role == models.RolePatient {
		query = query.Where("patient_id = ?", middleware.GetProfileIDFromContext(c))
	}

	var bills []models.Bill
	if err := query.Find(&bills).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch bills: "+err.Error())
		return
	}
	utils.SuccessWithCount(c, len(bills), bills)
}

// loadAuthorized fetches a bill and enforces ownership: the billed patient
// or an admin.
func (h *BillingHandler) loadAuthorized(c *gin.Context) (*models.Bill, bool) {
	var bill models.Bill
	if err := h.DB.First(&bill, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Bill not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RolePatient && bill.PatientID != middleware.GetProfileIDFromContext(c) {
		utils.Unauthorized(c, "Not authorized to access this bill")
		return nil, false
	}

	return &bill, true
}

// GetBill returns a single bill.
func (h *BillingHandler) GetBill(c *gin.Context) {
	bill, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	utils.Success(c, bill)
}

// CreateBillRequest represents the request body for creating a bill.
// TotalAmount overrides the computed service sum when supplied.
type CreateBillRequest struct {
	PatientID      string                 `json:"patientId" binding:"required"`
	AppointmentID  *string                `json:"appointmentId"`
	Services       []models.Service       `json:"services"`
	TotalAmount    *float64               `json:"totalAmount"`
	PaymentMethod  string                 `json:"paymentMethod"`
	DueDate        *time.Time             `json:"dueDate"`
	InsuranceClaim *models.InsuranceClaim `json:"insuranceClaim"`
}

// CreateBill opens a ledger entry for a patient.
func (h *BillingHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	for _, s := range req.Services {
		if s.Cost < 0 {
			utils.BadRequest(c, "Service cost must not be negative")
			return
		}
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

	if req.AppointmentID != nil && *req.AppointmentID != "" {
		var appointment models.Appointment
		if err := h.DB.First(&appointment, "id = ?", *req.AppointmentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFound(c, "Appointment not found")
			} else {
				utils.InternalServerError(c, "Database error verifying appointment: "+err.Error())
			}
			return
		}
	}

	total := models.SumServiceCosts(req.Services)
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	}

	bill := models.Bill{
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		Services:      req.Services,
		TotalAmount:   total,
		PaidAmount:    0,
		PaymentStatus: models.PaymentPending,
		PaymentMethod: req.PaymentMethod,
		DueDate:       req.DueDate,
	}
	if req.InsuranceClaim != nil {
		bill.InsuranceClaim = *req.InsuranceClaim
	}

	if err := h.DB.Create(&bill).Error; err != nil {
		utils.InternalServerError(c, "Failed to create bill: "+err.Error())
		return
	}
	utils.Created(c, bill)
}

// UpdateBillRequest represents a partial bill update. A services patch
// replaces the list wholesale and recomputes the total.
type UpdateBillRequest struct {
	Services       *[]models.Service      `json:"services"`
	PaymentMethod  *string                `json:"paymentMethod"`
	DueDate        *time.Time             `json:"dueDate"`
	InsuranceClaim *models.InsuranceClaim `json:"insuranceClaim"`
}

// UpdateBill applies a partial update.
func (h *BillingHandler) UpdateBill(c *gin.Context) {
	bill, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Services != nil {
		for _, s := range *req.Services {
			if s.Cost < 0 {
				utils.BadRequest(c, "Service cost must not be negative")
				return
			}
		}
		bill.ReplaceServices(*req.Services)
	}
	if req.PaymentMethod != nil {
		bill.PaymentMethod = *req.PaymentMethod
	}
	if req.DueDate != nil {
		bill.DueDate = req.DueDate
	}
	if req.InsuranceClaim != nil {
		bill.InsuranceClaim = *req.InsuranceClaim
	}

	if err := h.DB.Omit(clause.Associations).Save(bill).Error; err != nil {
		utils.InternalServerError(c, "Failed to update bill: "+err.Error())
		return
	}
	utils.Success(c, bill)
}

// RecordPaymentRequest represents the request body for recording a payment.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

// RecordPayment adds a payment to the bill's running total and re-derives
// the payment status. Amounts must be positive; a rejected recording leaves
// the bill untouched.
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	bill, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if err := bill.RecordPayment(req.Amount, req.Method); err != nil {
		utils.BadRequest(c, "Please provide a valid payment amount")
		return
	}

	if err := h.DB.Omit(clause.Associations).Save(bill).Error; err != nil {
		utils.InternalServerError(c, "Failed to record payment: "+err.Error())
		return
	}
	utils.Success(c, bill)
}

// GenerateInvoice returns the read-only invoice projection of a bill.
func (h *BillingHandler) GenerateInvoice(c *gin.Context) {
	bill, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var patient models.Patient
	var patientRef *models.Patient
	if err := h.DB.First(&patient, "id = ?", bill.PatientID).Error; err == nil {
		patientRef = &patient
	}

	utils.Success(c, bill.ToInvoice(patientRef))
}
