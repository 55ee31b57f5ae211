package handlers

import (
	"math"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// ReportHandler produces admin-facing summary statistics.
type ReportHandler struct {
	DB *gorm.DB
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

// StatusCount is one grouped row of a status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// TopDoctor is one row of the busiest-doctors breakdown.
type TopDoctor struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization"`
	Count          int64  `json:"count"`
}

// GetAppointmentStats returns appointment counts grouped by status plus the
// five most booked doctors for the requested date range.
func (h *ReportHandler) GetAppointmentStats(c *gin.Context) {
	query := h.DB.Model(&models.Appointment{})
	// ISO date strings compare correctly, so range filters are plain
	// string comparisons.
	if start := c.Query("startDate"); start != "" {
		query = query.Where("date >= ?", start)
	}
	if end := c.Query("endDate"); end != "" {
		query = query.Where("date <= ?", end)
	}

	var statuses []StatusCount
	if err := query.Session(&gorm.Session{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statuses).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate appointments: "+err.Error())
		return
	}

	var total int64
	for _, s := range statuses {
		total += s.Count
	}

	var topDoctors []TopDoctor
	if err := query.Session(&gorm.Session{}).
		Joins("JOIN doctors ON doctors.id = appointments.doctor_id").
		Select("doctors.first_name, doctors.last_name, doctors.specialization, count(*) as count").
		Group("doctors.id, doctors.first_name, doctors.last_name, doctors.specialization").
		Order("count desc").
		Limit(5).
		Scan(&topDoctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate doctors: "+err.Error())
		return
	}

	utils.Success(c, gin.H{
		"summary": gin.H{
			"total":    total,
			"statuses": statuses,
		},
		"topDoctors": topDoctors,
	})
}

// FinancialStatusRow is one grouped row of the financial roll-up.
type FinancialStatusRow struct {
	Status      string  `json:"status"`
	TotalAmount float64 `json:"totalAmount"`
	PaidAmount  float64 `json:"paidAmount"`
	Count       int64   `json:"count"`
}

// MonthlyRevenue is one month's revenue and collections.
type MonthlyRevenue struct {
	Period    string  `json:"period"`
	Revenue   float64 `json:"revenue"`
	Collected float64 `json:"collected"`
}

// GetFinancialReports returns revenue totals grouped by payment status plus
// a monthly revenue series for the requested date range.
func (h *ReportHandler) GetFinancialReports(c *gin.Context) {
	query := h.DB.Model(&models.Bill{})
	if start := c.Query("startDate"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			query = query.Where("date_issued >= ?", t)
		}
	}
	if end := c.Query("endDate"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			query = query.Where("date_issued <= ?", t.AddDate(0, 0, 1))
		}
	}

	var statuses []FinancialStatusRow
	if err := query.Session(&gorm.Session{}).
		Select("payment_status as status, sum(total_amount) as total_amount, sum(paid_amount) as paid_amount, count(*) as count").
		Group("payment_status").
		Scan(&statuses).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate bills: "+err.Error())
		return
	}

	var totalRevenue, totalCollected float64
	for _, s := range statuses {
		totalRevenue += s.TotalAmount
		totalCollected += s.PaidAmount
	}

	// Month bucketing happens here rather than in SQL so the query works
	// on every dialect.
	var rows []models.Bill
	if err := query.Session(&gorm.Session{}).
		Select("date_issued, total_amount, paid_amount").
		Find(&rows).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch bill rows: "+err.Error())
		return
	}

	buckets := make(map[string]*MonthlyRevenue)
	for _, b := range rows {
		period := b.DateIssued.Format("2006-01")
		m, ok := buckets[period]
		if !ok {
			m = &MonthlyRevenue{Period: period}
			buckets[period] = m
		}
		m.Revenue += b.TotalAmount
		m.Collected += b.PaidAmount
	}

	monthly := make([]MonthlyRevenue, 0, len(buckets))
	for _, m := range buckets {
		monthly = append(monthly, *m)
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Period < monthly[j].Period })

	utils.Success(c, gin.H{
		"summary": gin.H{
			"totalRevenue":   totalRevenue,
			"totalCollected": totalCollected,
			"outstanding":    totalRevenue - totalCollected,
			"statuses":       statuses,
		},
		"monthlyRevenue": monthly,
	})
}

// GenderDemographic is one row of the demographics breakdown.
type GenderDemographic struct {
	Gender     string  `json:"gender"`
	Count      int64   `json:"count"`
	AverageAge float64 `json:"averageAge"`
}

// BloodTypeCount is one row of the blood-type breakdown.
type BloodTypeCount struct {
	BloodType string `json:"bloodType"`
	Count     int64  `json:"count"`
}

// GetPatientDemographics returns gender demographics with average age and
// blood-type counts for patients admitted in the requested date range.
func (h *ReportHandler) GetPatientDemographics(c *gin.Context) {
	query := h.DB.Model(&models.Patient{})
	if start := c.Query("startDate"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			query = query.Where("admission_date >= ?", t)
		}
	}
	if end := c.Query("endDate"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			query = query.Where("admission_date <= ?", t.AddDate(0, 0, 1))
		}
	}

	var patients []models.Patient
	if err := query.Session(&gorm.Session{}).
		Select("gender, date_of_birth").
		Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	// Average age is computed here: date arithmetic in SQL is dialect
	// specific.
	type genderAgg struct {
		count    int64
		ageSum   float64
		ageCount int64
	}
	now := time.Now()
	byGender := make(map[string]*genderAgg)
	for _, p := range patients {
		agg, ok := byGender[p.Gender]
		if !ok {
			agg = &genderAgg{}
			byGender[p.Gender] = agg
		}
		agg.count++
		if p.DateOfBirth != nil {
			agg.ageSum += now.Sub(*p.DateOfBirth).Hours() / 24 / 365.25
			agg.ageCount++
		}
	}

	demographics := make([]GenderDemographic, 0, len(byGender))
	for gender, agg := range byGender {
		row := GenderDemographic{Gender: gender, Count: agg.count}
		if agg.ageCount > 0 {
			row.AverageAge = math.Round(agg.ageSum/float64(agg.ageCount)*10) / 10
		}
		demographics = append(demographics, row)
	}
	sort.Slice(demographics, func(i, j int) bool { return demographics[i].Gender < demographics[j].Gender })

	var bloodTypes []BloodTypeCount
	if err := query.Session(&gorm.Session{}).
		Select("blood_type, count(*) as count").
		Group("blood_type").
		Scan(&bloodTypes).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate blood types: "+err.Error())
		return
	}

	utils.Success(c, gin.H{
		"demographics":   demographics,
		"bloodTypeStats": bloodTypes,
	})
}
