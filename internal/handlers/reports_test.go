package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"hospital-admin-server/internal/handlers"
	"hospital-admin-server/internal/models"
)

func TestGetAppointmentStats(t *testing.T) {
	s := newTestServer(t)

	doctorA := s.seedDoctor(t, "Amy", "Ash")
	doctorB := s.seedDoctor(t, "Bob", "Bay")
	patient := s.seedPatient(t, "Paul", "Page")
	admin := s.tokenFor(t, models.RoleAdmin, "")

	seed := func(doctorID, date, timeStr string, status models.AppointmentStatus) {
		appt := models.Appointment{
			DoctorID: doctorID, PatientID: patient.ID,
			Date: date, Time: timeStr,
			Reason: "Visit", Status: status,
		}
		if err := s.db.Create(&appt).Error; err != nil {
			t.Fatalf("failed to seed appointment: %v", err)
		}
	}
	seed(doctorA.ID, "2024-03-01", "09:00", models.StatusCompleted)
	seed(doctorA.ID, "2024-03-02", "09:00", models.StatusScheduled)
	seed(doctorB.ID, "2024-03-03", "09:00", models.StatusCancelled)
	seed(doctorA.ID, "2024-04-10", "09:00", models.StatusScheduled)

	type stats struct {
		Summary struct {
			Total    int64                  `json:"total"`
			Statuses []handlers.StatusCount `json:"statuses"`
		} `json:"summary"`
		TopDoctors []handlers.TopDoctor `json:"topDoctors"`
	}

	t.Run("full range", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/reports/appointments", admin, nil)
		wantStatus(t, w, http.StatusOK)
		var got stats
		decodeData(t, env, &got)
		if got.Summary.Total != 4 {
			t.Fatalf("expected total 4, got %d", got.Summary.Total)
		}
		if len(got.TopDoctors) != 2 || got.TopDoctors[0].Count != 3 {
			t.Fatalf("expected doctor A on top with 3, got %+v", got.TopDoctors)
		}
	})

	t.Run("date range filter", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet,
			"/api/reports/appointments?startDate=2024-03-01&endDate=2024-03-31", admin, nil)
		wantStatus(t, w, http.StatusOK)
		var got stats
		decodeData(t, env, &got)
		if got.Summary.Total != 3 {
			t.Fatalf("expected total 3 in March, got %d", got.Summary.Total)
		}
	})

	t.Run("non-admin denied", func(t *testing.T) {
		token := s.tokenFor(t, models.RolePatient, patient.ID)
		w, _ := s.do(t, http.MethodGet, "/api/reports/appointments", token, nil)
		wantStatus(t, w, http.StatusUnauthorized)
	})
}

func TestGetFinancialReports(t *testing.T) {
	s := newTestServer(t)

	patient := s.seedPatient(t, "Rhea", "Ross")
	admin := s.tokenFor(t, models.RoleAdmin, "")

	seed := func(total, paid float64, status models.PaymentStatus) {
		bill := models.Bill{
			PatientID: patient.ID, TotalAmount: total, PaidAmount: paid,
			PaymentStatus: status,
		}
		if err := s.db.Create(&bill).Error; err != nil {
			t.Fatalf("failed to seed bill: %v", err)
		}
	}
	seed(100, 100, models.PaymentPaid)
	seed(200, 50, models.PaymentPartial)
	seed(300, 0, models.PaymentPending)

	w, env := s.do(t, http.MethodGet, "/api/reports/financial", admin, nil)
	wantStatus(t, w, http.StatusOK)

	var got struct {
		Summary struct {
			TotalRevenue   float64                       `json:"totalRevenue"`
			TotalCollected float64                       `json:"totalCollected"`
			Outstanding    float64                       `json:"outstanding"`
			Statuses       []handlers.FinancialStatusRow `json:"statuses"`
		} `json:"summary"`
		MonthlyRevenue []handlers.MonthlyRevenue `json:"monthlyRevenue"`
	}
	decodeData(t, env, &got)

	if got.Summary.TotalRevenue != 600 || got.Summary.TotalCollected != 150 {
		t.Fatalf("expected revenue 600 / collected 150, got %v/%v",
			got.Summary.TotalRevenue, got.Summary.TotalCollected)
	}
	if got.Summary.Outstanding != 450 {
		t.Fatalf("expected outstanding 450, got %v", got.Summary.Outstanding)
	}
	if len(got.Summary.Statuses) != 3 {
		t.Fatalf("expected 3 status rows, got %d", len(got.Summary.Statuses))
	}

	// All three bills were issued now, so they land in a single bucket.
	period := time.Now().Format("2006-01")
	if len(got.MonthlyRevenue) != 1 || got.MonthlyRevenue[0].Period != period {
		t.Fatalf("expected single bucket %s, got %+v", period, got.MonthlyRevenue)
	}
	if got.MonthlyRevenue[0].Revenue != 600 {
		t.Fatalf("expected bucket revenue 600, got %v", got.MonthlyRevenue[0].Revenue)
	}
}

func TestGetPatientDemographics(t *testing.T) {
	s := newTestServer(t)

	admin := s.tokenFor(t, models.RoleAdmin, "")

	dob := func(yearsAgo int) *time.Time {
		t := time.Now().AddDate(-yearsAgo, 0, 0)
		return &t
	}
	seed := func(first, gender, bloodType string, birth *time.Time) {
		patient := models.Patient{
			FirstName: first, LastName: "Demo",
			Gender: gender, BloodType: bloodType,
			DateOfBirth: birth,
			Phone:       "555-0400",
			Email:       first + ".demo@test.local",
			IsActive:    true,
		}
		if err := s.db.Create(&patient).Error; err != nil {
			t.Fatalf("failed to seed patient: %v", err)
		}
	}
	seed("Ada", "Female", "A+", dob(30))
	seed("Bea", "Female", "O-", dob(40))
	seed("Cal", "Male", "A+", dob(50))

	w, env := s.do(t, http.MethodGet, "/api/reports/patients", admin, nil)
	wantStatus(t, w, http.StatusOK)

	var got struct {
		Demographics   []handlers.GenderDemographic `json:"demographics"`
		BloodTypeStats []handlers.BloodTypeCount    `json:"bloodTypeStats"`
	}
	decodeData(t, env, &got)

	if len(got.Demographics) != 2 {
		t.Fatalf("expected 2 gender rows, got %+v", got.Demographics)
	}
	female := got.Demographics[0]
	if female.Gender != "Female" || female.Count != 2 {
		t.Fatalf("expected Female count 2 first, got %+v", female)
	}
	if female.AverageAge < 34.5 || female.AverageAge > 35.5 {
		t.Fatalf("expected female average age near 35, got %v", female.AverageAge)
	}

	counts := map[string]int64{}
	for _, b := range got.BloodTypeStats {
		counts[b.BloodType] = b.Count
	}
	if counts["A+"] != 2 || counts["O-"] != 1 {
		t.Fatalf("unexpected blood type counts %+v", counts)
	}
}
