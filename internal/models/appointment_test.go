package models

import "testing"

func TestAppointmentActive(t *testing.T) {
	for _, tc := range []struct {
		status AppointmentStatus
		want   bool
	}{
		{StatusScheduled, true},
		{StatusCompleted, true},
		{StatusNoShow, true},
		{StatusCancelled, false},
	} {
		a := Appointment{Status: tc.status}
		if got := a.Active(); got != tc.want {
			t.Errorf("Active() with %s = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []AppointmentStatus{StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow} {
		if !ValidStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	for _, s := range []AppointmentStatus{"", "Ghosted", "scheduled"} {
		if ValidStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestAppointmentSlotKey(t *testing.T) {
	a := Appointment{
		DoctorID: "doc-1",
		Date:     "2024-05-01",
		Time:     "10:00",
		Status:   StatusScheduled,
	}

	if err := a.BeforeSave(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.SlotKey == nil || *a.SlotKey != "doc-1|2024-05-01|10:00" {
		t.Fatalf("unexpected slot key %v", a.SlotKey)
	}

	// Cancellation releases the slot.
	a.Status = StatusCancelled
	if err := a.BeforeSave(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.SlotKey != nil {
		t.Errorf("expected slot key cleared, got %q", *a.SlotKey)
	}

	// Completed appointments keep holding the slot.
	a.Status = StatusCompleted
	if err := a.BeforeSave(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.SlotKey == nil {
		t.Error("expected slot key for a completed appointment")
	}
}
