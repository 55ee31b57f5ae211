package models

import (
	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusNoShow    AppointmentStatus = "No-Show"
)

// ValidStatus reports whether s is one of the permitted appointment statuses.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment represents a booked consultation slot. Dates are ISO
// "2006-01-02" strings and times are "15:04" strings, so the slot key
// and range filters behave the same on every SQL dialect.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index" json:"patientId"`
	DoctorID  string            `gorm:"size:36;index" json:"doctorId"`
	Date      string            `gorm:"size:10;not null" json:"date"`
	Time      string            `gorm:"size:5;not null" json:"time"`
	Reason    string            `gorm:"size:255" json:"reason"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
	Status    AppointmentStatus `gorm:"size:20;default:'Scheduled'" json:"status"`

	// SlotKey is doctorID|date|time for active appointments and NULL once
	// cancelled. The unique index is what actually guarantees slot
	// exclusivity: two concurrent bookings can both pass the read check,
	// but only one insert commits.
	SlotKey *string `gorm:"uniqueIndex;size:64" json:"-"`

	// Relations
	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
}

// Active reports whether the appointment still occupies its slot.
func (a *Appointment) Active() bool {
	return a.Status != StatusCancelled
}

func (a *Appointment) slotKey() string {
	return a.DoctorID + "|" + a.Date + "|" + a.Time
}

// BeforeSave keeps SlotKey in sync with the doctor/date/time tuple and
// releases the slot when the appointment is cancelled.
func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	if a.Active() {
		key := a.slotKey()
		a.SlotKey = &key
	} else {
		a.SlotKey = nil
	}
	return nil
}
