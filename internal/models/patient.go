package models

import (
	"time"
)

// EmergencyContact is a nested contact record on a patient profile.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Patient represents a patient profile linked to a login identity.
type Patient struct {
	BaseModel
	FirstName        string           `gorm:"size:100;not null" json:"firstName"`
	LastName         string           `gorm:"size:100;not null" json:"lastName"`
	Gender           string           `gorm:"size:20" json:"gender"`
	DateOfBirth      *time.Time       `json:"dateOfBirth,omitempty"`
	BloodType        string           `gorm:"size:5" json:"bloodType,omitempty"`
	Phone            string           `gorm:"size:30" json:"phone"`
	Email            string           `gorm:"size:255" json:"email"`
	Address          string           `gorm:"size:255" json:"address,omitempty"`
	EmergencyContact EmergencyContact `gorm:"serializer:json" json:"emergencyContact"`
	Allergies        []string         `gorm:"serializer:json" json:"allergies"`
	AdmissionDate    time.Time        `gorm:"autoCreateTime" json:"admissionDate"`
	IsActive         bool             `gorm:"default:true" json:"isActive"`

	// Relations
	MedicalHistory []MedicalHistoryEntry `gorm:"foreignKey:PatientID" json:"medicalHistory,omitempty"`
}

// MedicalHistoryEntry is an append-only record in a patient's medical history.
type MedicalHistoryEntry struct {
	BaseModel
	PatientID string    `gorm:"size:36;index" json:"patientId"`
	Condition string    `gorm:"size:255" json:"condition"`
	Diagnosis string    `gorm:"size:255" json:"diagnosis"`
	Treatment string    `gorm:"type:text" json:"treatment"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	Date      time.Time `gorm:"autoCreateTime" json:"date"`
}
