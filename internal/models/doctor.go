package models

import (
	"fmt"
	"time"
)

// Education is a nested entry on a doctor profile.
type Education struct {
	Degree     string `json:"degree"`
	University string `json:"university"`
	Year       int    `json:"year"`
}

// Experience is a nested entry on a doctor profile.
type Experience struct {
	Position string     `json:"position"`
	Hospital string     `json:"hospital"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
	Current  bool       `json:"current"`
}

// Doctor represents a doctor profile. Deactivated doctors are kept with
// IsActive=false instead of being removed.
type Doctor struct {
	BaseModel
	FirstName      string       `gorm:"size:100;not null" json:"firstName"`
	LastName       string       `gorm:"size:100;not null" json:"lastName"`
	Specialization string       `gorm:"size:100;not null" json:"specialization"`
	Department     string       `gorm:"size:100" json:"department"`
	Phone          string       `gorm:"size:30" json:"phone"`
	Email          string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	LicenseNumber  string       `gorm:"uniqueIndex;size:100;not null" json:"licenseNumber"`
	Education      []Education  `gorm:"serializer:json" json:"education"`
	Experience     []Experience `gorm:"serializer:json" json:"experience"`
	IsActive       bool         `gorm:"default:true" json:"isActive"`

	// Relations
	Availability []AvailabilityWindow `gorm:"foreignKey:DoctorID" json:"availability,omitempty"`
}

// AvailabilityWindow is a weekly consultation window for a doctor.
type AvailabilityWindow struct {
	BaseModel
	DoctorID  string `gorm:"size:36;index" json:"doctorId"`
	Day       string `gorm:"size:10" json:"day"`
	StartTime string `gorm:"size:5" json:"startTime"`
	EndTime   string `gorm:"size:5" json:"endTime"`
}

var weekdays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true,
	"Thursday": true, "Friday": true, "Saturday": true, "Sunday": true,
}

// ValidateAvailability checks a replacement set of availability windows.
// Each window must name a weekday, carry well-formed HH:MM bounds with
// start before end, and windows on the same day must not overlap.
func ValidateAvailability(windows []AvailabilityWindow) error {
	for i := range windows {
		w := &windows[i]
		if !weekdays[w.Day] {
			return fmt.Errorf("invalid day %q", w.Day)
		}
		start, err := time.Parse("15:04", w.StartTime)
		if err != nil {
			return fmt.Errorf("invalid startTime %q", w.StartTime)
		}
		end, err := time.Parse("15:04", w.EndTime)
		if err != nil {
			return fmt.Errorf("invalid endTime %q", w.EndTime)
		}
		if !start.Before(end) {
			return fmt.Errorf("startTime %s must be before endTime %s", w.StartTime, w.EndTime)
		}
	}
	for i := range windows {
		for j := i + 1; j < len(windows); j++ {
			if windows[i].Day != windows[j].Day {
				continue
			}
			// HH:MM strings compare correctly lexicographically.
			if windows[i].StartTime < windows[j].EndTime && windows[j].StartTime < windows[i].EndTime {
				return fmt.Errorf("overlapping windows on %s: %s-%s and %s-%s",
					windows[i].Day,
					windows[i].StartTime, windows[i].EndTime,
					windows[j].StartTime, windows[j].EndTime)
			}
		}
	}
	return nil
}
