package entities

import (
	"strings"
	"time"
)

// PatientStatus represents where a patient sits in the clinical journey
type PatientStatus string

const (
	PatientStatusPotential   PatientStatus = "potential"
	PatientStatusActive      PatientStatus = "active"
	PatientStatusFollowUp    PatientStatus = "follow-up"
	PatientStatusOperated    PatientStatus = "operated"
	PatientStatusNotOperated PatientStatus = "not-operated"
	PatientStatusUndecided   PatientStatus = "undecided"
	PatientStatusInactive    PatientStatus = "inactive"
	PatientStatusDischarged  PatientStatus = "discharged"
)

// IsValid checks if the status value is one of the defined constants.
func (s PatientStatus) IsValid() bool {
	switch s {
	case PatientStatusPotential, PatientStatusActive, PatientStatusFollowUp,
		PatientStatusOperated, PatientStatusNotOperated, PatientStatusUndecided,
		PatientStatusInactive, PatientStatusDischarged:
		return true
	}
	return false
}

// IsTerminal reports whether the status is a terminal surgical decision.
// Declined patients are recorded as not-operated, so these two statuses
// form the conversion denominator.
func (s PatientStatus) IsTerminal() bool {
	return s == PatientStatusOperated || s == PatientStatusNotOperated
}

// RawPatient is a patient record as delivered by the data-fetching layer.
// Date fields are ISO strings that may be malformed or absent.
type RawPatient struct {
	ID                   string        `json:"id"`
	FirstName            string        `json:"first_name"`
	LastName             string        `json:"last_name"`
	RegistrationDate     string        `json:"registration_date"`
	UpdatedAt            string        `json:"updated_at,omitempty"`
	Status               PatientStatus `json:"status"`
	PrimaryDiagnosis     string        `json:"primary_diagnosis,omitempty"`
	SurgeryProbability   *float64      `json:"surgery_probability,omitempty"`
	Source               string        `json:"source,omitempty"`
	ScheduledSurgeryDate string        `json:"scheduled_surgery_date,omitempty"`
}

// FullName joins the name parts, skipping empty components.
func (p *RawPatient) FullName() string {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(p.FirstName) != "" {
		parts = append(parts, strings.TrimSpace(p.FirstName))
	}
	if strings.TrimSpace(p.LastName) != "" {
		parts = append(parts, strings.TrimSpace(p.LastName))
	}
	return strings.Join(parts, " ")
}

// Patient is the adapted, render-ready form of a RawPatient.
type Patient struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	RegisteredAt       time.Time     `json:"registered_at"`
	RegistrationValid  bool          `json:"registration_valid"`
	StatusChangedAt    time.Time     `json:"status_changed_at"`
	StatusChangeValid  bool          `json:"status_change_valid"`
	Status             PatientStatus `json:"status"`
	PrimaryDiagnosis   string        `json:"primary_diagnosis,omitempty"`
	SurgeryProbability *float64      `json:"surgery_probability,omitempty"`
	Source             string        `json:"source,omitempty"`
	SurgeryDate        *time.Time    `json:"surgery_date,omitempty"`
}
