package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusNoShow      AppointmentStatus = "no-show"
	AppointmentStatusPresent     AppointmentStatus = "present"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

// IsValid checks if the status value is one of the defined constants.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCancelled,
		AppointmentStatusCompleted, AppointmentStatusNoShow, AppointmentStatusPresent,
		AppointmentStatusRescheduled:
		return true
	}
	return false
}

// Attended reports whether the appointment counts toward attendance.
func (s AppointmentStatus) Attended() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusPresent
}

// Missed reports whether the appointment counts toward cancellations.
func (s AppointmentStatus) Missed() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusNoShow
}

// RawAppointment is an appointment record as delivered by the data-fetching
// layer. Timestamp is an ISO string that may be malformed; adaptation is
// responsible for validating it.
type RawAppointment struct {
	ID           string            `json:"id"`
	PatientID    string            `json:"patient_id"`
	DoctorID     string            `json:"doctor_id"`
	Timestamp    string            `json:"timestamp"`
	Status       AppointmentStatus `json:"status"`
	Motive       string            `json:"motive"`
	IsFirstVisit bool              `json:"is_first_visit"`
}

// Appointment is the adapted, render-ready form of a RawAppointment.
type Appointment struct {
	ID           string            `json:"id"`
	PatientID    string            `json:"patient_id"`
	DoctorID     string            `json:"doctor_id"`
	ScheduledAt  time.Time         `json:"scheduled_at"`
	TimeOfDay    string            `json:"time_of_day"`
	Status       AppointmentStatus `json:"status"`
	Motive       string            `json:"motive"`
	IsFirstVisit bool              `json:"is_first_visit"`

	// DateValid is false when the raw timestamp could not be parsed; such
	// records are excluded from bucketing and date-based metrics.
	DateValid bool `json:"date_valid"`
}
