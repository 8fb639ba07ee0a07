package analytics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinstack/dashboard-analytics/internal/domain/entities"
	apperrors "github.com/clinstack/dashboard-analytics/pkg/errors"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRawAppointments(t *testing.T) {
	path := writeFixture(t, "appointments.json", `[
		{"id": "a1", "patient_id": "p1", "doctor_id": "d1", "timestamp": "2026-08-03T09:30:00Z", "status": "completed", "is_first_visit": true},
		{"id": "a2", "patient_id": "p2", "timestamp": "not-a-date", "status": "scheduled"}
	]`)

	appointments, err := LoadRawAppointments(path)
	require.NoError(t, err)
	require.Len(t, appointments, 2)
	assert.Equal(t, "a1", appointments[0].ID)
	assert.Equal(t, entities.AppointmentStatusCompleted, appointments[0].Status)
	assert.True(t, appointments[0].IsFirstVisit)
	// Malformed timestamps load fine; the adapter deals with them.
	assert.Equal(t, "not-a-date", appointments[1].Timestamp)
}

func TestLoadRawPatients(t *testing.T) {
	path := writeFixture(t, "patients.json", `[
		{"id": "p1", "first_name": "Amara", "last_name": "Diallo", "registration_date": "2026-08-03", "status": "operated", "surgery_probability": 65}
	]`)

	patients, err := LoadRawPatients(path)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "Amara Diallo", patients[0].FullName())
	require.NotNil(t, patients[0].SurgeryProbability)
	assert.Equal(t, 65.0, *patients[0].SurgeryProbability)
}

func TestLoadRawAppointments_MissingFile(t *testing.T) {
	_, err := LoadRawAppointments(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestLoadRawPatients_MalformedJSON(t *testing.T) {
	path := writeFixture(t, "patients.json", `{"not": "an array"}`)

	_, err := LoadRawPatients(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}
