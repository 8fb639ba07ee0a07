package analytics

import (
	"encoding/json"
	"os"

	"github.com/clinstack/dashboard-analytics/internal/domain/entities"
	apperrors "github.com/clinstack/dashboard-analytics/pkg/errors"
)

// LoadRawAppointments reads a raw appointment collection from a JSON file.
func LoadRawAppointments(path string) ([]entities.RawAppointment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewNotFoundError("failed to read appointments file: "+path, err)
	}

	var appointments []entities.RawAppointment
	if err := json.Unmarshal(data, &appointments); err != nil {
		return nil, apperrors.NewInternalError("failed to parse appointments file: "+path, err)
	}

	return appointments, nil
}

// LoadRawPatients reads a raw patient collection from a JSON file.
func LoadRawPatients(path string) ([]entities.RawPatient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewNotFoundError("failed to read patients file: "+path, err)
	}

	var patients []entities.RawPatient
	if err := json.Unmarshal(data, &patients); err != nil {
		return nil, apperrors.NewInternalError("failed to parse patients file: "+path, err)
	}

	return patients, nil
}
