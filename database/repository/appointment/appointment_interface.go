package appointmentRepo

import (
	"context"
	"errors"

	"bloodlink/models"
)

var (
	// ErrNotFound is returned when no appointment matches the id.
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotTaken is returned when the unique occupying-slot index rejects a write.
	ErrSlotTaken = errors.New("an occupying appointment already starts at this time")
	// ErrStaleWrite is returned when the stored version moved on since the record was read.
	ErrStaleWrite = errors.New("appointment was modified concurrently")
)

// AppointmentRepository defines the persistence operations the scheduling core needs.
type AppointmentRepository interface {
	// Create inserts a new appointment record.
	Create(ctx context.Context, appt *models.Appointment) error
	// GetByID retrieves an appointment by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// Update replaces the stored fields of an existing appointment if its version
	// still matches appt.Version, then bumps the version.
	Update(ctx context.Context, appt *models.Appointment) error
	// FindOccupying returns appointments holding an interval at a bank on a date.
	FindOccupying(ctx context.Context, bloodBankID, date string) ([]models.Appointment, error)
	// List returns a page of appointments matching the filter and the total match count.
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int64, error)
	// FindStale returns appointments in the given statuses dated strictly before beforeDate.
	FindStale(ctx context.Context, statuses []models.AppointmentStatus, beforeDate string) ([]models.Appointment, error)
}
