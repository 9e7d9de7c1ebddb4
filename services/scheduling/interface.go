package scheduling

import (
	"context"
	"time"

	"bloodlink/models"
)

// AppointmentService is the contract the HTTP layer and background workers use.
type AppointmentService interface {
	CreateAppointment(ctx context.Context, req CreateRequest) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id string, caller Caller) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filter models.AppointmentFilter, caller Caller) ([]models.Appointment, models.Pagination, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, caller Caller) (*models.Appointment, error)
	UpdateDetails(ctx context.Context, id string, req DetailsRequest, caller Caller) (*models.Appointment, error)
	Reschedule(ctx context.Context, id string, req RescheduleRequest, caller Caller) (*models.Appointment, error)
	Cancel(ctx context.Context, id, reason string, caller Caller) (*models.Appointment, error)
	AvailableSlots(ctx context.Context, bloodBankID, date string, durationMinutes int) (*AvailabilityResult, error)
	CheckEligibility(ctx context.Context, donorID string) (*models.EligibilityStatus, error)
	MarkReminded(ctx context.Context, payload models.ReminderPayload) error
	SweepNoShows(ctx context.Context) (int, error)
}

// ReminderScheduler queues the pre-appointment reminder for an appointment.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appt *models.Appointment, startsAt time.Time) (*models.ReminderInfo, error)
}

// Caller is the authenticated user issuing a request.
type Caller struct {
	UserID string
	Role   models.Role
}

func (c Caller) Actor() models.Actor { return models.ActorForRole(c.Role) }

// SystemCaller is used by background jobs.
var SystemCaller = Caller{Role: models.RoleAdmin}

// CreateRequest is a donor's booking request.
type CreateRequest struct {
	DonorID             string
	BloodBankID         string
	Date                string
	StartTime           string
	EndTime             string
	DonationType        string
	Priority            string
	Notes               string
	SpecialRequirements *models.SpecialRequirements
	PreScreening        map[string]any
}

// RescheduleRequest moves an appointment to a new date and interval.
type RescheduleRequest struct {
	Date      string
	StartTime string
	EndTime   string
	Reason    string
}

// DetailsRequest edits descriptive fields. Nil fields are left unchanged.
type DetailsRequest struct {
	// donor
	Notes               *string
	SpecialRequirements *models.SpecialRequirements
	PreScreening        map[string]any

	// blood bank
	InternalNotes *string
	AssignedStaff *models.AssignedStaff
	CheckIn       *models.CheckIn
	FollowUp      *models.FollowUp
	ConsentForms  *models.ConsentForms

	// admin only
	Feedback *models.Feedback
}

// AvailabilityResult is the slot listing for one bank on one date.
type AvailabilityResult struct {
	BloodBankID    string            `json:"bloodBankId"`
	Date           string            `json:"date"`
	Duration       int               `json:"duration"`
	OperatingHours *models.DayHours  `json:"operatingHours,omitempty"`
	AvailableSlots []models.TimeSlot `json:"availableSlots"`
	Message        string            `json:"message,omitempty"`
}
