package scheduling

import (
	"context"
	"math"
	"time"

	"bloodlink/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxPage         = 100000

	// MaxSlotMinutes is the longest slot that can be requested.
	MaxSlotMinutes = 24 * 60
)

// GetAppointment returns an appointment visible to caller.
func (s *Service) GetAppointment(ctx context.Context, id string, caller Caller) (*models.Appointment, error) {
	appt, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(appt, caller); err != nil {
		return nil, err
	}
	return appt, nil
}

// ListAppointments pages through appointments. Donors and blood banks only see their own.
func (s *Service) ListAppointments(ctx context.Context, filter models.AppointmentFilter, caller Caller) ([]models.Appointment, models.Pagination, error) {
	switch caller.Role {
	case models.RoleDonor:
		filter.DonorID = caller.UserID
	case models.RoleBloodBank:
		filter.BloodBankID = caller.UserID
	case models.RoleAdmin:
	default:
		return nil, models.Pagination{}, newError(KindForbidden, "access denied")
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.Pagination{}, newErrorf(KindValidation, "unknown appointment status %q", filter.Status)
	}
	for _, d := range []string{filter.StartDate, filter.EndDate} {
		if d == "" {
			continue
		}
		if _, err := parseDate(d); err != nil {
			return nil, models.Pagination{}, err
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > maxPage {
		filter.Page = maxPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	appts, total, err := s.Appointments.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, internal("failed to list appointments", err)
	}
	page := models.Pagination{
		Current:      filter.Page,
		Total:        int(math.Ceil(float64(total) / float64(filter.Limit))),
		Count:        len(appts),
		TotalRecords: total,
	}
	return appts, page, nil
}

// AvailableSlots loads a bank's hours and bookings for date and runs the availability engine.
// A zero duration uses the configured default.
func (s *Service) AvailableSlots(ctx context.Context, bloodBankID, date string, durationMinutes int) (*AvailabilityResult, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if durationMinutes == 0 {
		durationMinutes = s.slotMinutes()
	}
	if durationMinutes < 0 || durationMinutes > MaxSlotMinutes {
		return nil, &Error{Kind: KindValidation, Message: "invalid duration", Err: ErrInvalidDuration}
	}

	bank, err := s.loadUser(ctx, bloodBankID, "blood bank not found")
	if err != nil {
		return nil, err
	}
	if !bank.IsActiveBloodBank() {
		return nil, newError(KindNotFound, "blood bank not found")
	}

	parsed, _ := time.Parse(models.DateLayout, day)
	hours := bank.HoursOn(parsed.Weekday())
	result := &AvailabilityResult{
		BloodBankID:    bank.ID,
		Date:           day,
		Duration:       durationMinutes,
		AvailableSlots: []models.TimeSlot{},
	}
	if hours.Closed() {
		result.Message = "Blood bank is closed on this day"
		return result, nil
	}
	result.OperatingHours = hours

	existing, err := s.Appointments.FindOccupying(ctx, bank.ID, day)
	if err != nil {
		return nil, internal("failed to load existing appointments", err)
	}
	slots, err := ComputeAvailableSlots(SlotQuery{
		BloodBankID:     bank.ID,
		Date:            day,
		DurationMinutes: durationMinutes,
		Hours:           hours,
		Existing:        existing,
	})
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "invalid operating hours", Err: err}
	}
	result.AvailableSlots = slots
	return result, nil
}

// UpdateDetails edits descriptive fields. Each role may only touch its own fields;
// others in the request are ignored.
func (s *Service) UpdateDetails(ctx context.Context, id string, req DetailsRequest, caller Caller) (*models.Appointment, error) {
	if req.Feedback != nil {
		if err := req.Feedback.Validate(); err != nil {
			return nil, &Error{Kind: KindValidation, Message: "invalid feedback", Err: err}
		}
	}

	return s.mutateAppointment(ctx, id, func(appt *models.Appointment) error {
		if err := authorize(appt, caller); err != nil {
			return err
		}

		isAdmin := caller.Role == models.RoleAdmin
		if caller.Role == models.RoleDonor || isAdmin {
			if req.Notes != nil {
				appt.Notes = *req.Notes
			}
			if req.SpecialRequirements != nil {
				appt.SpecialRequirements = req.SpecialRequirements
			}
			if req.PreScreening != nil {
				appt.PreScreening = req.PreScreening
			}
		}
		if caller.Role == models.RoleBloodBank || isAdmin {
			if req.InternalNotes != nil {
				appt.InternalNotes = *req.InternalNotes
			}
			if req.AssignedStaff != nil {
				appt.AssignedStaff = req.AssignedStaff
			}
			if req.CheckIn != nil {
				appt.CheckIn = req.CheckIn
			}
			if req.FollowUp != nil {
				appt.FollowUp = req.FollowUp
			}
			if req.ConsentForms != nil {
				appt.ConsentForms = req.ConsentForms
			}
		}
		if isAdmin && req.Feedback != nil {
			appt.Feedback = req.Feedback
		}
		return s.saveAppointment(ctx, appt)
	})
}
