package scheduling

import (
	"context"
	"errors"
	"strings"

	appointmentRepo "bloodlink/database/repository/appointment"
	"bloodlink/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAppointment books a slot for a donor. Checks run in order and the first
// failure wins: blood bank, donor eligibility, future start, slot availability.
func (s *Service) CreateAppointment(ctx context.Context, req CreateRequest) (*models.Appointment, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	slot, err := parseSlot(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	donationType, err := models.ParseDonationType(req.DonationType)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid donation type", Err: err}
	}
	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid priority", Err: err}
	}

	bank, err := s.loadUser(ctx, req.BloodBankID, "blood bank not found")
	if err != nil {
		return nil, err
	}
	if !bank.IsActiveBloodBank() {
		return nil, newError(KindNotFound, "blood bank not found")
	}

	donor, err := s.loadUser(ctx, req.DonorID, "donor not found")
	if err != nil {
		return nil, err
	}
	now := s.now()
	if el := Eligibility(donor, now, s.eligibilityWindow()); !el.Eligible {
		return nil, &Error{Kind: KindIneligibleDonor, Message: "donor is not currently eligible to donate: " + strings.Join(el.Reasons, "; ")}
	}

	startsAt, err := models.StartInstant(date, slot.StartTime, s.loc())
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid appointment date", Err: err}
	}
	if !startsAt.After(now) {
		return nil, newError(KindInvalidDate, "appointment date must be in the future")
	}

	appt := &models.Appointment{
		ID:                  uuid.New().String(),
		DonorID:             donor.ID,
		BloodBankID:         bank.ID,
		AppointmentDate:     date,
		TimeSlot:            slot,
		DonationType:        donationType,
		Status:              models.StatusScheduled,
		Priority:            priority,
		Notes:               req.Notes,
		SpecialRequirements: req.SpecialRequirements,
		PreScreening:        req.PreScreening,
		Location:            bank.Location,
		Rescheduling:        models.Rescheduling{RescheduleCount: 0},
	}

	err = s.withBookingLock(ctx, bank.ID, date, func(ctx context.Context) error {
		existing, err := s.Appointments.FindOccupying(ctx, bank.ID, date)
		if err != nil {
			return internal("failed to load existing appointments", err)
		}
		if !IsSlotAvailable(bank.ID, date, slot, existing) {
			return newError(KindSlotConflict, "selected time slot is not available")
		}
		s.scheduleReminder(ctx, appt, startsAt)
		if err := s.Appointments.Create(ctx, appt); err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				return newError(KindSlotConflict, "selected time slot is not available")
			}
			return internal("failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log().Info("Appointment scheduled",
		zap.String("appointmentId", appt.ID),
		zap.String("donorId", appt.DonorID),
		zap.String("bloodBankId", appt.BloodBankID),
		zap.String("date", appt.AppointmentDate),
		zap.String("slot", appt.TimeSlot.String()))
	return appt, nil
}
