package scheduling

import (
	"context"

	"bloodlink/models"

	"go.uber.org/zap"
)

// Reschedule moves an appointment to a new date and interval. The first
// reschedule records the original date; the count is capped.
func (s *Service) Reschedule(ctx context.Context, id string, req RescheduleRequest, caller Caller) (*models.Appointment, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	slot, err := parseSlot(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	var previousDate string
	appt, err := s.mutateAppointment(ctx, id, func(appt *models.Appointment) error {
		if err := authorize(appt, caller); err != nil {
			return err
		}
		if appt.Status.Terminal() {
			return newErrorf(KindInvalidTransition, "cannot reschedule a %s appointment", appt.Status)
		}
		if appt.Rescheduling.RescheduleCount >= s.maxReschedules() {
			return newErrorf(KindRescheduleLimitExceeded, "maximum %d reschedules allowed", s.maxReschedules())
		}

		startsAt, err := models.StartInstant(date, slot.StartTime, s.loc())
		if err != nil {
			return &Error{Kind: KindValidation, Message: "invalid appointment date", Err: err}
		}
		now := s.now()
		if !startsAt.After(now) {
			return newError(KindInvalidDate, "appointment date must be in the future")
		}

		previousDate = appt.AppointmentDate
		return s.withBookingLock(ctx, appt.BloodBankID, date, func(ctx context.Context) error {
			existing, err := s.Appointments.FindOccupying(ctx, appt.BloodBankID, date)
			if err != nil {
				return internal("failed to load existing appointments", err)
			}
			if !IsSlotAvailable(appt.BloodBankID, date, slot, withoutAppointment(existing, appt.ID)) {
				return newError(KindSlotConflict, "selected time slot is not available")
			}

			if appt.Rescheduling.OriginalDate == "" {
				appt.Rescheduling.OriginalDate = previousDate
			}
			appt.Rescheduling.RescheduleCount++
			appt.Rescheduling.RescheduledAt = &now
			appt.Rescheduling.RescheduledBy = caller.Actor()
			appt.Rescheduling.Reason = req.Reason
			appt.AppointmentDate = date
			appt.TimeSlot = slot
			appt.Status = models.StatusRescheduled

			s.scheduleReminder(ctx, appt, startsAt)
			return s.saveAppointment(ctx, appt)
		})
	})
	if err != nil {
		return nil, err
	}

	s.log().Info("Appointment rescheduled",
		zap.String("appointmentId", appt.ID),
		zap.String("from", previousDate),
		zap.String("to", appt.AppointmentDate),
		zap.String("slot", appt.TimeSlot.String()),
		zap.Int("rescheduleCount", appt.Rescheduling.RescheduleCount))
	return appt, nil
}
