package scheduling

import (
	"context"

	"bloodlink/models"

	"go.uber.org/zap"
)

// CanTransition reports whether status may move from one value to another.
// Completed is locked; every other move is allowed.
func CanTransition(from, to models.AppointmentStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == models.StatusCompleted {
		return to == models.StatusCompleted
	}
	return true
}

// UpdateStatus sets a new lifecycle status. Re-activating an appointment that no
// longer holds its interval re-checks the slot under the booking lock.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, caller Caller) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, newErrorf(KindValidation, "unknown appointment status %q", status)
	}

	var from models.AppointmentStatus
	appt, err := s.mutateAppointment(ctx, id, func(appt *models.Appointment) error {
		if err := authorize(appt, caller); err != nil {
			return err
		}
		if caller.Role == models.RoleDonor {
			return newError(KindForbidden, "donors cannot change appointment status")
		}
		if !CanTransition(appt.Status, status) {
			return newErrorf(KindInvalidTransition, "cannot change status of a %s appointment", appt.Status)
		}
		from = appt.Status
		if from == status {
			return nil
		}

		apply := func(ctx context.Context) error {
			appt.Status = status
			if status == models.StatusCancelled && appt.Cancellation == nil {
				appt.Cancellation = &models.Cancellation{
					Reason:      defaultCancelReason,
					CancelledBy: caller.Actor(),
					CancelledAt: s.now(),
				}
			}
			return s.saveAppointment(ctx, appt)
		}
		if from.Occupies() || !status.Occupies() {
			return apply(ctx)
		}
		return s.withBookingLock(ctx, appt.BloodBankID, appt.AppointmentDate, func(ctx context.Context) error {
			existing, err := s.Appointments.FindOccupying(ctx, appt.BloodBankID, appt.AppointmentDate)
			if err != nil {
				return internal("failed to load existing appointments", err)
			}
			if !IsSlotAvailable(appt.BloodBankID, appt.AppointmentDate, appt.TimeSlot, withoutAppointment(existing, appt.ID)) {
				return newError(KindSlotConflict, "time slot has been taken by another appointment")
			}
			return apply(ctx)
		})
	})
	if err != nil {
		return nil, err
	}
	if from == status {
		return appt, nil
	}

	s.log().Info("Appointment status updated",
		zap.String("appointmentId", appt.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
		zap.String("actor", string(caller.Actor())))
	return appt, nil
}

// sweepStatuses never reached check-in.
var sweepStatuses = append(append([]models.AppointmentStatus{}, models.UpcomingStatuses...), models.StatusRescheduled)

// SweepNoShows marks appointments from earlier days that never reached check-in as no_show.
func (s *Service) SweepNoShows(ctx context.Context) (int, error) {
	today := s.now().In(s.loc()).Format(models.DateLayout)
	stale, err := s.Appointments.FindStale(ctx, sweepStatuses, today)
	if err != nil {
		return 0, internal("failed to load stale appointments", err)
	}

	marked := 0
	for i := range stale {
		appt := &stale[i]
		appt.Status = models.StatusNoShow
		// a losing write means the appointment moved on; the next sweep re-reads it
		if err := s.saveAppointment(ctx, appt); err != nil {
			s.log().Warn("Failed to mark appointment as no-show",
				zap.String("appointmentId", appt.ID), zap.Error(err))
			continue
		}
		marked++
	}
	if marked > 0 {
		s.log().Info("No-show sweep complete", zap.Int("marked", marked), zap.String("before", today))
	}
	return marked, nil
}
