package scheduling

import (
	"context"

	"bloodlink/models"

	"go.uber.org/zap"
)

const defaultCancelReason = "No reason provided"

// Cancel marks an appointment cancelled. Cancelling an already cancelled
// appointment succeeds and keeps the original cancellation record.
func (s *Service) Cancel(ctx context.Context, id, reason string, caller Caller) (*models.Appointment, error) {
	if reason == "" {
		reason = defaultCancelReason
	}

	changed := false
	appt, err := s.mutateAppointment(ctx, id, func(appt *models.Appointment) error {
		if err := authorize(appt, caller); err != nil {
			return err
		}
		switch appt.Status {
		case models.StatusCompleted:
			return newError(KindInvalidTransition, "cannot cancel a completed appointment")
		case models.StatusCancelled:
			changed = false
			return nil
		}

		appt.Status = models.StatusCancelled
		appt.Cancellation = &models.Cancellation{
			Reason:      reason,
			CancelledBy: caller.Actor(),
			CancelledAt: s.now(),
		}
		changed = true
		return s.saveAppointment(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log().Info("Appointment cancelled",
			zap.String("appointmentId", appt.ID),
			zap.String("cancelledBy", string(appt.Cancellation.CancelledBy)))
	}
	return appt, nil
}
