package scheduling

import (
	"context"
	"time"

	"bloodlink/models"

	"go.uber.org/zap"
)

// scheduleReminder queues the reminder and records it on appt. A queue failure
// never blocks a booking.
func (s *Service) scheduleReminder(ctx context.Context, appt *models.Appointment, startsAt time.Time) {
	if s.Reminders == nil {
		return
	}
	info, err := s.Reminders.ScheduleReminder(ctx, appt, startsAt)
	if err != nil {
		s.log().Warn("Failed to schedule appointment reminder",
			zap.String("appointmentId", appt.ID), zap.Error(err))
		return
	}
	appt.Reminder = info
}

// MarkReminded moves an upcoming appointment to reminded once its reminder has
// been delivered. Reminders for an appointment that has since moved to another
// date or started, or left the upcoming states, are dropped.
func (s *Service) MarkReminded(ctx context.Context, payload models.ReminderPayload) error {
	marked := false
	_, err := s.mutateAppointment(ctx, payload.AppointmentID, func(appt *models.Appointment) error {
		marked = false
		if appt.AppointmentDate != payload.AppointmentDate || appt.TimeSlot.StartTime.String() != payload.StartTime {
			s.log().Info("Stale reminder ignored",
				zap.String("appointmentId", appt.ID),
				zap.String("scheduledFor", payload.AppointmentDate),
				zap.String("currentDate", appt.AppointmentDate))
			return nil
		}
		switch appt.Status {
		case models.StatusScheduled, models.StatusConfirmed, models.StatusRescheduled:
		default:
			return nil
		}

		now := s.now()
		appt.Status = models.StatusReminded
		if appt.Reminder == nil {
			appt.Reminder = &models.ReminderInfo{}
		}
		appt.Reminder.RemindedAt = &now
		marked = true
		return s.saveAppointment(ctx, appt)
	})
	if err != nil {
		if KindOf(err) == KindNotFound {
			s.log().Info("Reminder for unknown appointment ignored", zap.String("appointmentId", payload.AppointmentID))
			return nil
		}
		return err
	}
	if marked {
		s.log().Info("Appointment marked reminded", zap.String("appointmentId", payload.AppointmentID))
	}
	return nil
}
