package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bloodlink/models"

	"github.com/hibiken/asynq"
)

const TypeAppointmentReminder = "appointment:reminder"

// NewAppointmentReminderTask builds the reminder task for an appointment, due at fireAt.
// The task id is derived from the appointment date and start so a reschedule queues a fresh task.
func NewAppointmentReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload)),
		asynq.MaxRetry(5),
		asynq.Retention(48 * time.Hour),
	}

	return task, opts, nil
}

// ReminderTaskID is unique per appointment slot.
func ReminderTaskID(p models.ReminderPayload) string {
	return fmt.Sprintf("reminder:%s:%s:%s", p.AppointmentID, p.AppointmentDate, p.StartTime)
}

// Enqueuer is the part of *asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqReminderScheduler queues appointment reminders a fixed lead time before the start.
type AsynqReminderScheduler struct {
	Client Enqueuer
	Lead   time.Duration
	Now    func() time.Time
}

func NewAsynqReminderScheduler(client Enqueuer, lead time.Duration) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{Client: client, Lead: lead, Now: time.Now}
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, appt *models.Appointment, startsAt time.Time) (*models.ReminderInfo, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	fireAt := startsAt.Add(-s.Lead)
	// Bookings made inside the lead window are reminded right away.
	if fireAt.Before(now) {
		fireAt = now
	}

	payload := models.ReminderPayload{
		AppointmentID:   appt.ID,
		DonorID:         appt.DonorID,
		BloodBankID:     appt.BloodBankID,
		AppointmentDate: appt.AppointmentDate,
		StartTime:       appt.TimeSlot.StartTime.String(),
		FireDate:        fireAt.UTC().Format(time.RFC3339),
	}
	task, opts, err := NewAppointmentReminderTask(payload, fireAt)
	if err != nil {
		return nil, err
	}

	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	taskID := ReminderTaskID(payload)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		// Already queued for this exact slot.
	case err != nil:
		return nil, err
	default:
		taskID = info.ID
	}
	return &models.ReminderInfo{ScheduledFor: fireAt, TaskID: taskID}, nil
}
