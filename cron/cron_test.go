package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bloodlink/models"
	"bloodlink/services/scheduling"
	"bloodlink/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct {
	scheduling.AppointmentService
	reminded []models.ReminderPayload
	remErr   error
	sweeps   int
	sweepErr error
}

func (s *stubService) MarkReminded(_ context.Context, p models.ReminderPayload) error {
	s.reminded = append(s.reminded, p)
	return s.remErr
}

func (s *stubService) SweepNoShows(context.Context) (int, error) {
	s.sweeps++
	return 2, s.sweepErr
}

func TestHandleReminderTask(t *testing.T) {
	svc := &stubService{}
	payload := models.ReminderPayload{AppointmentID: "appt-1", AppointmentDate: "2026-03-09", StartTime: "09:00"}
	b, err := json.Marshal(payload)
	require.NoError(t, err)

	err = HandleReminderTask(svc)(context.Background(), asynq.NewTask(tasks.TypeAppointmentReminder, b))
	require.NoError(t, err)
	require.Len(t, svc.reminded, 1)
	assert.Equal(t, payload, svc.reminded[0])
}

func TestHandleReminderTaskErrors(t *testing.T) {
	svc := &stubService{}
	err := HandleReminderTask(svc)(context.Background(), asynq.NewTask(tasks.TypeAppointmentReminder, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, svc.reminded)

	svc.remErr = errors.New("mongo down")
	b, _ := json.Marshal(models.ReminderPayload{AppointmentID: "appt-1"})
	err = HandleReminderTask(svc)(context.Background(), asynq.NewTask(tasks.TypeAppointmentReminder, b))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestSweepJob(t *testing.T) {
	svc := &stubService{}
	SweepJob(svc, zap.NewNop())()
	assert.Equal(t, 1, svc.sweeps)

	svc.sweepErr = errors.New("boom")
	assert.NotPanics(t, SweepJob(svc, zap.NewNop()))
	assert.Equal(t, 2, svc.sweeps)
}

func TestStartNoShowSweepRejectsBadSpec(t *testing.T) {
	_, err := StartNoShowSweep("every tuesday", time.UTC, &stubService{})
	assert.Error(t, err)
}

func TestStartNoShowSweep(t *testing.T) {
	c, err := StartNoShowSweep("15 * * * *", time.UTC, &stubService{})
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
