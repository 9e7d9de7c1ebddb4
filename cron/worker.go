package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bloodlink/config"
	"bloodlink/models"
	"bloodlink/services/scheduling"
	"bloodlink/services/tasks"
	"bloodlink/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderQueueOpt is the asynq connection for the reminder queue.
func ReminderQueueOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}

// InitReminderWorker runs the reminder worker in background and returns the server so
// the caller can shut it down.
func InitReminderWorker(ctx context.Context, svc scheduling.AppointmentService) *asynq.Server {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		ReminderQueueOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeAppointmentReminder, HandleReminderTask(svc))

	go monitorRedisConnection(ctx)

	// Start async worker with retry logic
	go func() {
		logger.Info("[ReminderWorker] Starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Start(mux); err != nil {
				logger.Warn("[ReminderWorker] Failed to start worker",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("[ReminderWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

// HandleReminderTask marks the appointment reminded. Bad payloads are not retried.
func HandleReminderTask(svc scheduling.AppointmentService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("[ReminderHandler] Invalid payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		logger.Info("[ReminderHandler] Reminder due",
			zap.String("appointmentId", p.AppointmentID),
			zap.String("donorId", p.DonorID),
			zap.String("date", p.AppointmentDate),
			zap.String("startTime", p.StartTime))

		if err := svc.MarkReminded(ctx, p); err != nil {
			logger.Error("[ReminderHandler] Failed to mark appointment reminded",
				zap.String("appointmentId", p.AppointmentID), zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue's Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				utils.GetLogger().Warn("[ReminderWorker] Redis connection lost", zap.Error(err))
			}
		}
	}
}
