package scheduling

import (
	"context"
	"errors"
	"time"

	"bloodlink/config"
	appointmentRepo "bloodlink/database/repository/appointment"
	userRepo "bloodlink/database/repository/user"
	"bloodlink/models"
	"bloodlink/utils"

	"go.uber.org/zap"
)

const (
	defaultMaxReschedules          = 3
	defaultEligibilityWindowMonths = 3
	defaultSlotMinutes             = 60
	defaultLockHold                = 10 * time.Second

	// writeAttempts bounds how often a mutation is replayed after losing a write race.
	writeAttempts = 3
)

var _ AppointmentService = (*Service)(nil)

// Service implements AppointmentService.
type Service struct {
	Appointments appointmentRepo.AppointmentRepository
	Users        userRepo.UserRepository
	Locker       SlotLocker
	Reminders    ReminderScheduler // optional

	Now      func() time.Time
	Location *time.Location

	MaxReschedules          int
	EligibilityWindowMonths int
	DefaultSlotMinutes      int
	// LockHold bounds the work done while a booking lock is held. It must stay
	// well under the lock's TTL.
	LockHold                time.Duration

	Logger *zap.Logger
}

// NewService wires a Service from the loaded configuration.
func NewService(appts appointmentRepo.AppointmentRepository, users userRepo.UserRepository, locker SlotLocker, reminders ReminderScheduler) *Service {
	return &Service{
		Appointments:            appts,
		Users:                   users,
		Locker:                  locker,
		Reminders:               reminders,
		Now:                     time.Now,
		Location:                config.Location(),
		MaxReschedules:          config.AppConfig.MaxReschedules,
		EligibilityWindowMonths: config.AppConfig.EligibilityWindowMonths,
		DefaultSlotMinutes:      config.AppConfig.DefaultSlotMinutes,
		LockHold:                config.BookingLockTTL() / 2,
		Logger:                  utils.GetLogger(),
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s *Service) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

func (s *Service) maxReschedules() int {
	if s.MaxReschedules > 0 {
		return s.MaxReschedules
	}
	return defaultMaxReschedules
}

func (s *Service) eligibilityWindow() int {
	if s.EligibilityWindowMonths > 0 {
		return s.EligibilityWindowMonths
	}
	return defaultEligibilityWindowMonths
}

func (s *Service) slotMinutes() int {
	if s.DefaultSlotMinutes > 0 {
		return s.DefaultSlotMinutes
	}
	return defaultSlotMinutes
}

func (s *Service) lockHold() time.Duration {
	if s.LockHold > 0 {
		return s.LockHold
	}
	return defaultLockHold
}

// withBookingLock runs fn while holding the calendar lock for bank and date.
// fn gets a context that expires after LockHold.
func (s *Service) withBookingLock(ctx context.Context, bloodBankID, date string, fn func(ctx context.Context) error) error {
	if s.Locker == nil {
		return fn(ctx)
	}
	unlock, err := s.Locker.Lock(ctx, BookingLockKey(bloodBankID, date))
	if err != nil {
		return internal("could not acquire booking lock", err)
	}
	defer unlock()

	held, cancel := context.WithTimeout(ctx, s.lockHold())
	defer cancel()
	return fn(held)
}

func (s *Service) loadAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, newError(KindNotFound, "appointment not found")
		}
		return nil, internal("failed to load appointment", err)
	}
	return appt, nil
}

func (s *Service) saveAppointment(ctx context.Context, appt *models.Appointment) error {
	if err := s.Appointments.Update(ctx, appt); err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrNotFound):
			return newError(KindNotFound, "appointment not found")
		case errors.Is(err, appointmentRepo.ErrSlotTaken):
			return newError(KindSlotConflict, "selected time slot is not available")
		case errors.Is(err, appointmentRepo.ErrStaleWrite):
			return &Error{Kind: KindConflict, Message: "appointment was modified concurrently, please retry", Err: err}
		}
		return internal("failed to update appointment", err)
	}
	return nil
}

// mutateAppointment loads id and hands it to fn, which validates, changes and
// saves it. When the save loses to a concurrent write, the record is reloaded
// and fn runs again against the fresh state.
func (s *Service) mutateAppointment(ctx context.Context, id string, fn func(appt *models.Appointment) error) (*models.Appointment, error) {
	for attempt := 1; ; attempt++ {
		appt, err := s.loadAppointment(ctx, id)
		if err != nil {
			return nil, err
		}
		err = fn(appt)
		if err == nil {
			return appt, nil
		}
		if KindOf(err) != KindConflict || attempt == writeAttempts {
			return nil, err
		}
		s.log().Debug("Appointment changed underneath update, retrying",
			zap.String("appointmentId", id), zap.Int("attempt", attempt))
	}
}

// authorize allows the appointment's donor, its blood bank and administrators.
func authorize(appt *models.Appointment, caller Caller) error {
	switch caller.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleDonor:
		if appt.DonorID == caller.UserID {
			return nil
		}
	case models.RoleBloodBank:
		if appt.BloodBankID == caller.UserID {
			return nil
		}
	}
	return newError(KindForbidden, "access denied")
}

// parseSlot validates a requested interval. Malformed clock times are validation
// errors; an empty or inverted interval is an invalid date.
func parseSlot(start, end string) (models.TimeSlot, error) {
	startAt, err := models.ParseClockTime(start)
	if err != nil {
		return models.TimeSlot{}, &Error{Kind: KindValidation, Message: "invalid start time", Err: err}
	}
	endAt, err := models.ParseClockTime(end)
	if err != nil {
		return models.TimeSlot{}, &Error{Kind: KindValidation, Message: "invalid end time", Err: err}
	}
	slot, err := models.NewTimeSlot(startAt, endAt)
	if err != nil {
		return models.TimeSlot{}, &Error{Kind: KindInvalidDate, Message: "end time must be after start time", Err: err}
	}
	return slot, nil
}

func parseDate(date string) (string, error) {
	d, err := models.ParseDate(date)
	if err != nil {
		return "", &Error{Kind: KindValidation, Message: "invalid appointment date", Err: err}
	}
	return d, nil
}
