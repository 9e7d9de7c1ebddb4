package scheduling

import (
	"errors"

	"bloodlink/models"
)

// ErrInvalidDuration is returned for a non-positive slot length.
var ErrInvalidDuration = errors.New("slot duration must be a positive number of minutes")

// SlotQuery carries everything the availability engine needs. The caller fetches
// the hours and appointments; the engine itself does no I/O.
type SlotQuery struct {
	BloodBankID     string
	Date            string
	DurationMinutes int
	// Hours for the weekday of Date. Nil means the bank is closed.
	Hours *models.DayHours
	// Existing appointments of the bank on Date.
	Existing []models.Appointment
}

// Overlaps reports whether the half-open intervals [a.start, a.end) and [b.start, b.end) intersect.
func Overlaps(a, b models.TimeSlot) bool {
	return a.StartTime < b.EndTime && a.EndTime > b.StartTime
}

// ComputeAvailableSlots walks a fixed grid from opening time in steps of the
// requested duration and returns the slots that overlap no booked interval.
// Slots never snap to booking boundaries.
func ComputeAvailableSlots(q SlotQuery) ([]models.TimeSlot, error) {
	if q.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	slots := []models.TimeSlot{}
	if q.Hours.Closed() {
		return slots, nil
	}

	open, err := models.ParseClockTime(q.Hours.Open)
	if err != nil {
		return nil, err
	}
	closeAt, err := models.ParseClockTime(q.Hours.Close)
	if err != nil {
		return nil, err
	}

	// closeAt-cur never overflows, cur+dur can for huge durations.
	dur := q.DurationMinutes
	for cur := open.Minutes(); closeAt.Minutes()-cur >= dur; cur += dur {
		candidate := models.TimeSlot{
			StartTime: models.ClockTime(cur),
			EndTime:   models.ClockTime(cur + dur),
			Duration:  dur,
		}
		if IsSlotAvailable(q.BloodBankID, q.Date, candidate, q.Existing) {
			slots = append(slots, candidate)
		}
	}
	return slots, nil
}

// IsSlotAvailable reports whether slot is free at the bank on date. Appointments
// for other banks or dates, and those not holding their interval, are ignored.
func IsSlotAvailable(bloodBankID, date string, slot models.TimeSlot, existing []models.Appointment) bool {
	for _, appt := range existing {
		if appt.BloodBankID != bloodBankID || appt.AppointmentDate != date {
			continue
		}
		if !appt.Status.Occupies() {
			continue
		}
		if Overlaps(slot, appt.TimeSlot) {
			return false
		}
	}
	return true
}

// withoutAppointment drops the appointment with the given id from list.
func withoutAppointment(list []models.Appointment, id string) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
