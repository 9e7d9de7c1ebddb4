package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	appointmentRepo "bloodlink/database/repository/appointment"
	userRepo "bloodlink/database/repository/user"
	"bloodlink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// memAppointments is an in-memory AppointmentRepository.
type memAppointments struct {
	mu   sync.Mutex
	byID map[string]models.Appointment

	// uniqueStart mirrors the partial unique index on occupying start times.
	uniqueStart bool
	// blindReads makes FindOccupying return nothing, simulating a stale read.
	blindReads bool
	// createDelay widens the window between the availability read and the insert.
	createDelay time.Duration
	// afterGet, when set, runs once after the next GetByID returns its copy.
	afterGet func()
}

func newMemAppointments() *memAppointments {
	return &memAppointments{byID: make(map[string]models.Appointment)}
}

func (m *memAppointments) put(appt models.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt.Occupying = appt.Status.Occupies()
	m.byID[appt.ID] = appt
}

func (m *memAppointments) get(id string) models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

func (m *memAppointments) all() []models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Appointment, 0, len(m.byID))
	for _, a := range m.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memAppointments) startTaken(appt *models.Appointment) bool {
	if !m.uniqueStart || !appt.Status.Occupies() {
		return false
	}
	for _, a := range m.byID {
		if a.ID != appt.ID && a.Occupying && a.BloodBankID == appt.BloodBankID &&
			a.AppointmentDate == appt.AppointmentDate && a.TimeSlot.StartTime == appt.TimeSlot.StartTime {
			return true
		}
	}
	return false
}

func (m *memAppointments) Create(_ context.Context, appt *models.Appointment) error {
	if m.createDelay > 0 {
		time.Sleep(m.createDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startTaken(appt) {
		return appointmentRepo.ErrSlotTaken
	}
	appt.Occupying = appt.Status.Occupies()
	appt.Version = 1
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	m.byID[appt.ID] = *appt
	return nil
}

func (m *memAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	a, ok := m.byID[id]
	hook := m.afterGet
	m.afterGet = nil
	m.mu.Unlock()
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	if hook != nil {
		hook()
	}
	return &a, nil
}

func (m *memAppointments) Update(_ context.Context, appt *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[appt.ID]
	if !ok {
		return appointmentRepo.ErrNotFound
	}
	if stored.Version != appt.Version {
		return appointmentRepo.ErrStaleWrite
	}
	if m.startTaken(appt) {
		return appointmentRepo.ErrSlotTaken
	}
	appt.Occupying = appt.Status.Occupies()
	appt.UpdatedAt = time.Now()
	appt.Version++
	m.byID[appt.ID] = *appt
	return nil
}

func (m *memAppointments) FindOccupying(_ context.Context, bloodBankID, date string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	if m.blindReads {
		return out, nil
	}
	for _, a := range m.byID {
		if a.BloodBankID == bloodBankID && a.AppointmentDate == date && a.Status.Occupies() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlot.StartTime < out[j].TimeSlot.StartTime })
	return out, nil
}

func (m *memAppointments) List(_ context.Context, f models.AppointmentFilter) ([]models.Appointment, int64, error) {
	var matched []models.Appointment
	for _, a := range m.all() {
		if f.DonorID != "" && a.DonorID != f.DonorID {
			continue
		}
		if f.BloodBankID != "" && a.BloodBankID != f.BloodBankID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.StartDate != "" && a.AppointmentDate < f.StartDate {
			continue
		}
		if f.EndDate != "" && a.AppointmentDate > f.EndDate {
			continue
		}
		matched = append(matched, a)
	}
	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return []models.Appointment{}, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memAppointments) FindStale(_ context.Context, statuses []models.AppointmentStatus, beforeDate string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range m.all() {
		if a.AppointmentDate >= beforeDate {
			continue
		}
		for _, st := range statuses {
			if a.Status == st {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

// memUsers is an in-memory UserRepository.
type memUsers struct {
	byID map[string]models.User
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByIDWithProjection(ctx context.Context, id string, _ bson.M) (*models.User, error) {
	return m.GetByID(ctx, id)
}

// recordingReminders captures scheduled reminders.
type recordingReminders struct {
	mu    sync.Mutex
	calls []models.ReminderPayload
}

func (r *recordingReminders) ScheduleReminder(_ context.Context, appt *models.Appointment, startsAt time.Time) (*models.ReminderInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, models.ReminderPayload{
		AppointmentID:   appt.ID,
		AppointmentDate: appt.AppointmentDate,
		StartTime:       appt.TimeSlot.StartTime.String(),
	})
	return &models.ReminderInfo{ScheduledFor: startsAt.Add(-24 * time.Hour)}, nil
}

// Fixture ids and clock. 2026-03-02 is a Monday.
const (
	bankID     = "bank-1"
	otherBank  = "bank-2"
	closedBank = "bank-closed"
	donorID    = "donor-1"
	donor2ID   = "donor-2"
	adminID    = "admin-1"
)

var testNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

func openAllWeek(open, closeAt string) models.WeeklyHours {
	h := &models.DayHours{Open: open, Close: closeAt}
	return models.WeeklyHours{Monday: h, Tuesday: h, Wednesday: h, Thursday: h, Friday: h, Saturday: h, Sunday: h}
}

func donor(id string, lastDonation *time.Time) models.User {
	return models.User{
		ID:       id,
		Role:     models.RoleDonor,
		IsActive: true,
		MedicalHistory: &models.MedicalHistory{
			EligibleToDonate: true,
			LastDonationDate: lastDonation,
		},
	}
}

type fixture struct {
	svc       *Service
	appts     *memAppointments
	users     *memUsers
	reminders *recordingReminders
}

func newFixture() *fixture {
	users := &memUsers{byID: map[string]models.User{
		bankID: {
			ID: bankID, Role: models.RoleBloodBank, IsActive: true,
			OrganizationInfo: &models.OrganizationInfo{Name: "Central", OperatingHours: openAllWeek("09:00", "17:00")},
		},
		otherBank: {
			ID: otherBank, Role: models.RoleBloodBank, IsActive: true,
			OrganizationInfo: &models.OrganizationInfo{Name: "North", OperatingHours: openAllWeek("08:00", "12:00")},
		},
		closedBank: {
			ID: closedBank, Role: models.RoleBloodBank, IsActive: true,
			OrganizationInfo: &models.OrganizationInfo{Name: "Weekend", OperatingHours: models.WeeklyHours{
				Saturday: &models.DayHours{Open: "10:00", Close: "14:00"},
			}},
		},
		donorID:  donor(donorID, nil),
		donor2ID: donor(donor2ID, nil),
		adminID:  {ID: adminID, Role: models.RoleAdmin, IsActive: true},
	}}
	appts := newMemAppointments()
	reminders := &recordingReminders{}
	svc := &Service{
		Appointments:            appts,
		Users:                   users,
		Locker:                  NewLocalLocker(),
		Reminders:               reminders,
		Now:                     func() time.Time { return testNow },
		Location:                time.UTC,
		MaxReschedules:          3,
		EligibilityWindowMonths: 3,
		DefaultSlotMinutes:      60,
		Logger:                  zap.NewNop(),
	}
	return &fixture{svc: svc, appts: appts, users: users, reminders: reminders}
}

func donorCaller(id string) Caller { return Caller{UserID: id, Role: models.RoleDonor} }

func bankCaller(id string) Caller { return Caller{UserID: id, Role: models.RoleBloodBank} }

var adminCaller = Caller{UserID: adminID, Role: models.RoleAdmin}

func booking(donor, date, start, end string) CreateRequest {
	return CreateRequest{
		DonorID:      donor,
		BloodBankID:  bankID,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		DonationType: "whole_blood",
	}
}

func seeded(id, bank, date, start, end string, status models.AppointmentStatus) models.Appointment {
	return models.Appointment{
		ID:              id,
		DonorID:         donorID,
		BloodBankID:     bank,
		AppointmentDate: date,
		TimeSlot:        mustSlot(start, end),
		DonationType:    models.DonationWholeBlood,
		Status:          status,
	}
}

func mustSlot(start, end string) models.TimeSlot {
	ts, err := models.ParseTimeSlot(start, end)
	if err != nil {
		panic(err)
	}
	return ts
}
