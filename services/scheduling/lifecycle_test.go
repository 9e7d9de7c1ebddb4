package scheduling

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bloodlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, err := f.svc.CreateAppointment(ctx, booking(donorID, "2026-03-09", "09:00", "10:00"))
	require.NoError(t, err)

	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, models.StatusScheduled, appt.Status)
	assert.Equal(t, 0, appt.Rescheduling.RescheduleCount)
	assert.Equal(t, 60, appt.TimeSlot.Duration)
	assert.Equal(t, models.DonationWholeBlood, appt.DonationType)

	stored := f.appts.get(appt.ID)
	assert.Equal(t, "2026-03-09", stored.AppointmentDate)
	assert.True(t, stored.Occupying)
	require.NotNil(t, stored.Reminder)
	assert.Equal(t, time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC), stored.Reminder.ScheduledFor)
	require.Len(t, f.reminders.calls, 1)
}

func TestCreateAppointmentDefaultsDonationType(t *testing.T) {
	f := newFixture()
	req := booking(donorID, "2026-03-09", "09:00", "10:00")
	req.DonationType = ""

	appt, err := f.svc.CreateAppointment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.DonationWholeBlood, appt.DonationType)
}

func TestCreateAppointmentPriority(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, err := f.svc.CreateAppointment(ctx, booking(donorID, "2026-03-09", "09:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNormal, appt.Priority)

	req := booking(donorID, "2026-03-09", "11:00", "12:00")
	req.Priority = "urgent"
	appt, err = f.svc.CreateAppointment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityUrgent, f.appts.get(appt.ID).Priority)

	req = booking(donorID, "2026-03-09", "13:00", "14:00")
	req.Priority = "asap"
	_, err = f.svc.CreateAppointment(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, f.appts.all(), 2)
}

func TestCreateAppointmentFailures(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(f *fixture)
		req   CreateRequest
		want  *Error
	}{
		{
			name: "unknown blood bank",
			req:  CreateRequest{DonorID: donorID, BloodBankID: "nope", Date: "2026-03-09", StartTime: "09:00", EndTime: "10:00"},
			want: ErrNotFound,
		},
		{
			name: "user is not a blood bank",
			req:  CreateRequest{DonorID: donorID, BloodBankID: donor2ID, Date: "2026-03-09", StartTime: "09:00", EndTime: "10:00"},
			want: ErrNotFound,
		},
		{
			name: "inactive blood bank",
			setup: func(f *fixture) {
				b := f.users.byID[bankID]
				b.IsActive = false
				f.users.byID[bankID] = b
			},
			req:  booking(donorID, "2026-03-09", "09:00", "10:00"),
			want: ErrNotFound,
		},
		{
			name: "bank is checked before donor",
			setup: func(f *fixture) {
				f.users.byID[donorID] = donor(donorID, daysAgo(1))
			},
			req:  CreateRequest{DonorID: donorID, BloodBankID: "nope", Date: "2026-03-09", StartTime: "09:00", EndTime: "10:00"},
			want: ErrNotFound,
		},
		{
			name: "unknown donor",
			req:  booking("ghost", "2026-03-09", "09:00", "10:00"),
			want: ErrNotFound,
		},
		{
			name: "donor not medically cleared",
			setup: func(f *fixture) {
				d := donor(donorID, nil)
				d.MedicalHistory.EligibleToDonate = false
				f.users.byID[donorID] = d
			},
			req:  booking(donorID, "2026-03-09", "09:00", "10:00"),
			want: ErrIneligibleDonor,
		},
		{
			name: "donated ten days ago",
			setup: func(f *fixture) {
				f.users.byID[donorID] = donor(donorID, daysAgo(10))
			},
			req:  booking(donorID, "2026-03-09", "09:00", "10:00"),
			want: ErrIneligibleDonor,
		},
		{
			name: "eligibility is checked before the date",
			setup: func(f *fixture) {
				f.users.byID[donorID] = donor(donorID, daysAgo(10))
			},
			req:  booking(donorID, "2026-02-01", "09:00", "10:00"),
			want: ErrIneligibleDonor,
		},
		{
			name: "past date",
			req:  booking(donorID, "2026-02-27", "09:00", "10:00"),
			want: ErrInvalidDate,
		},
		{
			name: "earlier today",
			req:  booking(donorID, "2026-03-02", "09:00", "10:00"),
			want: ErrInvalidDate,
		},
		{
			name: "starts exactly now",
			req:  booking(donorID, "2026-03-02", "10:00", "11:00"),
			want: ErrInvalidDate,
		},
		{
			name: "end before start",
			req:  booking(donorID, "2026-03-09", "10:00", "09:00"),
			want: ErrInvalidDate,
		},
		{
			name: "zero length",
			req:  booking(donorID, "2026-03-09", "10:00", "10:00"),
			want: ErrInvalidDate,
		},
		{
			name: "malformed time",
			req:  booking(donorID, "2026-03-09", "25:00", "26:00"),
			want: ErrValidation,
		},
		{
			name: "malformed date",
			req:  booking(donorID, "09/03/2026", "09:00", "10:00"),
			want: ErrValidation,
		},
		{
			name: "unknown donation type",
			req: func() CreateRequest {
				r := booking(donorID, "2026-03-09", "09:00", "10:00")
				r.DonationType = "bone_marrow"
				return r
			}(),
			want: ErrValidation,
		},
		{
			name: "overlapping booking",
			setup: func(f *fixture) {
				f.appts.put(seeded("existing", bankID, "2026-03-09", "09:30", "10:30", models.StatusConfirmed))
			},
			req:  booking(donorID, "2026-03-09", "09:00", "10:00"),
			want: ErrSlotConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			if tc.setup != nil {
				tc.setup(f)
			}
			appt, err := f.svc.CreateAppointment(context.Background(), tc.req)
			assert.Nil(t, appt)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.reminders.calls)
		})
	}
}

func TestCreateAppointmentEligibilityWindow(t *testing.T) {
	f := newFixture()
	f.users.byID[donorID] = donor(donorID, daysAgo(100))

	_, err := f.svc.CreateAppointment(context.Background(), booking(donorID, "2026-03-09", "09:00", "10:00"))
	assert.NoError(t, err)
}

func TestCreateAppointmentAfterCancellationFreesSlot(t *testing.T) {
	f := newFixture()
	f.appts.put(seeded("old", bankID, "2026-03-09", "09:00", "10:00", models.StatusCancelled))

	_, err := f.svc.CreateAppointment(context.Background(), booking(donorID, "2026-03-09", "09:00", "10:00"))
	assert.NoError(t, err)
}

func TestConcurrentCreatesBookOnce(t *testing.T) {
	f := newFixture()
	f.appts.createDelay = 5 * time.Millisecond

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateAppointment(context.Background(), booking(donorID, "2026-03-09", "13:00", "14:00"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if KindOf(err) == KindSlotConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, f.appts.all(), 1)
}

func TestCreateAppointmentUniqueIndexBackstop(t *testing.T) {
	f := newFixture()
	f.appts.uniqueStart = true
	f.appts.put(seeded("existing", bankID, "2026-03-09", "09:00", "10:00", models.StatusScheduled))
	f.appts.blindReads = true

	_, err := f.svc.CreateAppointment(context.Background(), booking(donorID, "2026-03-09", "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestNoOverlapAfterMixedOperations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	requests := [][2]string{
		{"09:00", "10:00"}, {"09:30", "10:30"}, {"10:00", "11:00"}, {"10:45", "11:15"},
		{"11:00", "12:00"}, {"08:00", "09:15"}, {"12:00", "12:30"}, {"12:15", "13:00"},
	}
	var created []*models.Appointment
	for _, r := range requests {
		appt, err := f.svc.CreateAppointment(ctx, booking(donorID, "2026-03-09", r[0], r[1]))
		if err == nil {
			created = append(created, appt)
		}
	}
	require.NotEmpty(t, created)

	moves := [][2]string{{"10:30", "11:30"}, {"12:00", "13:00"}, {"13:00", "14:00"}, {"09:00", "09:30"}}
	for i, m := range moves {
		target := created[i%len(created)]
		_, _ = f.svc.Reschedule(ctx, target.ID, RescheduleRequest{Date: "2026-03-09", StartTime: m[0], EndTime: m[1]}, adminCaller)
	}

	var live []models.Appointment
	for _, a := range f.appts.all() {
		if a.Status.Occupies() {
			live = append(live, a)
		}
	}
	for i := range live {
		for j := i + 1; j < len(live); j++ {
			if live[i].AppointmentDate != live[j].AppointmentDate {
				continue
			}
			assert.False(t, Overlaps(live[i].TimeSlot, live[j].TimeSlot),
				fmt.Sprintf("%s overlaps %s", live[i].TimeSlot, live[j].TimeSlot))
		}
	}
}
