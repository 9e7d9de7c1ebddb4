package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for appointmentDate.
const DateLayout = "2006-01-02"

// ParseDate validates a calendar date string.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t.Format(DateLayout), nil
}

// Appointment is a donor's booking of an interval at a blood bank.
type Appointment struct {
	ID              string            `bson:"id" json:"id"`
	DonorID         string            `bson:"donorId" json:"donorId"`
	BloodBankID     string            `bson:"bloodBankId" json:"bloodBankId"`
	AppointmentDate string            `bson:"appointmentDate" json:"appointmentDate"` // "YYYY-MM-DD"
	TimeSlot        TimeSlot          `bson:"timeSlot" json:"timeSlot"`
	DonationType    DonationType      `bson:"donationType" json:"donationType"`
	Status          AppointmentStatus `bson:"status" json:"status"`
	Priority        Priority          `bson:"priority" json:"priority"`
	Occupying       bool              `bson:"occupying" json:"-"`
	Version         int64             `bson:"version" json:"-"` // bumped on every write

	Rescheduling Rescheduling  `bson:"rescheduling" json:"rescheduling"`
	Cancellation *Cancellation `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Reminder     *ReminderInfo `bson:"reminder,omitempty" json:"reminder,omitempty"`

	// Descriptive payload with no scheduling role.
	Location            *Location            `bson:"location,omitempty" json:"location,omitempty"`
	SpecialRequirements *SpecialRequirements `bson:"specialRequirements,omitempty" json:"specialRequirements,omitempty"`
	PreScreening        map[string]any       `bson:"preScreening,omitempty" json:"preScreening,omitempty"`
	Notes               string               `bson:"notes,omitempty" json:"notes,omitempty"`
	InternalNotes       string               `bson:"internalNotes,omitempty" json:"internalNotes,omitempty"`
	CheckIn             *CheckIn             `bson:"checkIn,omitempty" json:"checkIn,omitempty"`
	AssignedStaff       *AssignedStaff       `bson:"assignedStaff,omitempty" json:"assignedStaff,omitempty"`
	FollowUp            *FollowUp            `bson:"followUp,omitempty" json:"followUp,omitempty"`
	Feedback            *Feedback            `bson:"feedback,omitempty" json:"feedback,omitempty"`
	ConsentForms        *ConsentForms        `bson:"consentForms,omitempty" json:"consentForms,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Rescheduling struct {
	OriginalDate    string     `bson:"originalDate,omitempty" json:"originalDate,omitempty"`
	Reason          string     `bson:"reason,omitempty" json:"reason,omitempty"`
	RescheduledBy   Actor      `bson:"rescheduledBy,omitempty" json:"rescheduledBy,omitempty"`
	RescheduledAt   *time.Time `bson:"rescheduledAt,omitempty" json:"rescheduledAt,omitempty"`
	RescheduleCount int        `bson:"rescheduleCount" json:"rescheduleCount"`
}

type Cancellation struct {
	Reason         string    `bson:"reason" json:"reason"`
	CancelledBy    Actor     `bson:"cancelledBy" json:"cancelledBy"`
	CancelledAt    time.Time `bson:"cancelledAt" json:"cancelledAt"`
	RefundRequired bool      `bson:"refundRequired" json:"refundRequired"`
}

type ReminderInfo struct {
	ScheduledFor time.Time  `bson:"scheduledFor" json:"scheduledFor"`
	TaskID       string     `bson:"taskId,omitempty" json:"-"`
	RemindedAt   *time.Time `bson:"remindedAt,omitempty" json:"remindedAt,omitempty"`
}

type Location struct {
	LocationName        string `bson:"locationName,omitempty" json:"locationName,omitempty"`
	Street              string `bson:"street,omitempty" json:"street,omitempty"`
	City                string `bson:"city,omitempty" json:"city,omitempty"`
	State               string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode             string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country             string `bson:"country,omitempty" json:"country,omitempty"`
	RoomNumber          string `bson:"roomNumber,omitempty" json:"roomNumber,omitempty"`
	SpecialInstructions string `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
}

type SpecialRequirements struct {
	WheelchairAccessible bool     `bson:"wheelchairAccessible" json:"wheelchairAccessible"`
	LanguagePreference   string   `bson:"languagePreference,omitempty" json:"languagePreference,omitempty"`
	Accommodations       []string `bson:"accommodations,omitempty" json:"accommodations,omitempty"`
}

type CheckIn struct {
	CheckedInAt   *time.Time `bson:"checkedInAt,omitempty" json:"checkedInAt,omitempty"`
	CheckedInBy   string     `bson:"checkedInBy,omitempty" json:"checkedInBy,omitempty"`
	WaitTime      int        `bson:"waitTime,omitempty" json:"waitTime,omitempty"` // minutes
	QueuePosition int        `bson:"queuePosition,omitempty" json:"queuePosition,omitempty"`
}

// AssignedStaff holds user ids of the staff attending the donation.
type AssignedStaff struct {
	Phlebotomist string `bson:"phlebotomist,omitempty" json:"phlebotomist,omitempty"`
	Nurse        string `bson:"nurse,omitempty" json:"nurse,omitempty"`
	Supervisor   string `bson:"supervisor,omitempty" json:"supervisor,omitempty"`
}

type FollowUp struct {
	Required      bool   `bson:"required" json:"required"`
	Reason        string `bson:"reason,omitempty" json:"reason,omitempty"`
	ScheduledDate string `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	Completed     bool   `bson:"completed" json:"completed"`
	Notes         string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Feedback ratings run from 1 to 5; zero means not rated.
type Feedback struct {
	DonorRating       int    `bson:"donorRating,omitempty" json:"donorRating,omitempty"`
	DonorComments     string `bson:"donorComments,omitempty" json:"donorComments,omitempty"`
	BloodBankRating   int    `bson:"bloodBankRating,omitempty" json:"bloodBankRating,omitempty"`
	StaffRating       int    `bson:"staffRating,omitempty" json:"staffRating,omitempty"`
	OverallExperience string `bson:"overallExperience,omitempty" json:"overallExperience,omitempty"`
	Suggestions       string `bson:"suggestions,omitempty" json:"suggestions,omitempty"`
}

// Validate rejects ratings outside 1..5.
func (f *Feedback) Validate() error {
	for name, r := range map[string]int{
		"donorRating":     f.DonorRating,
		"bloodBankRating": f.BloodBankRating,
		"staffRating":     f.StaffRating,
	} {
		if r != 0 && (r < 1 || r > 5) {
			return fmt.Errorf("%s must be between 1 and 5", name)
		}
	}
	return nil
}

type ConsentForms struct {
	GeneralConsent struct {
		Signed          bool       `bson:"signed" json:"signed"`
		SignedAt        *time.Time `bson:"signedAt,omitempty" json:"signedAt,omitempty"`
		DocumentVersion string     `bson:"documentVersion,omitempty" json:"documentVersion,omitempty"`
	} `bson:"generalConsent" json:"generalConsent"`
	MedicalHistory struct {
		Completed   bool       `bson:"completed" json:"completed"`
		CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	} `bson:"medicalHistory" json:"medicalHistory"`
	RiskAssessment struct {
		Completed   bool       `bson:"completed" json:"completed"`
		CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
		RiskLevel   string     `bson:"riskLevel,omitempty" json:"riskLevel,omitempty"` // low, medium, high
	} `bson:"riskAssessment" json:"riskAssessment"`
}

// StartsAt is the instant the appointment begins in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return StartInstant(a.AppointmentDate, a.TimeSlot.StartTime, loc)
}

// StartInstant combines a calendar date and a clock time in loc.
func StartInstant(date string, at ClockTime, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day.Add(time.Duration(at.Minutes()) * time.Minute), nil
}

// IsUpcoming is true for a future appointment that has not reached check-in.
func (a *Appointment) IsUpcoming(now time.Time, loc *time.Location) bool {
	start, err := a.StartsAt(loc)
	if err != nil {
		return false
	}
	return start.After(now) && a.Status.Upcoming()
}

// IsOverdue is true for a past appointment that never reached check-in.
func (a *Appointment) IsOverdue(now time.Time, loc *time.Location) bool {
	start, err := a.StartsAt(loc)
	if err != nil {
		return false
	}
	return start.Before(now) && a.Status.Upcoming()
}

// FormattedDuration renders the slot length as "1h 30m" or "45m".
func (a *Appointment) FormattedDuration() string {
	d := a.TimeSlot.Duration
	if d <= 0 {
		return ""
	}
	if d >= 60 {
		return fmt.Sprintf("%dh %dm", d/60, d%60)
	}
	return fmt.Sprintf("%dm", d)
}

// AppointmentFilter drives list queries.
type AppointmentFilter struct {
	DonorID     string
	BloodBankID string
	Status      AppointmentStatus
	StartDate   string
	EndDate     string
	Page        int
	Limit       int
}

// AppointmentView is the API representation with derived flags.
type AppointmentView struct {
	Appointment
	IsUpcoming        bool   `json:"isUpcoming"`
	IsOverdue         bool   `json:"isOverdue"`
	FormattedDuration string `json:"formattedDuration,omitempty"`
}

func NewAppointmentView(a Appointment, now time.Time, loc *time.Location) AppointmentView {
	return AppointmentView{
		Appointment:       a,
		IsUpcoming:        a.IsUpcoming(now, loc),
		IsOverdue:         a.IsOverdue(now, loc),
		FormattedDuration: a.FormattedDuration(),
	}
}

// Pagination mirrors the list envelope returned to clients.
type Pagination struct {
	Current      int   `json:"current"`
	Total        int   `json:"total"`
	Count        int   `json:"count"`
	TotalRecords int64 `json:"totalRecords"`
}
