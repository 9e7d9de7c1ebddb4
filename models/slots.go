package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

var (
	ErrInvalidClockTime = errors.New("time must be in HH:MM 24-hour format")
	ErrEmptyTimeSlot    = errors.New("end time must be after start time")
)

// ClockTime is a wall-clock time of day held as minutes from midnight.
// It reads and writes as zero-padded "HH:MM".
type ClockTime int

// ParseClockTime validates an "HH:MM" string (single-digit hours are accepted).
func ParseClockTime(s string) (ClockTime, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return ClockTime(h*60 + minute), nil
}

// MustClockTime is ParseClockTime for literals.
func MustClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidClockTime
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c ClockTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(c.String())
}

func (c *ClockTime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("clock time: expected string, got %s", t)
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TimeSlot is a half-open interval [StartTime, EndTime) within one day.
type TimeSlot struct {
	StartTime ClockTime `bson:"startTime" json:"startTime"`
	EndTime   ClockTime `bson:"endTime" json:"endTime"`
	Duration  int       `bson:"duration" json:"duration"` // minutes, always EndTime - StartTime
}

// NewTimeSlot builds a slot and rejects end <= start.
func NewTimeSlot(start, end ClockTime) (TimeSlot, error) {
	if end <= start {
		return TimeSlot{}, fmt.Errorf("%w: %s-%s", ErrEmptyTimeSlot, start, end)
	}
	return TimeSlot{StartTime: start, EndTime: end, Duration: int(end - start)}, nil
}

// ParseTimeSlot parses both ends and validates the interval.
func ParseTimeSlot(start, end string) (TimeSlot, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return TimeSlot{}, err
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return TimeSlot{}, err
	}
	return NewTimeSlot(s, e)
}

func (ts TimeSlot) String() string {
	return ts.StartTime.String() + "-" + ts.EndTime.String()
}

// DayHours is the opening window of a blood bank for one weekday.
type DayHours struct {
	Open  string `bson:"open" json:"open"`
	Close string `bson:"close" json:"close"`
}

// Closed reports whether the day carries no usable window.
func (d *DayHours) Closed() bool {
	return d == nil || d.Open == "" || d.Close == ""
}

// WeeklyHours holds one optional window per weekday.
type WeeklyHours struct {
	Monday    *DayHours `bson:"monday,omitempty" json:"monday,omitempty"`
	Tuesday   *DayHours `bson:"tuesday,omitempty" json:"tuesday,omitempty"`
	Wednesday *DayHours `bson:"wednesday,omitempty" json:"wednesday,omitempty"`
	Thursday  *DayHours `bson:"thursday,omitempty" json:"thursday,omitempty"`
	Friday    *DayHours `bson:"friday,omitempty" json:"friday,omitempty"`
	Saturday  *DayHours `bson:"saturday,omitempty" json:"saturday,omitempty"`
	Sunday    *DayHours `bson:"sunday,omitempty" json:"sunday,omitempty"`
}

// For returns the window for the given weekday, nil when closed.
func (w WeeklyHours) For(day time.Weekday) *DayHours {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}
