package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseClockTime(t *testing.T) {
	valid := map[string]string{
		"00:00": "00:00",
		"9:05":  "09:05",
		"09:05": "09:05",
		"23:59": "23:59",
		"12:30": "12:30",
	}
	for in, want := range valid {
		c, err := ParseClockTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, c.String())
	}

	for _, in := range []string{"", "24:00", "12:60", "1230", "12:3", "noon", "-1:00", "12:30:00"} {
		_, err := ParseClockTime(in)
		assert.ErrorIs(t, err, ErrInvalidClockTime, in)
	}
}

func TestNewTimeSlot(t *testing.T) {
	ts, err := ParseTimeSlot("09:15", "10:45")
	require.NoError(t, err)
	assert.Equal(t, 90, ts.Duration)
	assert.Equal(t, "09:15-10:45", ts.String())

	_, err = ParseTimeSlot("10:00", "10:00")
	assert.ErrorIs(t, err, ErrEmptyTimeSlot)
	_, err = ParseTimeSlot("11:00", "10:00")
	assert.ErrorIs(t, err, ErrEmptyTimeSlot)
	_, err = ParseTimeSlot("10:00", "25:00")
	assert.ErrorIs(t, err, ErrInvalidClockTime)
}

func TestTimeSlotEncoding(t *testing.T) {
	ts, err := ParseTimeSlot("9:00", "10:30")
	require.NoError(t, err)

	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"startTime":"09:00","endTime":"10:30","duration":90}`, string(b))

	raw, err := bson.Marshal(ts)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "09:00", doc["startTime"])

	var back TimeSlot
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, ts, back)

	var bad TimeSlot
	assert.Error(t, json.Unmarshal([]byte(`{"startTime":"9am","endTime":"10:00"}`), &bad))
}

func TestDayHoursClosed(t *testing.T) {
	var none *DayHours
	assert.True(t, none.Closed())
	assert.True(t, (&DayHours{Open: "09:00"}).Closed())
	assert.False(t, (&DayHours{Open: "09:00", Close: "17:00"}).Closed())
}
