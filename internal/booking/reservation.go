package booking

import (
	"fmt"
	"time"
)

// Status is the approval state of a reservation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// Duration is the closed set of bookable lengths offered by the form.
type Duration string

const (
	Duration1h     Duration = "1h"
	Duration2h     Duration = "2h"
	Duration3h     Duration = "3h"
	Duration4h     Duration = "4h"
	Duration5hPlus Duration = "5h+"
)

// durationHours is the length used for overlap math. "5h+" counts as exactly five hours.
var durationHours = map[Duration]int{
	Duration1h:     1,
	Duration2h:     2,
	Duration3h:     3,
	Duration4h:     4,
	Duration5hPlus: 5,
}

// Durations lists the labels in form order.
func Durations() []Duration {
	return []Duration{Duration1h, Duration2h, Duration3h, Duration4h, Duration5hPlus}
}

// ParseDuration accepts only labels from the enumeration.
func ParseDuration(label string) (Duration, error) {
	d := Duration(label)
	if _, ok := durationHours[d]; !ok {
		return "", fmt.Errorf("%w: unknown duration %q", ErrInvalidInput, label)
	}
	return d, nil
}

// Hours returns the effective length in hours.
func (d Duration) Hours() int {
	if h, ok := durationHours[d]; ok {
		return h
	}
	return DurationHours(string(d))
}

// DurationHours reads the leading digit of a raw label, falling back to one hour.
// Rows edited by hand in the sheet can carry labels outside the enumeration.
func DurationHours(label string) int {
	if label == "" || label[0] < '0' || label[0] > '9' {
		return 1
	}
	return int(label[0] - '0')
}

// TimeOfDay is a wall-clock time with minute granularity, stored as minutes since midnight.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "H:MM" or "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid time %q", ErrInvalidInput, s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String renders the zero-padded HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return d, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(dateLayout)
}

// Slot is the time range a reservation occupies.
type Slot struct {
	Date     time.Time
	Time     TimeOfDay
	Duration Duration
}

// Interval returns the half-open range [start, end) of the slot.
func (s Slot) Interval() (time.Time, time.Time) {
	start := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), s.Time.Hour(), s.Time.Minute(), 0, 0, time.UTC)
	return start, start.Add(time.Duration(s.Duration.Hours()) * time.Hour)
}

// Reservation is one row of the reservation board.
type Reservation struct {
	ID            string
	Applicant     string
	EquipmentTask string
	Date          time.Time
	Time          TimeOfDay
	Duration      Duration
	Password      string
	Status        Status
}

// Slot returns the time range the reservation occupies.
func (r Reservation) Slot() Slot {
	return Slot{Date: r.Date, Time: r.Time, Duration: r.Duration}
}
