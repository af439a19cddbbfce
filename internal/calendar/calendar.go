package calendar

import (
	"fmt"

	"equipment-reservation-backend/internal/booking"
)

// PrivilegedColor is reserved for the privileged applicant.
const PrivilegedColor = "#D32F2F"

// palette is picked by hashing the applicant name.
var palette = []string{
	"#1E88E5", // Blue
	"#43A047", // Green
	"#FB8C00", // Orange
	"#8E24AA", // Purple
	"#00ACC1", // Cyan
	"#3949AB", // Indigo
	"#5D4037", // Brown
}

const eventLayout = "2006-01-02T15:04"

// Event is one entry of the calendar feed.
type Event struct {
	Title         string     `json:"title"`
	Start         string     `json:"start"`
	End           string     `json:"end"`
	Color         string     `json:"color"`
	ExtendedProps EventProps `json:"extendedProps"`
}

// EventProps is shown in the event detail popup.
type EventProps struct {
	ID        string `json:"id"`
	Applicant string `json:"applicant"`
	Equipment string `json:"equip"`
	Duration  string `json:"duration"`
	Status    string `json:"status"`
}

// Palette assigns display colors to applicants.
type Palette struct {
	privileged string
}

// NewPalette creates a Palette that gives privileged its own fixed color.
func NewPalette(privileged string) Palette {
	return Palette{privileged: privileged}
}

// Color returns the display color for an applicant: a fixed red for the
// privileged name, otherwise the sum of the name's code points modulo the palette size.
func (p Palette) Color(name string) string {
	if p.privileged != "" && name == p.privileged {
		return PrivilegedColor
	}
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return palette[sum%len(palette)]
}

// Events renders the approved reservations as calendar events, in input order.
func (p Palette) Events(reservations []booking.Reservation) []Event {
	events := make([]Event, 0, len(reservations))
	for _, r := range reservations {
		if r.Status != booking.StatusApproved {
			continue
		}
		start, end := r.Slot().Interval()
		events = append(events, Event{
			Title: fmt.Sprintf("[%s] %s", r.EquipmentTask, r.Applicant),
			Start: start.Format(eventLayout),
			End:   end.Format(eventLayout),
			Color: p.Color(r.Applicant),
			ExtendedProps: EventProps{
				ID:        r.ID,
				Applicant: r.Applicant,
				Equipment: r.EquipmentTask,
				Duration:  string(r.Duration),
				Status:    string(r.Status),
			},
		})
	}
	return events
}
