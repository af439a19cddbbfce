package store

import (
	"fmt"
	"strings"

	"equipment-reservation-backend/internal/booking"
	"equipment-reservation-backend/internal/model"
	"equipment-reservation-backend/internal/parse"
)

// statusAliases maps every status spelling found in the sheet to the domain value.
// The Korean labels are what the board wrote before it stored English values.
var statusAliases = map[string]booking.Status{
	"pending":  booking.StatusPending,
	"approved": booking.StatusApproved,
	"rejected": booking.StatusRejected,
	"대기중":      booking.StatusPending,
	"승인완료":     booking.StatusApproved,
	"반려":       booking.StatusRejected,
}

// durationAliases maps legacy Korean duration labels onto the enumeration.
var durationAliases = map[string]booking.Duration{
	"1시간":    booking.Duration1h,
	"2시간":    booking.Duration2h,
	"3시간":    booking.Duration3h,
	"4시간":    booking.Duration4h,
	"5시간 이상": booking.Duration5hPlus,
}

// RowToReservation normalizes a sheet row and converts it to a domain reservation.
func RowToReservation(row model.ReservationRow) (booking.Reservation, error) {
	id := parse.ID(row.ID)
	if id == "" {
		return booking.Reservation{}, fmt.Errorf("row has no id")
	}

	date, err := booking.ParseDate(parse.Date(row.Date))
	if err != nil {
		return booking.Reservation{}, err
	}
	tod, err := booking.ParseTimeOfDay(parse.PadTime(row.Time))
	if err != nil {
		return booking.Reservation{}, err
	}
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(row.Status))]
	if !ok {
		return booking.Reservation{}, fmt.Errorf("unknown status %q", row.Status)
	}

	return booking.Reservation{
		ID:            id,
		Applicant:     strings.TrimSpace(row.Applicant),
		EquipmentTask: strings.TrimSpace(row.EquipmentTask),
		Date:          date,
		Time:          tod,
		Duration:      normalizeDuration(row.Duration),
		Password:      parse.Password(row.Password),
		Status:        status,
	}, nil
}

// ReservationToRow renders a reservation as a sheet row at the given position.
func ReservationToRow(r booking.Reservation, position int) model.ReservationRow {
	return model.ReservationRow{
		Position:      position,
		ID:            r.ID,
		Applicant:     r.Applicant,
		EquipmentTask: r.EquipmentTask,
		Date:          booking.FormatDate(r.Date),
		Time:          r.Time.String(),
		Duration:      string(r.Duration),
		Password:      r.Password,
		Status:        string(r.Status),
	}
}

// normalizeDuration keeps unknown labels as-is; their leading digit still drives overlap math.
func normalizeDuration(raw string) booking.Duration {
	label := strings.TrimSpace(raw)
	if d, ok := durationAliases[label]; ok {
		return d
	}
	if d, err := booking.ParseDuration(label); err == nil {
		return d
	}
	return booking.Duration(label)
}

func isBlank(row model.ReservationRow) bool {
	return strings.TrimSpace(row.ID+row.Applicant+row.EquipmentTask+row.Date+row.Time+row.Duration+row.Password+row.Status) == ""
}

// isMalformed reports a non-blank row that does not convert to a reservation.
func isMalformed(row model.ReservationRow) bool {
	if isBlank(row) {
		return false
	}
	_, err := RowToReservation(row)
	return err != nil
}
