package booking

// HasOverlap reports whether candidate intersects any approved reservation in existing.
// The record whose ID equals excludeID is ignored, which lets an edit be checked
// against every other approved record. Intervals are half-open, so touching
// endpoints do not overlap. The first conflict in iteration order is returned.
func HasOverlap(candidate Slot, existing []Reservation, excludeID string) (bool, *Reservation) {
	start, end := candidate.Interval()
	for i := range existing {
		r := existing[i]
		if r.Status != StatusApproved {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		otherStart, otherEnd := r.Slot().Interval()
		if start.Before(otherEnd) && end.After(otherStart) {
			return true, &r
		}
	}
	return false, nil
}

// checkOverlap wraps HasOverlap into a *ConflictError.
func checkOverlap(candidate Slot, existing []Reservation, excludeID string) error {
	if ok, conflict := HasOverlap(candidate, existing, excludeID); ok {
		return &ConflictError{Conflict: *conflict}
	}
	return nil
}
