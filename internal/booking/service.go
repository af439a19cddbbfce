package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"equipment-reservation-backend/internal/parse"
)

// Store is the full-table persistence the service reads and rewrites on every mutation.
type Store interface {
	ReadAll(ctx context.Context) ([]Reservation, error)
	WriteAll(ctx context.Context, reservations []Reservation) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// EventType names a lifecycle transition.
type EventType string

const (
	EventSubmitted EventType = "submitted"
	EventApproved  EventType = "approved"
	EventRejected  EventType = "rejected"
	EventEdited    EventType = "edited"
	EventDeleted   EventType = "deleted"
)

// Event is emitted after a successful write.
type Event struct {
	Type        EventType
	Reservation Reservation
}

// Notifier receives lifecycle events. Dispatch must not block.
type Notifier interface {
	Dispatch(ev Event)
}

// idLayout yields second-granularity, timestamp-derived IDs.
const idLayout = "20060102150405"

// Service runs the reservation lifecycle against a Store.
type Service struct {
	mu       sync.Mutex
	store    Store
	clock    Clock
	loc      *time.Location
	notifier Notifier
}

type Option func(*Service)

// WithNotifier registers a receiver for lifecycle events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLocation sets the timezone used for IDs and the edit window.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates a lifecycle service.
func NewService(store Store, clock Clock, opts ...Option) *Service {
	if clock == nil {
		clock = RealClock{}
	}
	s := &Service{
		store: store,
		clock: clock,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput carries the fields of a new request.
type SubmitInput struct {
	Applicant     string
	EquipmentTask string
	Date          time.Time
	Time          TimeOfDay
	Duration      Duration
	Password      string
}

// EditInput carries the mutable fields of an approved reservation.
type EditInput struct {
	EquipmentTask string
	Date          time.Time
	Time          TimeOfDay
	Duration      Duration
}

// List returns every reservation in store order. A failed read degrades to an empty list.
func (s *Service) List(ctx context.Context) []Reservation {
	all, err := s.store.ReadAll(ctx)
	if err != nil {
		log.Printf("Warning: reading reservations failed, serving empty set: %v", err)
		return []Reservation{}
	}
	return all
}

// Check runs the overlap checker against the current approved set.
// Unlike List it does not degrade: an unreadable store is ErrStoreUnavailable,
// never a free slot.
func (s *Service) Check(ctx context.Context, candidate Slot, excludeID string) (bool, *Reservation, error) {
	all, err := s.load(ctx)
	if err != nil {
		return false, nil, err
	}
	ok, conflict := HasOverlap(candidate, all, excludeID)
	return ok, conflict, nil
}

// Submit validates and appends a new pending reservation.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Reservation, error) {
	if strings.TrimSpace(in.Applicant) == "" || strings.TrimSpace(in.EquipmentTask) == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := ParseDuration(string(in.Duration)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	slot := Slot{Date: in.Date, Time: in.Time, Duration: in.Duration}
	if err := checkOverlap(slot, all, ""); err != nil {
		return nil, err
	}

	id := s.clock.Now().In(s.loc).Format(idLayout)
	if indexOf(all, id) >= 0 {
		return nil, ErrDuplicateID
	}

	r := Reservation{
		ID:            id,
		Applicant:     in.Applicant,
		EquipmentTask: in.EquipmentTask,
		Date:          civilDate(in.Date),
		Time:          in.Time,
		Duration:      in.Duration,
		Password:      parse.Password(in.Password),
		Status:        StatusPending,
	}
	if err := s.save(ctx, append(all, r)); err != nil {
		return nil, err
	}

	log.Printf("Reservation %s submitted by %q for %s %s (%s)", r.ID, r.Applicant, FormatDate(r.Date), r.Time, r.Duration)
	s.notify(EventSubmitted, r)
	return &r, nil
}

// ApprovalWarning runs the advisory overlap check for a pending reservation.
// It returns nil when the reservation would not collide with any approved one.
func (s *Service) ApprovalWarning(ctx context.Context, id string) (*ConflictError, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfStatus(all, id, StatusPending)
	if i < 0 {
		return nil, ErrNotFound
	}
	if ok, conflict := HasOverlap(all[i].Slot(), all, id); ok {
		return &ConflictError{Conflict: *conflict}, nil
	}
	return nil, nil
}

// Approve marks a pending reservation approved. An overlap is only logged; approval proceeds.
func (s *Service) Approve(ctx context.Context, id string) (*Reservation, error) {
	return s.decide(ctx, id, StatusApproved, EventApproved)
}

// Reject marks a pending reservation rejected.
func (s *Service) Reject(ctx context.Context, id string) (*Reservation, error) {
	return s.decide(ctx, id, StatusRejected, EventRejected)
}

func (s *Service) decide(ctx context.Context, id string, to Status, ev EventType) (*Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfStatus(all, id, StatusPending)
	if i < 0 {
		return nil, ErrNotFound
	}

	if to == StatusApproved {
		if ok, conflict := HasOverlap(all[i].Slot(), all, id); ok {
			log.Printf("Warning: approving %s despite %s", id, ConflictDescription(*conflict))
		}
	}

	all[i].Status = to
	if err := s.save(ctx, all); err != nil {
		return nil, err
	}

	r := all[i]
	log.Printf("Reservation %s %s", r.ID, r.Status)
	s.notify(ev, r)
	return &r, nil
}

// Edit moves an approved reservation, re-checking it against every other approved one.
func (s *Service) Edit(ctx context.Context, id string, in EditInput) (*Reservation, error) {
	if strings.TrimSpace(in.EquipmentTask) == "" {
		return nil, ErrMissingFields
	}
	if _, err := ParseDuration(string(in.Duration)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if !s.CanEdit(all[i], s.clock.Now()) {
		return nil, ErrNotEditable
	}

	slot := Slot{Date: in.Date, Time: in.Time, Duration: in.Duration}
	if err := checkOverlap(slot, all, id); err != nil {
		return nil, err
	}

	all[i].EquipmentTask = in.EquipmentTask
	all[i].Date = civilDate(in.Date)
	all[i].Time = in.Time
	all[i].Duration = in.Duration
	if err := s.save(ctx, all); err != nil {
		return nil, err
	}

	r := all[i]
	log.Printf("Reservation %s edited to %s %s (%s)", r.ID, FormatDate(r.Date), r.Time, r.Duration)
	s.notify(EventEdited, r)
	return &r, nil
}

// Delete is the self-service cancellation. Approved reservations are not
// offered to submitters and are reported as not found.
func (s *Service) Delete(ctx context.Context, id, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(all, id)
	if i < 0 || all[i].Status == StatusApproved {
		return ErrNotFound
	}
	if parse.Password(strings.TrimSpace(password)) != parse.Password(strings.TrimSpace(all[i].Password)) {
		return ErrWrongPassword
	}
	return s.remove(ctx, all, i)
}

// AdminDelete removes any reservation regardless of status.
func (s *Service) AdminDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(all, id)
	if i < 0 {
		return ErrNotFound
	}
	return s.remove(ctx, all, i)
}

func (s *Service) remove(ctx context.Context, all []Reservation, i int) error {
	r := all[i]
	rest := make([]Reservation, 0, len(all)-1)
	rest = append(rest, all[:i]...)
	rest = append(rest, all[i+1:]...)
	if err := s.save(ctx, rest); err != nil {
		return err
	}
	log.Printf("Reservation %s deleted", r.ID)
	s.notify(EventDeleted, r)
	return nil
}

// EditWindowStart returns Monday of the week containing now, as a calendar date.
func (s *Service) EditWindowStart(now time.Time) time.Time {
	local := now.In(s.loc)
	offset := (int(local.Weekday()) + 6) % 7
	return time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, time.UTC)
}

// CanEdit reports whether r is approved and dated in the current week or later.
func (s *Service) CanEdit(r Reservation, now time.Time) bool {
	return r.Status == StatusApproved && !civilDate(r.Date).Before(s.EditWindowStart(now))
}

// Editable reports whether r can be edited right now.
func (s *Service) Editable(r Reservation) bool {
	return s.CanEdit(r, s.clock.Now())
}

// load reads the table for a mutation. Unlike List, a failed read is fatal:
// writing back a degraded set would wipe the table.
func (s *Service) load(ctx context.Context) ([]Reservation, error) {
	all, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return all, nil
}

func (s *Service) save(ctx context.Context, all []Reservation) error {
	if err := s.store.WriteAll(ctx, all); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Service) notify(t EventType, r Reservation) {
	if s.notifier != nil {
		s.notifier.Dispatch(Event{Type: t, Reservation: r})
	}
}

func indexOf(all []Reservation, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfStatus(all []Reservation, id string, status Status) int {
	i := indexOf(all, id)
	if i < 0 || all[i].Status != status {
		return -1
	}
	return i
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
