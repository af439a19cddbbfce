package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equipment-reservation-backend/internal/booking"
	"equipment-reservation-backend/internal/model"
)

// ErrSubscriptionNotFound is returned when no push subscription matches an endpoint.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// Store defines the interface for all database operations.
type Store interface {
	// ReadAll returns every reservation in sheet order. On failure it returns an
	// empty, non-nil slice together with the error.
	ReadAll(ctx context.Context) ([]booking.Reservation, error)
	// WriteAll replaces the whole sheet with reservations. Stored rows that
	// ReadAll skipped as malformed are preserved.
	WriteAll(ctx context.Context, reservations []booking.Reservation) error
	Count(ctx context.Context) (int64, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ReadAll(ctx context.Context) ([]booking.Reservation, error) {
	var rows []model.ReservationRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return []booking.Reservation{}, fmt.Errorf("failed to read reservation rows: %w", err)
	}

	reservations := make([]booking.Reservation, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		r, err := RowToReservation(row)
		if err != nil {
			log.Printf("Warning: skipping reservation row %d (id %q), kept in storage: %v", row.Position, row.ID, err)
			continue
		}
		reservations = append(reservations, r)
	}
	return reservations, nil
}

func (s *gormStore) WriteAll(ctx context.Context, reservations []booking.Reservation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []model.ReservationRow
		if err := tx.Order("position").Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to read reservation rows: %w", err)
		}
		rows := mergeRows(existing, reservations)

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.ReservationRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear reservation rows: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return fmt.Errorf("failed to write %d reservation rows: %w", len(rows), err)
		}
		return nil
	})
}

// mergeRows lays reservations over the current sheet. Rows ReadAll could not
// convert are not part of reservations; they are carried through untouched,
// keeping their place among the others, so only an explicit delete removes data.
func mergeRows(existing []model.ReservationRow, reservations []booking.Reservation) []model.ReservationRow {
	rows := make([]model.ReservationRow, 0, len(existing)+len(reservations))
	next := 0
	for _, row := range existing {
		switch {
		case isBlank(row):
		case isMalformed(row):
			rows = append(rows, row)
		case next < len(reservations):
			rows = append(rows, ReservationToRow(reservations[next], 0))
			next++
		}
	}
	for _, r := range reservations[next:] {
		rows = append(rows, ReservationToRow(r, 0))
	}
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

func (s *gormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.ReservationRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count reservation rows: %w", err)
	}
	return n, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "label"}),
	}).Create(sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}
