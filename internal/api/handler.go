package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"equipment-reservation-backend/internal/booking"
	"equipment-reservation-backend/internal/calendar"
	"equipment-reservation-backend/internal/store"
)

// ReservationService is the lifecycle the handlers drive.
type ReservationService interface {
	List(ctx context.Context) []booking.Reservation
	Check(ctx context.Context, candidate booking.Slot, excludeID string) (bool, *booking.Reservation, error)
	Submit(ctx context.Context, in booking.SubmitInput) (*booking.Reservation, error)
	ApprovalWarning(ctx context.Context, id string) (*booking.ConflictError, error)
	Approve(ctx context.Context, id string) (*booking.Reservation, error)
	Reject(ctx context.Context, id string) (*booking.Reservation, error)
	Edit(ctx context.Context, id string, in booking.EditInput) (*booking.Reservation, error)
	Delete(ctx context.Context, id, password string) error
	AdminDelete(ctx context.Context, id string) error
	Editable(r booking.Reservation) bool
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc     ReservationService
	store   store.Store
	palette calendar.Palette
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(svc ReservationService, s store.Store, palette calendar.Palette, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		svc:     svc,
		store:   s,
		palette: palette,
		webpush: webpushOptions,
	}
}

// writeError maps a lifecycle error onto an HTTP status.
func writeError(c *gin.Context, err error) {
	var conflict *booking.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":          err.Error(),
			"conflict":       conflict.Error(),
			"conflicting_id": conflict.Conflict.ID,
		})
	case errors.Is(err, booking.ErrMissingFields), errors.Is(err, booking.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrWrongPassword):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrNotEditable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
