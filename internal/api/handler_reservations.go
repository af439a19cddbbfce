package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-reservation-backend/internal/booking"
	"equipment-reservation-backend/internal/parse"
)

// reservationResponse is the public view of a reservation. The password never leaves the server.
type reservationResponse struct {
	ID            string `json:"id"`
	Applicant     string `json:"applicant"`
	EquipmentTask string `json:"equipment_task"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Duration      string `json:"duration"`
	Status        string `json:"status"`
	Editable      bool   `json:"editable"`
}

func (h *Handler) toResponse(r booking.Reservation) reservationResponse {
	return reservationResponse{
		ID:            r.ID,
		Applicant:     r.Applicant,
		EquipmentTask: r.EquipmentTask,
		Date:          booking.FormatDate(r.Date),
		Time:          r.Time.String(),
		Duration:      string(r.Duration),
		Status:        string(r.Status),
		Editable:      h.svc.Editable(r),
	}
}

// slotRequest is the date/time/duration triple shared by submit, check and edit.
type slotRequest struct {
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Duration string `json:"duration" binding:"required"`
}

func (req slotRequest) slot() (booking.Slot, error) {
	date, err := booking.ParseDate(parse.Date(req.Date))
	if err != nil {
		return booking.Slot{}, err
	}
	at, err := booking.ParseTimeOfDay(parse.PadTime(req.Time))
	if err != nil {
		return booking.Slot{}, err
	}
	duration, err := booking.ParseDuration(req.Duration)
	if err != nil {
		return booking.Slot{}, err
	}
	return booking.Slot{Date: date, Time: at, Duration: duration}, nil
}

// ListReservations returns every reservation, optionally filtered by ?status=.
func (h *Handler) ListReservations(c *gin.Context) {
	var filter booking.Status
	if raw := c.Query("status"); raw != "" {
		status, err := booking.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter = status
	}

	all := h.svc.List(c.Request.Context())
	out := make([]reservationResponse, 0, len(all))
	for _, r := range all {
		if filter != "" && r.Status != filter {
			continue
		}
		out = append(out, h.toResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

type submitRequest struct {
	slotRequest
	Applicant     string `json:"applicant"`
	EquipmentTask string `json:"equipment_task"`
	Password      string `json:"password"`
}

// SubmitReservation creates a pending reservation request.
func (h *Handler) SubmitReservation(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, booking.ErrMissingFields)
		return
	}
	slot, err := req.slot()
	if err != nil {
		writeError(c, err)
		return
	}

	r, err := h.svc.Submit(c.Request.Context(), booking.SubmitInput{
		Applicant:     req.Applicant,
		EquipmentTask: req.EquipmentTask,
		Date:          slot.Date,
		Time:          slot.Time,
		Duration:      slot.Duration,
		Password:      req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toResponse(*r))
}

type checkRequest struct {
	slotRequest
	ExcludeID string `json:"exclude_id"`
}

// CheckOverlap previews whether a slot collides with an approved reservation.
func (h *Handler) CheckOverlap(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, booking.ErrMissingFields)
		return
	}
	slot, err := req.slot()
	if err != nil {
		writeError(c, err)
		return
	}

	ok, conflict, err := h.svc.Check(c.Request.Context(), slot, req.ExcludeID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"overlap": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"overlap":     true,
		"conflict":    booking.ConflictDescription(*conflict),
		"reservation": h.toResponse(*conflict),
	})
}

type cancelRequest struct {
	Password string `json:"password"`
}

// CancelReservation is the submitter's own delete, authorised by the per-record password.
func (h *Handler) CancelReservation(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		writeError(c, booking.ErrMissingFields)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDurations lists the accepted duration labels in form order.
func (h *Handler) GetDurations(c *gin.Context) {
	c.JSON(http.StatusOK, booking.Durations())
}
