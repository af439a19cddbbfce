package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-reservation-backend/internal/booking"
)

// GetApprovalWarning reports the approved reservation a pending one would collide with, if any.
func (h *Handler) GetApprovalWarning(c *gin.Context) {
	conflict, err := h.svc.ApprovalWarning(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if conflict == nil {
		c.JSON(http.StatusOK, gin.H{"overlap": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"overlap":     true,
		"conflict":    conflict.Error(),
		"reservation": h.toResponse(conflict.Conflict),
	})
}

// ApproveReservation approves a pending reservation.
func (h *Handler) ApproveReservation(c *gin.Context) {
	r, err := h.svc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(*r))
}

// RejectReservation rejects a pending reservation.
func (h *Handler) RejectReservation(c *gin.Context) {
	r, err := h.svc.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(*r))
}

type editRequest struct {
	slotRequest
	EquipmentTask string `json:"equipment_task"`
}

// EditReservation moves an approved reservation of the current week or later.
func (h *Handler) EditReservation(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, booking.ErrMissingFields)
		return
	}
	slot, err := req.slot()
	if err != nil {
		writeError(c, err)
		return
	}

	r, err := h.svc.Edit(c.Request.Context(), c.Param("id"), booking.EditInput{
		EquipmentTask: req.EquipmentTask,
		Date:          slot.Date,
		Time:          slot.Time,
		Duration:      slot.Duration,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(*r))
}

// DeleteReservation removes any reservation.
func (h *Handler) DeleteReservation(c *gin.Context) {
	if err := h.svc.AdminDelete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
