package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wanderventure/wanderventure-server/jwtauth"
)

type bookingDateRequest struct {
	BookingDate any `json:"bookingDate" validate:"required"`
}

// listBookings runs behind the guard. A signed-in guest may only filter by
// their own email.
func (h *Handler) listBookings(c *gin.Context) {
	ctx := c.Request.Context()
	claims := jwtauth.MustGetClaims(ctx)

	email := c.Query("email")
	if email != "" && claims.Email() != "" && email != claims.Email() {
		h.logger.Warn("booking lookup for another guest",
			zap.String("claim_email", claims.Email()),
			zap.String("query_email", email))
		writeError(c, http.StatusForbidden, "forbidden access")
		return
	}

	bookings, err := h.store.ListBookings(ctx, email)
	if err != nil {
		h.handleStoreError(c, "list bookings", err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) createBooking(c *gin.Context) {
	doc, err := h.bindDocument(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.store.CreateBooking(c.Request.Context(), doc)
	if err != nil {
		h.handleStoreError(c, "create booking", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) updateBookingDate(c *gin.Context) {
	var req bookingDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, errInvalidBody.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, err := h.store.UpdateBookingDate(c.Request.Context(), c.Param("id"), req.BookingDate)
	if err != nil {
		h.handleStoreError(c, "update booking", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) deleteBooking(c *gin.Context) {
	res, err := h.store.DeleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStoreError(c, "delete booking", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
