package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/middleware"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/validation"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/bookings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/shared/apperr"
)

type BookingsHandler struct {
	Bookings *bookings.Service
}

func NewBookingsHandler(svc *bookings.Service) *BookingsHandler {
	return &BookingsHandler{Bookings: svc}
}

type bookInput struct {
	PhoneNumber string `json:"phone_number" binding:"required,min=9,max=20"`
}

// POST /api/houses/:id/book
func (h *BookingsHandler) Book(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.Fail(c, apperr.UnauthorizedErr("Authentication required."))
		return
	}

	var in bookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Check the highlighted fields.", fields))
		return
	}

	booking, err := h.Bookings.Book(c.Request.Context(), bookings.BookInput{
		UserID:      actorID,
		HouseID:     c.Param("id"),
		PhoneNumber: in.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrHouseNotFound):
			middleware.Fail(c, apperr.NotFoundErr("House not found."))
		case errors.Is(err, bookings.ErrHouseNotVacant):
			middleware.Fail(c, apperr.ConflictErr("That house has already been taken."))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": gin.H{
		"id":           booking.ID,
		"house_id":     booking.HouseID,
		"phone_number": booking.PhoneNumber,
		"created_at":   booking.CreatedAt,
	}})
}
