package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/middleware"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/validation"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/payments"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/shared/apperr"
)

type PaymentsHandler struct {
	Payments *payments.Service
}

func NewPaymentsHandler(svc *payments.Service) *PaymentsHandler {
	return &PaymentsHandler{Payments: svc}
}

type payInput struct {
	PhoneNumber string `json:"phone_number" binding:"required,min=9,max=20"`
}

// POST /api/bookings/:id/pay
//
// A gateway failure is not an HTTP error here: the attempt comes back
// failed with a user-facing reason, and the client renders it.
func (h *PaymentsHandler) Initiate(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.Fail(c, apperr.UnauthorizedErr("Authentication required."))
		return
	}

	var in payInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Check the highlighted fields.", fields))
		return
	}

	attempt, err := h.Payments.Initiate(c.Request.Context(), payments.InitiateInput{
		BookingID:   c.Param("id"),
		ActorUserID: actorID,
		PhoneNumber: in.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrBookingNotFound):
			middleware.Fail(c, apperr.NotFoundErr("Booking not found."))
		case errors.Is(err, payments.ErrForbidden):
			middleware.Fail(c, apperr.ForbiddenErr("This booking belongs to another user."))
		case errors.Is(err, payments.ErrDuplicateAttempt):
			middleware.Fail(c, apperr.ConflictErr("A payment is already pending for this booking. Check your phone."))
		case errors.Is(err, payments.ErrAlreadyPaid):
			middleware.Fail(c, apperr.ConflictErr("This booking is already paid."))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}

	status := http.StatusAccepted
	if attempt.Status == payments.StatusFailed {
		status = http.StatusOK
	}

	c.JSON(status, gin.H{"payment": attemptResponse(attempt)})
}

// GET /api/payments/:id — clients poll while the STK prompt is open.
func (h *PaymentsHandler) Get(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.Fail(c, apperr.UnauthorizedErr("Authentication required."))
		return
	}

	attempt, err := h.Payments.Get(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrAttemptNotFound):
			middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
		case errors.Is(err, payments.ErrForbidden):
			middleware.Fail(c, apperr.ForbiddenErr("This payment belongs to another user."))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": attemptResponse(attempt)})
}

func attemptResponse(p payments.PaymentAttempt) gin.H {
	out := gin.H{
		"id":           p.ID,
		"booking_id":   p.BookingID,
		"amount_cents": p.AmountCents,
		"phone_number": p.PhoneNumber,
		"status":       p.Status,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}
	if p.CheckoutRequestID != nil {
		out["checkout_request_id"] = *p.CheckoutRequestID
	}
	if p.MpesaReceipt != nil {
		out["mpesa_receipt"] = *p.MpesaReceipt
	}
	if p.TransactionDate != nil {
		out["transaction_date"] = *p.TransactionDate
	}
	if p.FailureReason != nil {
		out["failure_reason"] = *p.FailureReason
	}
	return out
}
