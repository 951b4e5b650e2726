package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/bookings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/listings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/mpesa"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/shared/dbx"
)

const accountReference = "NYUMBA_HUNT"

type Service struct {
	db      *gorm.DB
	gateway Gateway
	logger  *slog.Logger
}

func NewService(db *gorm.DB, gw Gateway) *Service {
	return &Service{db: db, gateway: gw, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

type InitiateInput struct {
	BookingID   string
	ActorUserID string
	PhoneNumber string
}

// Initiate drives a booking to a pending payment attempt.
//
// Phase 1 creates the attempt inside a transaction, before the external
// call, so a crash mid-flight leaves a reconcilable pending row. Phase 2
// calls the gateway outside any transaction. Phase 3 applies the outcome
// with a status-guarded update. Gateway failures are terminal for the
// attempt and come back on the attempt itself (FailureReason), not as an
// error: the caller renders a user-facing message either way.
func (s *Service) Initiate(ctx context.Context, in InitiateInput) (PaymentAttempt, error) {
	if in.BookingID == "" || in.PhoneNumber == "" {
		return PaymentAttempt{}, ErrBookingNotFound
	}

	phone := s.gateway.NormalizePhone(in.PhoneNumber)

	var attempt PaymentAttempt
	var bk bookings.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Booking row lock serializes concurrent initiations per booking.
		if err := dbx.LockForUpdate(tx.WithContext(ctx)).
			First(&bk, "id = ?", in.BookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if bk.UserID != in.ActorUserID {
			return ErrForbidden
		}

		var house listings.House
		if err := tx.WithContext(ctx).First(&house, "id = ?", bk.HouseID).Error; err != nil {
			return err
		}

		// One active attempt per booking: pending blocks re-initiation,
		// completed means there is nothing left to pay. Terminal failed
		// or cancelled attempts stay behind as the audit trail.
		var existing PaymentAttempt
		e := tx.WithContext(ctx).
			Where("booking_id = ? AND status IN ?", bk.ID, []string{StatusPending, StatusCompleted}).
			First(&existing).Error
		if e == nil {
			if existing.Status == StatusCompleted {
				return ErrAlreadyPaid
			}
			return ErrDuplicateAttempt
		}
		if !errors.Is(e, gorm.ErrRecordNotFound) {
			return e
		}

		now := time.Now()
		attempt = PaymentAttempt{
			ID:          uuid.NewString(),
			BookingID:   bk.ID,
			AmountCents: house.PriceCents,
			PhoneNumber: phone,
			Status:      StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.WithContext(ctx).Create(&attempt).Error
	})
	if err != nil {
		return PaymentAttempt{}, err
	}

	// Gateway call outside the transaction. Bounded by the client's own
	// timeout; no automatic retry (a retry here could double-charge).
	push, perr := s.gateway.STKPush(ctx, mpesa.PushInput{
		PhoneNumber:      attempt.PhoneNumber,
		Amount:           attempt.PushAmount(),
		AccountReference: fmt.Sprintf("%s_%s", accountReference, bk.HouseID),
		Description:      fmt.Sprintf("Booking payment for house %s", bk.HouseID),
	})

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		if perr != nil {
			reason := "Could not reach M-Pesa. Please try again later."
			if errors.Is(perr, mpesa.ErrAuthFailed) {
				reason = "Could not authenticate with M-Pesa. Please try again later."
			}
			s.logger.ErrorContext(ctx, "stk push failed",
				"attempt_id", attempt.ID, "booking_id", bk.ID, "err", perr)
			return s.transition(ctx, tx, attempt.ID, map[string]any{
				"status":         StatusFailed,
				"failure_reason": reason,
				"updated_at":     now,
			})
		}

		if !push.Accepted() {
			// Provider rejected the request; distinct from transport failure.
			s.logger.WarnContext(ctx, "stk push rejected",
				"attempt_id", attempt.ID, "response_code", push.ResponseCode,
				"response_description", push.ResponseDescription)
			return s.transition(ctx, tx, attempt.ID, map[string]any{
				"status":         StatusFailed,
				"failure_reason": truncate(push.ResponseDescription, 250),
				"updated_at":     now,
			})
		}

		s.logger.InfoContext(ctx, "stk push accepted",
			"attempt_id", attempt.ID, "checkout_request_id", push.CheckoutRequestID)
		// Completion is owned by the callback; the attempt stays pending.
		return s.transition(ctx, tx, attempt.ID, map[string]any{
			"checkout_request_id": push.CheckoutRequestID,
			"merchant_request_id": push.MerchantRequestID,
			"updated_at":          now,
		})
	})
	if err != nil {
		return PaymentAttempt{}, err
	}

	if err := s.db.WithContext(ctx).First(&attempt, "id = ?", attempt.ID).Error; err != nil {
		return PaymentAttempt{}, err
	}
	return attempt, nil
}

// transition applies updates only while the attempt is still pending,
// keeping terminal states monotonic.
func (s *Service) transition(ctx context.Context, tx *gorm.DB, attemptID string, updates map[string]any) error {
	return tx.WithContext(ctx).Model(&PaymentAttempt{}).
		Where("id = ? AND status = ?", attemptID, StatusPending).
		Updates(updates).Error
}

// Get returns an attempt for status polling; the owner check walks
// through the booking.
func (s *Service) Get(ctx context.Context, attemptID, actorUserID string) (PaymentAttempt, error) {
	var attempt PaymentAttempt
	if err := s.db.WithContext(ctx).First(&attempt, "id = ?", attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaymentAttempt{}, ErrAttemptNotFound
		}
		return PaymentAttempt{}, err
	}

	var bk bookings.Booking
	if err := s.db.WithContext(ctx).First(&bk, "id = ?", attempt.BookingID).Error; err != nil {
		return PaymentAttempt{}, err
	}
	if bk.UserID != actorUserID {
		return PaymentAttempt{}, ErrForbidden
	}
	return attempt, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
