package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/mpesa"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/shared/dbx"
)

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNotFound  Outcome = "not_found"
)

type ReconcileResult struct {
	Outcome           Outcome
	CheckoutRequestID string
}

// Reconciler finalizes pending attempts from Daraja's asynchronous
// callback. It is the only component besides the orchestrator that
// mutates payment state.
type Reconciler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db, logger: slog.Default()}
}

func (r *Reconciler) SetLogger(logger *slog.Logger) { r.logger = logger }

// Reconcile maps one webhook delivery onto its ledger entry and drives
// it to a terminal state. Re-delivery of an already-applied callback is
// a no-op that still reports success: Daraja retries until acknowledged.
// An unknown correlation token touches no attempt row.
func (r *Reconciler) Reconcile(ctx context.Context, rawBody []byte) (ReconcileResult, error) {
	cb, err := mpesa.ParseCallback(rawBody)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	res := ReconcileResult{CheckoutRequestID: cb.CheckoutRequestID}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Audit every delivery, duplicates included.
		ev := CallbackEvent{
			ID:                uuid.NewString(),
			CheckoutRequestID: cb.CheckoutRequestID,
			ResultCode:        cb.ResultCode,
			ResultDesc:        truncate(cb.ResultDesc, 250),
			PayloadJSON:       datatypes.JSON(rawBody),
			ReceivedAt:        now,
		}
		if err := tx.WithContext(ctx).Create(&ev).Error; err != nil {
			return err
		}

		var attempt PaymentAttempt
		err := dbx.LockForUpdate(tx.WithContext(ctx)).
			First(&attempt, "checkout_request_id = ?", cb.CheckoutRequestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.WarnContext(ctx, "callback for unknown checkout request",
				"checkout_request_id", cb.CheckoutRequestID)
			res.Outcome = OutcomeNotFound
			return r.finishEvent(ctx, tx, ev.ID, now, "attempt not found")
		}
		if err != nil {
			return err
		}

		if IsTerminal(attempt.Status) {
			r.logger.InfoContext(ctx, "duplicate callback ignored",
				"attempt_id", attempt.ID, "status", attempt.Status,
				"checkout_request_id", cb.CheckoutRequestID)
			res.Outcome = OutcomeDuplicate
			return r.finishEvent(ctx, tx, ev.ID, now, "")
		}

		if cb.Success() {
			updates := map[string]any{
				"status":     StatusCompleted,
				"updated_at": now,
			}
			if receipt, ok := cb.ReceiptNumber(); ok {
				updates["mpesa_receipt"] = receipt
			}
			if txTime, ok := cb.TransactionTime(); ok {
				updates["transaction_date"] = txTime
			}
			if err := tx.WithContext(ctx).Model(&PaymentAttempt{}).
				Where("id = ? AND status = ?", attempt.ID, StatusPending).
				Updates(updates).Error; err != nil {
				return err
			}
			r.logger.InfoContext(ctx, "payment completed",
				"attempt_id", attempt.ID, "checkout_request_id", cb.CheckoutRequestID)
			res.Outcome = OutcomeCompleted
			return r.finishEvent(ctx, tx, ev.ID, now, "")
		}

		if err := tx.WithContext(ctx).Model(&PaymentAttempt{}).
			Where("id = ? AND status = ?", attempt.ID, StatusPending).
			Updates(map[string]any{
				"status":         StatusFailed,
				"failure_reason": truncate(cb.ResultDesc, 250),
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}
		r.logger.InfoContext(ctx, "payment failed",
			"attempt_id", attempt.ID, "result_code", cb.ResultCode,
			"result_desc", cb.ResultDesc)
		res.Outcome = OutcomeFailed
		return r.finishEvent(ctx, tx, ev.ID, now, "")
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	return res, nil
}

func (r *Reconciler) finishEvent(ctx context.Context, tx *gorm.DB, eventID string, now time.Time, processErr string) error {
	updates := map[string]any{"processed_at": &now}
	if processErr != "" {
		updates["process_error"] = truncate(processErr, 250)
	}
	return tx.WithContext(ctx).Model(&CallbackEvent{}).
		Where("id = ?", eventID).
		Updates(updates).Error
}
