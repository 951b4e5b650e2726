package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func successCallback(checkoutRequestID string) []byte {
	return []byte(fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": %q,
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 5000},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20191219102115},
						{"Name": "PhoneNumber", "Value": 254722000000}
					]
				}
			}
		}
	}`, checkoutRequestID))
}

func failedCallback(checkoutRequestID string) []byte {
	return []byte(fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": %q,
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`, checkoutRequestID))
}

// pendingAttempt seeds a booking plus a pending attempt carrying the
// given correlation token, the state Initiate leaves behind after an
// accepted push.
func pendingAttempt(t *testing.T, db *gorm.DB, checkoutRequestID string) PaymentAttempt {
	t.Helper()
	bk := seedBooking(t, db, 500_000)
	now := time.Now()
	attempt := PaymentAttempt{
		ID:                "attempt-" + checkoutRequestID,
		BookingID:         bk.ID,
		AmountCents:       500_000,
		PhoneNumber:       "254722000000",
		CheckoutRequestID: &checkoutRequestID,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, db.Create(&attempt).Error)
	return attempt
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Callback Completes The Attempt", func(t *testing.T) {
		db := testDB(t)
		attempt := pendingAttempt(t, db, "ws_CO_1")
		rec := NewReconciler(db)

		res, err := rec.Reconcile(ctx, successCallback("ws_CO_1"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeCompleted, res.Outcome)
		assert.Equal(t, "ws_CO_1", res.CheckoutRequestID)

		var got PaymentAttempt
		require.NoError(t, db.First(&got, "id = ?", attempt.ID).Error)
		assert.Equal(t, StatusCompleted, got.Status)
		require.NotNil(t, got.MpesaReceipt)
		assert.Equal(t, "NLJ7RT61SV", *got.MpesaReceipt)
		require.NotNil(t, got.TransactionDate)
		assert.True(t, got.TransactionDate.Equal(time.Date(2019, 12, 19, 10, 21, 15, 0, time.Local)))

		var ev CallbackEvent
		require.NoError(t, db.First(&ev, "checkout_request_id = ?", "ws_CO_1").Error)
		assert.Equal(t, 0, ev.ResultCode)
		assert.NotNil(t, ev.ProcessedAt)
		assert.Nil(t, ev.ProcessError)
	})

	t.Run("Failure Callback Fails The Attempt", func(t *testing.T) {
		db := testDB(t)
		attempt := pendingAttempt(t, db, "ws_CO_2")
		rec := NewReconciler(db)

		res, err := rec.Reconcile(ctx, failedCallback("ws_CO_2"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, res.Outcome)

		var got PaymentAttempt
		require.NoError(t, db.First(&got, "id = ?", attempt.ID).Error)
		assert.Equal(t, StatusFailed, got.Status)
		require.NotNil(t, got.FailureReason)
		assert.Equal(t, "Request cancelled by user", *got.FailureReason)
		assert.Nil(t, got.MpesaReceipt)
	})

	t.Run("Redelivery Is A No-Op", func(t *testing.T) {
		db := testDB(t)
		attempt := pendingAttempt(t, db, "ws_CO_3")
		rec := NewReconciler(db)

		_, err := rec.Reconcile(ctx, successCallback("ws_CO_3"))
		require.NoError(t, err)

		// A later contradictory delivery must not flip the terminal state.
		res, err := rec.Reconcile(ctx, failedCallback("ws_CO_3"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeDuplicate, res.Outcome)

		var got PaymentAttempt
		require.NoError(t, db.First(&got, "id = ?", attempt.ID).Error)
		assert.Equal(t, StatusCompleted, got.Status)
		require.NotNil(t, got.MpesaReceipt)
		assert.Equal(t, "NLJ7RT61SV", *got.MpesaReceipt)

		// Both deliveries are audited.
		var events int64
		require.NoError(t, db.Model(&CallbackEvent{}).
			Where("checkout_request_id = ?", "ws_CO_3").Count(&events).Error)
		assert.Equal(t, int64(2), events)
	})

	t.Run("Unknown Correlation Token Touches Nothing", func(t *testing.T) {
		db := testDB(t)
		attempt := pendingAttempt(t, db, "ws_CO_4")
		rec := NewReconciler(db)

		res, err := rec.Reconcile(ctx, successCallback("ws_CO_other"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFound, res.Outcome)

		var got PaymentAttempt
		require.NoError(t, db.First(&got, "id = ?", attempt.ID).Error)
		assert.Equal(t, StatusPending, got.Status)

		var ev CallbackEvent
		require.NoError(t, db.First(&ev, "checkout_request_id = ?", "ws_CO_other").Error)
		require.NotNil(t, ev.ProcessError)
		assert.Equal(t, "attempt not found", *ev.ProcessError)
	})

	t.Run("Malformed Payload", func(t *testing.T) {
		db := testDB(t)
		rec := NewReconciler(db)

		_, err := rec.Reconcile(ctx, []byte(`{"Body":{}}`))
		assert.ErrorIs(t, err, ErrMalformedCallback)

		_, err = rec.Reconcile(ctx, []byte("not json"))
		assert.ErrorIs(t, err, ErrMalformedCallback)

		var events int64
		require.NoError(t, db.Model(&CallbackEvent{}).Count(&events).Error)
		assert.Equal(t, int64(0), events)
	})
}

func TestInitiateThenReconcile(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	bk := seedBooking(t, db, 500_000)
	svc := NewService(db, acceptingGateway("ws_CO_e2e"))
	rec := NewReconciler(db)

	attempt, err := svc.Initiate(ctx, InitiateInput{
		BookingID:   bk.ID,
		ActorUserID: bk.UserID,
		PhoneNumber: "0722000000",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, attempt.Status)

	res, err := rec.Reconcile(ctx, successCallback("ws_CO_e2e"))
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, res.Outcome)

	got, err := svc.Get(ctx, attempt.ID, bk.UserID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.MpesaReceipt)
	assert.Equal(t, "NLJ7RT61SV", *got.MpesaReceipt)
}
