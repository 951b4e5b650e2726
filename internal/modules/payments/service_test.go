package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/mpesa"
)

func TestInitiate(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepted Push Leaves Attempt Pending", func(t *testing.T) {
		db := testDB(t)
		bk := seedBooking(t, db, 500_000) // KES 5000.00
		gw := acceptingGateway("ws_CO_1")
		svc := NewService(db, gw)

		attempt, err := svc.Initiate(ctx, InitiateInput{
			BookingID:   bk.ID,
			ActorUserID: bk.UserID,
			PhoneNumber: "0722000000",
		})
		require.NoError(t, err)

		assert.Equal(t, StatusPending, attempt.Status)
		assert.Equal(t, int64(500_000), attempt.AmountCents)
		assert.Equal(t, "254722000000", attempt.PhoneNumber)
		require.NotNil(t, attempt.CheckoutRequestID)
		assert.Equal(t, "ws_CO_1", *attempt.CheckoutRequestID)
		require.NotNil(t, attempt.MerchantRequestID)
		assert.Nil(t, attempt.FailureReason)

		// Wire amount is whole shillings and the normalized MSISDN goes out.
		require.Len(t, gw.calls, 1)
		assert.Equal(t, int64(5000), gw.calls[0].Amount)
		assert.Equal(t, "254722000000", gw.calls[0].PhoneNumber)
	})

	t.Run("Transport Failure Marks Attempt Failed", func(t *testing.T) {
		db := testDB(t)
		bk := seedBooking(t, db, 500_000)
		gw := &fakeGateway{pushFn: func(_ context.Context, _ mpesa.PushInput) (mpesa.PushResponse, error) {
			return mpesa.PushResponse{}, mpesa.ErrUnreachable
		}}
		svc := NewService(db, gw)

		attempt, err := svc.Initiate(ctx, InitiateInput{
			BookingID:   bk.ID,
			ActorUserID: bk.UserID,
			PhoneNumber: "0722000000",
		})
		require.NoError(t, err)

		assert.Equal(t, StatusFailed, attempt.Status)
		assert.Nil(t, attempt.CheckoutRequestID)
		require.NotNil(t, attempt.FailureReason)
		assert.Contains(t, *attempt.FailureReason, "Could not reach M-Pesa")
	})

	t.Run("Auth Failure Marks Attempt Failed", func(t *testing.T) {
		db := testDB(t)
		bk := seedBooking(t, db, 500_000)
		gw := &fakeGateway{pushFn: func(_ context.Context, _ mpesa.PushInput) (mpesa.PushResponse, error) {
			return mpesa.PushResponse{}, mpesa.ErrAuthFailed
		}}
		svc := NewService(db, gw)

		attempt, err := svc.Initiate(ctx, InitiateInput{
			BookingID:   bk.ID,
			ActorUserID: bk.UserID,
			PhoneNumber: "0722000000",
		})
		require.NoError(t, err)

		assert.Equal(t, StatusFailed, attempt.Status)
		require.NotNil(t, attempt.FailureReason)
		assert.Contains(t, *attempt.FailureReason, "authenticate")
	})

	t.Run("Provider Rejection Marks Attempt Failed", func(t *testing.T) {
		db := testDB(t)
		bk := seedBooking(t, db, 500_000)
		gw := &fakeGateway{pushFn: func(_ context.Context, _ mpesa.PushInput) (mpesa.PushResponse, error) {
			return mpesa.PushResponse{
				ResponseCode:        "1",
				ResponseDescription: "Invalid PhoneNumber",
			}, nil
		}}
		svc := NewService(db, gw)

		attempt, err := svc.Initiate(ctx, InitiateInput{
			BookingID:   bk.ID,
			ActorUserID: bk.UserID,
			PhoneNumber: "0722000000",
		})
		require.NoError(t, err)

		assert.Equal(t, StatusFailed, attempt.Status)
		require.NotNil(t, attempt.FailureReason)
		assert.Equal(t, "Invalid PhoneNumber", *attempt.FailureReason)
	})

	t.Run("Pending Attempt Blocks Re-Initiation", func(t *testing.T) {
		db := testDB(t)
		bk := seedBooking(t, db, 500_000)
		svc := NewService(db, acceptingGateway("ws_CO_1"))

		_, err := svc.Initiate(ctx, InitiateInput{
			BookingID: bk.ID, ActorUserID: bk.UserID, PhoneNumber: "0722000000",
		})
		require.NoError(t, err)

		_, err = svc.Initiate(ctx, InitiateInput{
			BookingID: bk.ID, ActorUserID: bk.UserID, PhoneNumber: "0722000000",
		})
		assert.ErrorIs(t, err, ErrDuplicateAttempt)

		var count int64
		require.NoError(t, db.Model(&PaymentAttempt{}).Where("booking_id = ?", bk.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Completed Attempt Blocks Re-Initiation", func(t *testing.T) {
		db := testDB(t)
		bk := seedBooking(t, db, 500_000)
		svc := NewService(db, acceptingGateway("ws_CO_1"))

		attempt, err := svc.Initiate(ctx, InitiateInput{
			BookingID: bk.ID, ActorUserID: bk.UserID, PhoneNumber: "0722000000",
		})
		require.NoError(t, err)
		require.NoError(t, db.Model(&PaymentAttempt{}).
			Where("id = ?", attempt.ID).
			Update("status", StatusCompleted).Error)

		_, err = svc.Initiate(ctx, InitiateInput{
			BookingID: bk.ID, ActorUserID: bk.UserID, PhoneNumber: "0722000000",
		})
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	})

	t.Run("Failed Attempt Allows A Fresh One", func(t *testing.T) {
		db := testDB(t)
		bk := seedBooking(t, db, 500_000)
		gw := &fakeGateway{pushFn: func(_ context.Context, _ mpesa.PushInput) (mpesa.PushResponse, error) {
			return mpesa.PushResponse{}, mpesa.ErrUnreachable
		}}
		svc := NewService(db, gw)

		first, err := svc.Initiate(ctx, InitiateInput{
			BookingID: bk.ID, ActorUserID: bk.UserID, PhoneNumber: "0722000000",
		})
		require.NoError(t, err)
		require.Equal(t, StatusFailed, first.Status)

		gw.pushFn = acceptingGateway("ws_CO_2").pushFn
		second, err := svc.Initiate(ctx, InitiateInput{
			BookingID: bk.ID, ActorUserID: bk.UserID, PhoneNumber: "0722000000",
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, second.Status)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("Unknown Booking", func(t *testing.T) {
		db := testDB(t)
		svc := NewService(db, acceptingGateway("ws_CO_1"))

		_, err := svc.Initiate(ctx, InitiateInput{
			BookingID: "missing", ActorUserID: "someone", PhoneNumber: "0722000000",
		})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("Only The Booking Owner May Pay", func(t *testing.T) {
		db := testDB(t)
		bk := seedBooking(t, db, 500_000)
		gw := acceptingGateway("ws_CO_1")
		svc := NewService(db, gw)

		_, err := svc.Initiate(ctx, InitiateInput{
			BookingID: bk.ID, ActorUserID: "intruder", PhoneNumber: "0722000000",
		})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, gw.calls)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	bk := seedBooking(t, db, 500_000)
	svc := NewService(db, acceptingGateway("ws_CO_1"))

	attempt, err := svc.Initiate(ctx, InitiateInput{
		BookingID: bk.ID, ActorUserID: bk.UserID, PhoneNumber: "0722000000",
	})
	require.NoError(t, err)

	t.Run("Owner", func(t *testing.T) {
		got, err := svc.Get(ctx, attempt.ID, bk.UserID)
		require.NoError(t, err)
		assert.Equal(t, attempt.ID, got.ID)
	})

	t.Run("Non-Owner", func(t *testing.T) {
		_, err := svc.Get(ctx, attempt.ID, "intruder")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Unknown Attempt", func(t *testing.T) {
		_, err := svc.Get(ctx, "missing", bk.UserID)
		assert.ErrorIs(t, err, ErrAttemptNotFound)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "abc", truncate("abc", 0))
}
