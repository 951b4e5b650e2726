package payments

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/bookings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/listings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/users"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/mpesa"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&users.User{},
		&listings.House{},
		&bookings.Booking{},
		&PaymentAttempt{},
		&CallbackEvent{},
	))
	return db
}

// seedBooking creates a user, a house priced at priceCents, and a
// booking by that user, returning the booking.
func seedBooking(t *testing.T, db *gorm.DB, priceCents int64) bookings.Booking {
	t.Helper()
	now := time.Now()

	u := users.User{
		ID:           uuid.NewString(),
		Name:         "Test Tenant",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         users.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Create(&u).Error)

	h := listings.House{
		ID:         uuid.NewString(),
		Title:      "Two Bedroom, Kilimani",
		Location:   "Nairobi",
		PriceCents: priceCents,
		Status:     listings.StatusOccupied,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&h).Error)

	bk := bookings.Booking{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		HouseID:     h.ID,
		PhoneNumber: "0722000000",
		CreatedAt:   now,
	}
	require.NoError(t, db.Create(&bk).Error)
	return bk
}

// fakeGateway records push calls and answers with a canned response.
type fakeGateway struct {
	pushFn func(ctx context.Context, in mpesa.PushInput) (mpesa.PushResponse, error)
	calls  []mpesa.PushInput
}

func (f *fakeGateway) NormalizePhone(raw string) string { return mpesa.NormalizePhone(raw) }

func (f *fakeGateway) STKPush(ctx context.Context, in mpesa.PushInput) (mpesa.PushResponse, error) {
	f.calls = append(f.calls, in)
	if f.pushFn == nil {
		return mpesa.PushResponse{}, fmt.Errorf("no pushFn configured")
	}
	return f.pushFn(ctx, in)
}

func acceptingGateway(checkoutRequestID string) *fakeGateway {
	return &fakeGateway{pushFn: func(_ context.Context, _ mpesa.PushInput) (mpesa.PushResponse, error) {
		return mpesa.PushResponse{
			MerchantRequestID:   "29115-34620561-1",
			CheckoutRequestID:   checkoutRequestID,
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
		}, nil
	}}
}
