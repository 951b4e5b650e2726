package payments

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// IsTerminal reports whether a status permits no further transition.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusCancelled
}

// PaymentAttempt is one attempt to collect payment for a booking. Rows
// are never deleted; every mutation is a conditional update guarded on
// status = pending.
type PaymentAttempt struct {
	ID                string     `gorm:"type:char(36);primaryKey"`
	BookingID         string     `gorm:"type:char(36);not null;index:ix_payment_attempts_booking_id"`
	AmountCents       int64      `gorm:"not null"`
	PhoneNumber       string     `gorm:"type:varchar(20);not null"`
	CheckoutRequestID *string    `gorm:"type:varchar(128);uniqueIndex:ux_payment_attempts_checkout_request_id"`
	MerchantRequestID *string    `gorm:"type:varchar(128)"`
	Status            string     `gorm:"type:varchar(32);not null"`
	MpesaReceipt      *string    `gorm:"type:varchar(100)"`
	TransactionDate   *time.Time `gorm:"precision:3"`
	FailureReason     *string    `gorm:"type:varchar(255)"`
	CreatedAt         time.Time  `gorm:"precision:3;not null"`
	UpdatedAt         time.Time  `gorm:"precision:3;not null"`
}

func (PaymentAttempt) TableName() string { return "payment_attempts" }

// PushAmount is the Daraja wire amount in whole shillings.
func (p PaymentAttempt) PushAmount() int64 { return p.AmountCents / 100 }

// CallbackEvent is the raw audit record of one webhook delivery. Daraja
// has no event id, so duplicate deliveries are stored as separate rows;
// idempotency is enforced by the attempt's terminal-state guard.
type CallbackEvent struct {
	ID                string         `gorm:"type:char(36);primaryKey"`
	CheckoutRequestID string         `gorm:"type:varchar(128);not null;index:ix_callback_events_checkout_request_id"`
	ResultCode        int            `gorm:"not null"`
	ResultDesc        string         `gorm:"type:varchar(255)"`
	PayloadJSON       datatypes.JSON `gorm:"type:json;not null"`
	ReceivedAt        time.Time      `gorm:"precision:3;not null"`
	ProcessedAt       *time.Time     `gorm:"precision:3"`
	ProcessError      *string        `gorm:"type:varchar(255)"`
}

func (CallbackEvent) TableName() string { return "callback_events" }
