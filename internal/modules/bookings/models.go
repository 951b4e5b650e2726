package bookings

import "time"

// Booking is immutable after creation; only its payment attempt history
// (owned by the payments module) evolves.
type Booking struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	UserID      string    `gorm:"type:char(36);not null;index:ix_bookings_user_id"`
	HouseID     string    `gorm:"type:char(36);not null;index:ix_bookings_house_id"`
	PhoneNumber string    `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time `gorm:"precision:3;not null"`
}

func (Booking) TableName() string { return "bookings" }
