package listings

import "time"

const (
	StatusVacant   = "vacant"
	StatusOccupied = "occupied"
)

type House struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	Location    string    `gorm:"type:varchar(200);not null"`
	PriceCents  int64     `gorm:"not null"`
	PhotoURL    string    `gorm:"type:varchar(512)"`
	PhotoKey    string    `gorm:"type:varchar(255)"`
	Status      string    `gorm:"type:varchar(20);not null;default:vacant;index:ix_houses_status"`
	OwnerID     *string   `gorm:"type:char(36);index:ix_houses_owner_id"`
	CreatedAt   time.Time `gorm:"precision:3;not null"`
	UpdatedAt   time.Time `gorm:"precision:3;not null"`
}

func (House) TableName() string { return "houses" }
