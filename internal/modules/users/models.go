package users

import "time"

const (
	RoleUser     = "user"
	RoleLandlord = "landlord"
)

type User struct {
	ID           string    `gorm:"type:char(36);primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	Phone        string    `gorm:"type:varchar(20)"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(32);not null;default:user"`
	CreatedAt    time.Time `gorm:"precision:3;not null"`
	UpdatedAt    time.Time `gorm:"precision:3;not null"`
}

func (User) TableName() string { return "users" }
