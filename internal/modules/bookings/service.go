package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/listings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/shared/dbx"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

type BookInput struct {
	UserID      string
	HouseID     string
	PhoneNumber string
}

// Book reserves a vacant house for a user. The house row is locked for
// the duration of the transaction so two concurrent bookings cannot both
// pass the vacancy gate.
func (s *Service) Book(ctx context.Context, in BookInput) (Booking, error) {
	var created Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var house listings.House
		if err := dbx.LockForUpdate(tx.WithContext(ctx)).
			First(&house, "id = ?", in.HouseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHouseNotFound
			}
			return err
		}

		if house.Status != listings.StatusVacant {
			return ErrHouseNotVacant
		}

		now := time.Now()
		created = Booking{
			ID:          uuid.NewString(),
			UserID:      in.UserID,
			HouseID:     house.ID,
			PhoneNumber: in.PhoneNumber,
			CreatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&created).Error; err != nil {
			return err
		}

		return tx.WithContext(ctx).Model(&listings.House{}).
			Where("id = ? AND status = ?", house.ID, listings.StatusVacant).
			Updates(map[string]any{
				"status":     listings.StatusOccupied,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return Booking{}, err
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (Booking, error) {
	var b Booking
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	return b, err
}

// ListByHouse backs the landlord dashboard.
func (s *Service) ListByHouse(ctx context.Context, houseID string) ([]Booking, error) {
	var items []Booking
	err := s.db.WithContext(ctx).
		Where("house_id = ?", houseID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}
