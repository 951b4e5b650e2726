package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// ListVacant returns houses still open for booking, newest first.
func (r *Repo) ListVacant(ctx context.Context) ([]House, error) {
	var items []House
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusVacant).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *Repo) Get(ctx context.Context, id string) (House, error) {
	var h House
	err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error
	return h, err
}

type CreateInput struct {
	Title       string
	Description string
	Location    string
	PriceCents  int64
	PhotoURL    string
	PhotoKey    string
	OwnerID     string
}

func (r *Repo) Create(ctx context.Context, in CreateInput) (House, error) {
	now := time.Now()
	h := House{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		PriceCents:  in.PriceCents,
		PhotoURL:    in.PhotoURL,
		PhotoKey:    in.PhotoKey,
		Status:      StatusVacant,
		OwnerID:     &in.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&h).Error; err != nil {
		return House{}, err
	}
	return h, nil
}

// ListByOwner backs the landlord dashboard.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]House, error) {
	var items []House
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}
