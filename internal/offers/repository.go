package offers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"domainmarket/marketplace-backend/pkg/errs"
)

// Repository handles offer persistence.
type Repository interface {
	Create(ctx context.Context, offer *Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Offer, error)
	ListByListing(ctx context.Context, domainID uuid.UUID) ([]Offer, error)

	// TransitionFromPending performs the status-guarded update and
	// reports whether a row changed.
	TransitionFromPending(ctx context.Context, id uuid.UUID, newStatus OfferStatus) (bool, error)
}

type postgresRepository struct {
	db *gorm.DB
}

// NewRepository creates the offers repository.
func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, offer *Offer) error {
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	var offer Offer
	err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

func (r *postgresRepository) ListByListing(ctx context.Context, domainID uuid.UUID) ([]Offer, error) {
	var result []Offer
	err := r.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return result, nil
}

func (r *postgresRepository) TransitionFromPending(ctx context.Context, id uuid.UUID, newStatus OfferStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Offer{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", newStatus)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition offer status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
