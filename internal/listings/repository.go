package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"domainmarket/marketplace-backend/pkg/errs"
)

// Repository handles all database operations for listings.
type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	List(ctx context.Context, status *ListingStatus, limit, offset int) ([]Listing, error)
	UpdateVerificationFlags(ctx context.Context, id uuid.UUID, verificationStatus VerificationStatus, isVerified bool, listingStatus ListingStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *gorm.DB
}

// NewRepository creates a new listings repository.
func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, listing *Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var listing Listing
	err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

func (r *postgresRepository) List(ctx context.Context, status *ListingStatus, limit, offset int) ([]Listing, error) {
	var result []Listing
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return result, nil
}

// UpdateVerificationFlags flips the listing's verification mirror columns.
// An empty listingStatus leaves the marketplace status untouched.
func (r *postgresRepository) UpdateVerificationFlags(ctx context.Context, id uuid.UUID, verificationStatus VerificationStatus, isVerified bool, listingStatus ListingStatus) error {
	updates := map[string]interface{}{
		"verification_status": verificationStatus,
		"is_verified":         isVerified,
	}
	if listingStatus != "" {
		updates["status"] = listingStatus
	}

	result := r.db.WithContext(ctx).Model(&Listing{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update verification flags: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a listing and every dependent row in one transaction, so a
// failed branch rolls the whole delete back.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, del := range []*gorm.DB{
			tx.Where("domain_id = ?", id).Delete(&ListingView{}),
			tx.Exec("DELETE FROM verification_history WHERE domain_id = ?", id),
			tx.Exec("DELETE FROM domain_verifications WHERE domain_id = ?", id),
			tx.Where("domain_id = ?", id).Delete(&Favorite{}),
			tx.Exec("DELETE FROM domain_offers WHERE domain_id = ?", id),
		} {
			if del.Error != nil {
				return del.Error
			}
		}

		result := tx.Where("id = ?", id).Delete(&Listing{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}
