package listings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"domainmarket/marketplace-backend/pkg/errs"
)

// Service provides listing business logic.
type Service struct {
	repo Repository
}

// NewService creates a new listings service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new listing owned by the caller. New listings start
// unverified; ownership has to be proven through the verification flow.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, ownerEmail string, req CreateRequest) (*Listing, error) {
	listing := &Listing{
		ID:                 uuid.New(),
		DomainName:         req.DomainName,
		OwnerID:            ownerID,
		OwnerEmail:         ownerEmail,
		Price:              req.Price,
		Currency:           req.Currency,
		Description:        req.Description,
		Status:             StatusAvailable,
		VerificationStatus: VerificationUnverified,
	}
	if listing.Currency == "" {
		listing.Currency = "USD"
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get returns a single listing.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of listings, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *ListingStatus, limit, offset int) ([]Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, status, limit, offset)
}

// GetByID satisfies the verification and offer packages' listing store
// interfaces.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateVerificationFlags is called by the verification orchestrator when a
// request is approved or rejected.
func (s *Service) UpdateVerificationFlags(ctx context.Context, id uuid.UUID, verificationStatus VerificationStatus, isVerified bool, listingStatus ListingStatus) error {
	return s.repo.UpdateVerificationFlags(ctx, id, verificationStatus, isVerified, listingStatus)
}

// Delete removes a listing and its dependent rows. Only the owner or an
// admin may delete.
func (s *Service) Delete(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) error {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != actorID && !isAdmin {
		return fmt.Errorf("caller %s does not own listing %s: %w", actorID, id, errs.ErrUnauthorized)
	}
	return s.repo.Delete(ctx, id)
}
