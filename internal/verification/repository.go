package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"domainmarket/marketplace-backend/pkg/errs"
)

// Repository handles verification request and history persistence.
type Repository interface {
	// CreateSuperseding inserts req and, in the same transaction, cancels
	// any prior pending request for the same listing. Enforces the
	// single-non-terminal-request invariant.
	CreateSuperseding(ctx context.Context, req *Request) error

	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// TransitionFromPending performs the status-guarded update
	// (WHERE status = 'pending') and reports whether a row changed.
	TransitionFromPending(ctx context.Context, id uuid.UUID, newStatus string) (bool, error)

	UpdateData(ctx context.Context, id uuid.UUID, data datatypes.JSON) error
	GetPendingByEmailToken(ctx context.Context, token string) (*Request, error)
	ListPending(ctx context.Context, methods []Method, limit int) ([]Request, error)

	AppendHistory(ctx context.Context, record *History) error
}

type postgresRepository struct {
	db *gorm.DB
}

// NewRepository creates the verification repository.
func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateSuperseding(ctx context.Context, req *Request) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cancelled := tx.Model(&Request{}).
			Where("domain_id = ? AND status = ?", req.DomainID, StatusPending).
			Update("status", StatusCancelled)
		if cancelled.Error != nil {
			return fmt.Errorf("failed to cancel prior pending request: %w", cancelled.Error)
		}
		if err := tx.Create(req).Error; err != nil {
			return fmt.Errorf("failed to create verification request: %w", err)
		}
		return nil
	})
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}
	return &req, nil
}

func (r *postgresRepository) TransitionFromPending(ctx context.Context, id uuid.UUID, newStatus string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Request{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", newStatus)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition verification status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *postgresRepository) UpdateData(ctx context.Context, id uuid.UUID, data datatypes.JSON) error {
	result := r.db.WithContext(ctx).Model(&Request{}).
		Where("id = ?", id).
		Update("verification_data", data)
	if result.Error != nil {
		return fmt.Errorf("failed to update verification data: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) GetPendingByEmailToken(ctx context.Context, token string) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).
		Where("method = ? AND status = ? AND verification_data ->> 'token' = ?", MethodEmail, StatusPending, token).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up email token: %w", err)
	}
	return &req, nil
}

func (r *postgresRepository) ListPending(ctx context.Context, methods []Method, limit int) ([]Request, error) {
	var result []Request
	query := r.db.WithContext(ctx).Where("status = ?", StatusPending)
	if len(methods) > 0 {
		query = query.Where("method IN ?", methods)
	}
	if err := query.Order("created_at ASC").Limit(limit).Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return result, nil
}

func (r *postgresRepository) AppendHistory(ctx context.Context, record *History) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to append verification history: %w", err)
	}
	return nil
}
