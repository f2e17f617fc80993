package listings

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus is the marketplace lifecycle status of a listing.
type ListingStatus string

const (
	StatusAvailable           ListingStatus = "available"
	StatusPendingVerification ListingStatus = "pending_verification"
	StatusSold                ListingStatus = "sold"
	StatusSuspended           ListingStatus = "suspended"
)

// VerificationStatus mirrors the most recent verification request's status.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// Listing is a domain name offered for sale.
type Listing struct {
	ID                 uuid.UUID          `json:"id" gorm:"primaryKey;type:uuid"`
	DomainName         string             `json:"domain_name" gorm:"not null;uniqueIndex"`
	OwnerID            uuid.UUID          `json:"owner_id" gorm:"type:uuid;not null;index"`
	OwnerEmail         string             `json:"owner_email" gorm:"not null"`
	Price              int64              `json:"price" gorm:"not null"`
	Currency           string             `json:"currency" gorm:"default:'USD'"`
	Description        string             `json:"description"`
	Status             ListingStatus      `json:"status" gorm:"default:'available';index"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"default:'unverified'"`
	IsVerified         bool               `json:"is_verified" gorm:"default:false"`
	CreatedAt          time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the GORM default.
func (Listing) TableName() string { return "domain_listings" }

// ListingView is a per-listing analytics row, removed alongside the listing.
type ListingView struct {
	ID       uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	DomainID uuid.UUID `json:"domain_id" gorm:"type:uuid;not null;index"`
	ViewerID *uuid.UUID `json:"viewer_id" gorm:"type:uuid"`
	ViewedAt time.Time `json:"viewed_at" gorm:"autoCreateTime"`
}

func (ListingView) TableName() string { return "domain_analytics" }

// Favorite marks a listing saved by a user.
type Favorite struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	DomainID  uuid.UUID `json:"domain_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Favorite) TableName() string { return "domain_favorites" }

// CreateRequest is the payload for creating a listing.
type CreateRequest struct {
	DomainName  string `json:"domain_name" binding:"required"`
	Price       int64  `json:"price" binding:"required"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}
