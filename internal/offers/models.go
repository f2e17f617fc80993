package offers

import (
	"time"

	"github.com/google/uuid"
)

// OfferStatus is the lifecycle status of an offer.
type OfferStatus string

const (
	StatusPending   OfferStatus = "pending"
	StatusAccepted  OfferStatus = "accepted"
	StatusRejected  OfferStatus = "rejected"
	StatusWithdrawn OfferStatus = "withdrawn"
)

// Offer is a buyer's bid on a listing.
type Offer struct {
	ID         uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid"`
	DomainID   uuid.UUID   `json:"domain_id" gorm:"type:uuid;not null;index"`
	BuyerID    uuid.UUID   `json:"buyer_id" gorm:"type:uuid;not null;index"`
	BuyerEmail string      `json:"buyer_email" gorm:"not null"`
	SellerID   uuid.UUID   `json:"seller_id" gorm:"type:uuid;not null;index"`
	Amount     int64       `json:"amount" gorm:"not null"`
	Currency   string      `json:"currency" gorm:"default:'USD'"`
	Message    string      `json:"message"`
	Status     OfferStatus `json:"status" gorm:"default:'pending';index"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the GORM default.
func (Offer) TableName() string { return "domain_offers" }

// SubmitRequest is the payload for submitting an offer.
type SubmitRequest struct {
	Amount   int64  `json:"amount" binding:"required"`
	Currency string `json:"currency"`
	Message  string `json:"message"`
}
