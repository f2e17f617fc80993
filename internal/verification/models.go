package verification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Method is the ownership proof mechanism. Immutable once a request is
// created.
type Method string

const (
	MethodDNS   Method = "dns"
	MethodFile  Method = "file"
	MethodHTML  Method = "html"
	MethodEmail Method = "email"
)

// Valid reports whether m is one of the four supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodDNS, MethodFile, MethodHTML, MethodEmail:
		return true
	}
	return false
}

// Status values for a verification request. verified, rejected and
// cancelled are terminal; cancelled marks a pending request superseded by a
// newer one and never reaches the listing owner as a notification.
const (
	StatusPending   = "pending"
	StatusVerified  = "verified"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Request is a durable record of one ownership verification attempt.
type Request struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	DomainID  uuid.UUID      `json:"domain_id" gorm:"type:uuid;not null;index"`
	Method    Method         `json:"method" gorm:"not null"`
	Data      datatypes.JSON `json:"verification_data" gorm:"column:verification_data;type:jsonb;not null"`
	Status    string         `json:"status" gorm:"default:'pending';index"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the GORM default.
func (Request) TableName() string { return "domain_verifications" }

// History is an immutable audit record of verification activity.
type History struct {
	ID             uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	VerificationID uuid.UUID      `json:"verification_id" gorm:"type:uuid;not null;index"`
	DomainID       uuid.UUID      `json:"domain_id" gorm:"type:uuid;not null;index"`
	Action         string         `json:"action" gorm:"not null"`
	Detail         datatypes.JSON `json:"detail" gorm:"type:jsonb"`
	ActorID        *uuid.UUID     `json:"actor_id" gorm:"type:uuid"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (History) TableName() string { return "verification_history" }

// History actions.
const (
	ActionStarted        = "started"
	ActionApproved       = "approved"
	ActionRejected       = "rejected"
	ActionCancelled      = "cancelled"
	ActionCheckPerformed = "check_performed"
	ActionEmailConfirmed = "email_confirmed"
)
