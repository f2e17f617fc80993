package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Category is the in-app notification category. UI badge coloring and
// default titles key off these four values.
type Category string

const (
	CategorySystem       Category = "system"
	CategoryOffer        Category = "offer"
	CategoryVerification Category = "verification"
	CategoryTransaction  Category = "transaction"
)

// Notification is a persisted in-app notification row.
type Notification struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title     string     `json:"title" gorm:"not null"`
	Message   string     `json:"message" gorm:"not null"`
	Type      Category   `json:"type" gorm:"not null"`
	IsRead    bool       `json:"is_read" gorm:"default:false;index"`
	RelatedID *uuid.UUID `json:"related_id" gorm:"type:uuid"`
	ActionURL string     `json:"action_url"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the GORM default.
func (Notification) TableName() string { return "notifications" }

// EmailDeadLetter records a failed transactional email so operators can
// detect provider outages and the worker can retry delivery. Email failure
// never blocks the in-app notification write.
type EmailDeadLetter struct {
	ID            uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	Recipient     string         `json:"recipient" gorm:"not null"`
	Subject       string         `json:"subject" gorm:"not null"`
	BodyHTML      string         `json:"body_html" gorm:"not null"`
	EventType     string         `json:"event_type" gorm:"not null;index"`
	ProviderError string         `json:"provider_error"`
	Payload       datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
	RetriedAt     *time.Time     `json:"retried_at"`
}

func (EmailDeadLetter) TableName() string { return "email_dead_letters" }

// Event is one business event to dispatch. It is constructed per dispatch
// call and never persisted as its own entity.
type Event struct {
	// Type is the event tag, e.g. "offer_accepted" or
	// "verification_approved". Selects the email template and in-app
	// category.
	Type string

	// UserID is the in-app recipient.
	UserID uuid.UUID

	// RecipientEmail is the outbound email address. Empty skips the email
	// side entirely.
	RecipientEmail string

	// RelatedID optionally links the notification to a listing, offer or
	// verification.
	RelatedID *uuid.UUID

	// Data is the template payload. "title" and "action_url" keys override
	// the category defaults; "notification_message" overrides the generated
	// in-app message. "message" belongs to the templates (a buyer's note)
	// and is never treated as an override. Dispatch does not mutate the map.
	Data map[string]any
}
