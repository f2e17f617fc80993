package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"domainmarket/marketplace-backend/pkg/email"
)

// Pusher delivers realtime payloads to a connected user. Push is
// best-effort; a disconnected user just reads the row later.
type Pusher interface {
	SendToUser(userID string, payload any) error
}

// Dispatcher is the single entry point turning business events into an
// in-app notification row plus a best-effort transactional email.
type Dispatcher struct {
	store  Store
	sender email.Sender
	pusher Pusher
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher. sender and pusher may be nil, which
// disables the corresponding side effect (used in tests and local setups).
func NewDispatcher(store Store, sender email.Sender, pusher Pusher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{store: store, sender: sender, pusher: pusher, logger: logger}
}

// Dispatch classifies the event, sends the email and inserts the in-app
// row. The email and the row are independent side effects: email failure is
// dead-lettered and logged but never blocks the write, and the caller sees
// success as long as the row landed. event.Data is never mutated, so one
// map can safely back several dispatches.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	data := make(map[string]any, len(event.Data)+3)
	for k, v := range event.Data {
		data[k] = v
	}

	category := Classify(event.Type)
	title, actionURL := DefaultsFor(category)
	if override, ok := data["title"].(string); ok && override != "" {
		title = override
	}
	if override, ok := data["action_url"].(string); ok && override != "" {
		actionURL = override
	}
	data["title"] = title
	if _, ok := data["action_url"]; !ok {
		data["action_url"] = actionURL
	}

	message := defaultMessage(event.Type, data)
	if override, ok := data["notification_message"].(string); ok && override != "" {
		message = override
	}
	// "message" stays reserved for template payloads (a buyer's note, a
	// rejection reason); only the generic template falls back to the
	// computed in-app message.
	if _, ok := data["message"]; !ok {
		data["message"] = message
	}

	if event.RecipientEmail != "" && d.sender != nil {
		d.sendEmail(ctx, event.Type, event.RecipientEmail, data)
	}

	notification := &Notification{
		UserID:    event.UserID,
		Title:     title,
		Message:   message,
		Type:      category,
		RelatedID: event.RelatedID,
		ActionURL: actionURL,
	}
	if err := d.store.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist notification for event %q: %w", event.Type, err)
	}

	if d.pusher != nil {
		if err := d.pusher.SendToUser(event.UserID.String(), notification); err != nil {
			d.logger.Debug("websocket push skipped",
				zap.String("event_type", event.Type),
				zap.String("user_id", event.UserID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// sendEmail renders and sends the email; failures go to the dead-letter
// table and the log, never to the caller.
func (d *Dispatcher) sendEmail(ctx context.Context, eventType, recipient string, data map[string]any) {
	subject, html, err := RenderEmail(eventType, data)
	if err != nil {
		d.logger.Error("email template rendering failed",
			zap.String("event_type", eventType),
			zap.Error(err))
		return
	}

	_, err = d.sender.Send(ctx, email.Message{
		To:      []string{recipient},
		Subject: subject,
		HTML:    html,
	})
	if err == nil {
		return
	}

	d.logger.Warn("transactional email failed, dead-lettering",
		zap.String("event_type", eventType),
		zap.String("recipient", recipient),
		zap.Error(err))

	payload, _ := json.Marshal(data)
	dl := &EmailDeadLetter{
		Recipient:     recipient,
		Subject:       subject,
		BodyHTML:      html,
		EventType:     eventType,
		ProviderError: err.Error(),
		Payload:       datatypes.JSON(payload),
	}
	if dlErr := d.store.CreateDeadLetter(ctx, dl); dlErr != nil {
		d.logger.Error("failed to write email dead letter", zap.Error(dlErr))
	}
}

func defaultMessage(eventType string, data map[string]any) string {
	domain, _ := data["domain_name"].(string)
	switch eventType {
	case "offer_submitted":
		return fmt.Sprintf("Your offer on %s was submitted to the seller.", domain)
	case "offer_received":
		return fmt.Sprintf("You received a new offer on %s.", domain)
	case "offer_accepted":
		return fmt.Sprintf("Your offer on %s was accepted.", domain)
	case "offer_rejected":
		return fmt.Sprintf("Your offer on %s was declined.", domain)
	case "verification_started":
		return fmt.Sprintf("Verification for %s has started.", domain)
	case "verification_approved":
		return fmt.Sprintf("Ownership of %s has been verified.", domain)
	case "verification_rejected":
		return fmt.Sprintf("The verification request for %s was rejected.", domain)
	case "verification_email_sent":
		return fmt.Sprintf("A confirmation email was sent for %s.", domain)
	default:
		return "You have a new notification."
	}
}
