package email

import "context"

// Message is an outbound transactional email.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender delivers transactional email. Implementations return the provider
// delivery id on success.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
