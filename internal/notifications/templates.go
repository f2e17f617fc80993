package notifications

import (
	"bytes"
	"fmt"
	"html/template"
)

// Email templates are pure: event data in, HTML string out. html/template
// escapes user-supplied strings (domain names, offer messages) on
// interpolation.

var emailTemplates = map[string]*template.Template{
	// Buyer-facing confirmation after submitting an offer.
	"offer_submitted": template.Must(template.New("offer_submitted").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a1a2e;">Your offer was submitted</h2>
  <p>You offered <strong>{{.amount}} {{.currency}}</strong> for <strong>{{.domain_name}}</strong>.</p>
  {{if .message}}<p>Your message to the seller:</p><blockquote style="border-left: 3px solid #ccc; padding-left: 12px; color: #555;">{{.message}}</blockquote>{{end}}
  <p>The seller has been notified and will respond through the marketplace.</p>
  <p style="color: #888; font-size: 12px;">You are receiving this because you made an offer on DomainMarket.</p>
</div>`)),

	// Seller-facing alert for a new incoming offer.
	"offer_received": template.Must(template.New("offer_received").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a1a2e;">New offer on {{.domain_name}}</h2>
  <p>A buyer offered <strong>{{.amount}} {{.currency}}</strong> for your domain <strong>{{.domain_name}}</strong>.</p>
  {{if .message}}<p>Buyer's message:</p><blockquote style="border-left: 3px solid #ccc; padding-left: 12px; color: #555;">{{.message}}</blockquote>{{end}}
  <p><a href="{{.action_url}}" style="background: #16213e; color: #fff; padding: 10px 18px; text-decoration: none; border-radius: 4px;">Review offer</a></p>
</div>`)),

	"offer_accepted": template.Must(template.New("offer_accepted").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a7f37;">Offer accepted</h2>
  <p>The seller accepted your offer of <strong>{{.amount}} {{.currency}}</strong> for <strong>{{.domain_name}}</strong>.</p>
  <p>Continue to the marketplace to complete the transfer.</p>
</div>`)),

	"offer_rejected": template.Must(template.New("offer_rejected").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #b42318;">Offer declined</h2>
  <p>The seller declined your offer of <strong>{{.amount}} {{.currency}}</strong> for <strong>{{.domain_name}}</strong>.</p>
  <p>You can submit a new offer at any time.</p>
</div>`)),

	"verification_approved": template.Must(template.New("verification_approved").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a7f37;">Domain verified</h2>
  <p>Ownership of <strong>{{.domain_name}}</strong> has been verified. Your listing now carries the verified badge.</p>
</div>`)),

	"verification_rejected": template.Must(template.New("verification_rejected").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #b42318;">Verification rejected</h2>
  <p>The verification request for <strong>{{.domain_name}}</strong> was rejected.</p>
  {{if .reason}}<p>Reason: {{.reason}}</p>{{end}}
  <p>You can start a new verification from your listing dashboard.</p>
</div>`)),

	"verification_email_sent": template.Must(template.New("verification_email_sent").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a1a2e;">Confirm ownership of {{.domain_name}}</h2>
  <p>Click the link below to confirm you control this domain's mailbox.</p>
  <p><a href="{{.confirm_url}}" style="background: #16213e; color: #fff; padding: 10px 18px; text-decoration: none; border-radius: 4px;">Confirm ownership</a></p>
  <p style="color: #888; font-size: 12px;">If you did not request this, you can ignore this email.</p>
</div>`)),
}

// genericTemplate backs every event type without a dedicated template.
// Unknown types must render, not crash.
var genericTemplate = template.Must(template.New("generic").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a1a2e;">{{.title}}</h2>
  <p>{{.message}}</p>
  {{if .action_url}}<p><a href="{{.action_url}}">View details</a></p>{{end}}
</div>`))

var emailSubjects = map[string]string{
	"offer_submitted":         "Your offer was submitted",
	"offer_received":          "You received a new offer",
	"offer_accepted":          "Your offer was accepted",
	"offer_rejected":          "Your offer was declined",
	"verification_approved":   "Your domain has been verified",
	"verification_rejected":   "Domain verification rejected",
	"verification_email_sent": "Confirm your domain ownership",
}

// RenderEmail renders the HTML email body and subject for an event type.
// Types without a dedicated template fall back to the generic one.
func RenderEmail(eventType string, data map[string]any) (subject, html string, err error) {
	tmpl, ok := emailTemplates[eventType]
	if !ok {
		tmpl = genericTemplate
	}

	subject, ok = emailSubjects[eventType]
	if !ok {
		subject = "DomainMarket notification"
	}
	if override, ok := data["subject"].(string); ok && override != "" {
		subject = override
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %q template: %w", eventType, err)
	}
	return subject, buf.String(), nil
}
