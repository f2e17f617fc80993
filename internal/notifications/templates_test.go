package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEmailOfferReceived(t *testing.T) {
	subject, html, err := RenderEmail("offer_received", map[string]any{
		"domain_name": "example.com",
		"amount":      2500,
		"currency":    "USD",
		"message":     "Would you take less?",
		"action_url":  "/dashboard/offers",
	})

	assert.NoError(t, err)
	assert.Equal(t, "You received a new offer", subject)
	assert.Contains(t, html, "example.com")
	assert.Contains(t, html, "2500")
	assert.Contains(t, html, "Would you take less?")
	assert.Contains(t, html, "/dashboard/offers")
}

func TestRenderEmailEscapesUserInput(t *testing.T) {
	_, html, err := RenderEmail("offer_received", map[string]any{
		"domain_name": "<script>alert(1)</script>",
		"amount":      100,
		"currency":    "USD",
		"message":     `"><img src=x onerror=alert(1)>`,
	})

	assert.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<img src=x")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderEmailUnknownTypeUsesGeneric(t *testing.T) {
	subject, html, err := RenderEmail("made_up_event", map[string]any{
		"title":   "Something happened",
		"message": "Details inside.",
	})

	assert.NoError(t, err)
	assert.Equal(t, "DomainMarket notification", subject)
	assert.Contains(t, html, "Something happened")
	assert.Contains(t, html, "Details inside.")
}

func TestRenderEmailSubjectOverride(t *testing.T) {
	subject, _, err := RenderEmail("offer_accepted", map[string]any{
		"subject":     "Congrats!",
		"domain_name": "example.com",
		"amount":      100,
		"currency":    "USD",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Congrats!", subject)
}

func TestRenderEmailConfirmationLink(t *testing.T) {
	_, html, err := RenderEmail("verification_email_sent", map[string]any{
		"domain_name": "example.com",
		"confirm_url": "https://market.example/api/v1/verifications/confirm/abc123",
	})

	assert.NoError(t, err)
	assert.Contains(t, html, "confirm/abc123")
	assert.Contains(t, html, "Confirm ownership")
}
