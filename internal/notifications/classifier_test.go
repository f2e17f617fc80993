package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownTypes(t *testing.T) {
	assert.Equal(t, CategoryOffer, Classify("offer_submitted"))
	assert.Equal(t, CategoryOffer, Classify("offer_accepted"))
	assert.Equal(t, CategoryVerification, Classify("verification_approved"))
	assert.Equal(t, CategoryVerification, Classify("verification_email_sent"))
	assert.Equal(t, CategoryTransaction, Classify("domain_sold"))
	assert.Equal(t, CategorySystem, Classify("user_invited"))
}

func TestClassifyUnknownTypesFallBackInOrder(t *testing.T) {
	// Substring rules are order-sensitive: "offer" wins before
	// "verification", which wins before "domain_".
	assert.Equal(t, CategoryOffer, Classify("counteroffer_created"))
	assert.Equal(t, CategoryVerification, Classify("reverification_needed"))
	assert.Equal(t, CategoryTransaction, Classify("domain_escrow_opened"))
	// "domain_" matches anywhere in the type, not only as a prefix.
	assert.Equal(t, CategoryTransaction, Classify("expired_domain_sale"))
	assert.Equal(t, CategorySystem, Classify("password_changed"))
	assert.Equal(t, CategorySystem, Classify("x"))
}

func TestClassifyIsTotal(t *testing.T) {
	types := []string{
		"offer_submitted", "verification_rejected", "domain_sold",
		"user_invited", "made_up_event", "domain", "offer", "",
	}
	valid := map[Category]bool{
		CategorySystem: true, CategoryOffer: true,
		CategoryVerification: true, CategoryTransaction: true,
	}
	for _, eventType := range types {
		assert.True(t, valid[Classify(eventType)], "type %q", eventType)
	}
}

func TestDefaultsFor(t *testing.T) {
	title, actionURL := DefaultsFor(CategoryOffer)
	assert.Equal(t, "Offer Update", title)
	assert.Equal(t, "/dashboard/offers", actionURL)

	title, actionURL = DefaultsFor(CategorySystem)
	assert.Equal(t, "Notification", title)
	assert.Equal(t, "/dashboard", actionURL)
}
