package notifications

import "strings"

// knownCategories maps every event type this backend emits onto its in-app
// category. The explicit table avoids ambiguous substring matches as new
// event types get added.
var knownCategories = map[string]Category{
	"offer_submitted":         CategoryOffer,
	"offer_received":          CategoryOffer,
	"offer_accepted":          CategoryOffer,
	"offer_rejected":          CategoryOffer,
	"offer_withdrawn":         CategoryOffer,
	"verification_started":    CategoryVerification,
	"verification_approved":   CategoryVerification,
	"verification_rejected":   CategoryVerification,
	"verification_email_sent": CategoryVerification,
	"domain_sold":             CategoryTransaction,
	"domain_transferred":      CategoryTransaction,
	"user_invited":            CategorySystem,
}

// Classify assigns exactly one category to any non-empty event type. Known
// types resolve through the table; unknown ones fall back to the ordered
// substring rules the UI badge mapping was built around. The rule order
// matters: later rules apply only when earlier ones did not match.
func Classify(eventType string) Category {
	if category, ok := knownCategories[eventType]; ok {
		return category
	}
	switch {
	case strings.Contains(eventType, "offer"):
		return CategoryOffer
	case strings.Contains(eventType, "verification"):
		return CategoryVerification
	case strings.Contains(eventType, "domain_"):
		return CategoryTransaction
	default:
		return CategorySystem
	}
}

type categoryDefaults struct {
	Title     string
	ActionURL string
}

var defaultsByCategory = map[Category]categoryDefaults{
	CategoryOffer:        {Title: "Offer Update", ActionURL: "/dashboard/offers"},
	CategoryVerification: {Title: "Verification Update", ActionURL: "/dashboard/verification"},
	CategoryTransaction:  {Title: "Transaction Update", ActionURL: "/dashboard/transactions"},
	CategorySystem:       {Title: "Notification", ActionURL: "/dashboard"},
}

// DefaultsFor returns the default title and action URL for a category.
func DefaultsFor(category Category) (title, actionURL string) {
	d := defaultsByCategory[category]
	return d.Title, d.ActionURL
}
