package intent

import "keyword-intelligence/internal/models"

var contentFormats = map[models.Intent][]string{
	models.IntentInformational: {"how-to guide", "blog post", "FAQ page", "video tutorial"},
	models.IntentNavigational:  {"brand landing page", "login or account page", "contact page"},
	models.IntentCommercial:    {"comparison article", "product review", "best-of list", "buyer's guide"},
	models.IntentTransactional: {"product page", "pricing page", "category page", "checkout landing page"},
}

// Recommendations lists content formats that fit an intent.
func Recommendations(intent models.Intent) []string {
	return append([]string(nil), contentFormats[intent]...)
}
