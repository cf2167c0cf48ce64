package intent

import (
	"sync"
	"time"

	"keyword-intelligence/internal/models"
)

const DefaultModelVersion = "default-1"

// seedCorpus bootstraps the learned scorers so a fresh process classifies with
// all three scorers before its first training run.
var seedCorpus = []models.TrainingDataPoint{
	{Keyword: "how to start a blog", Intent: models.IntentInformational},
	{Keyword: "what is keyword research", Intent: models.IntentInformational},
	{Keyword: "how does google rank pages", Intent: models.IntentInformational},
	{Keyword: "why is my website slow", Intent: models.IntentInformational},
	{Keyword: "seo tips for beginners", Intent: models.IntentInformational},
	{Keyword: "guide to content marketing", Intent: models.IntentInformational},
	{Keyword: "what is a backlink", Intent: models.IntentInformational},
	{Keyword: "how to write meta descriptions", Intent: models.IntentInformational},
	{Keyword: "learn html basics", Intent: models.IntentInformational},
	{Keyword: "definition of domain authority", Intent: models.IntentInformational},
	{Keyword: "examples of long tail keywords", Intent: models.IntentInformational},
	{Keyword: "when to update old content", Intent: models.IntentInformational},

	{Keyword: "facebook login", Intent: models.IntentNavigational},
	{Keyword: "gmail sign in", Intent: models.IntentNavigational},
	{Keyword: "youtube official website", Intent: models.IntentNavigational},
	{Keyword: "amazon seller central login", Intent: models.IntentNavigational},
	{Keyword: "google search console", Intent: models.IntentNavigational},
	{Keyword: "github account", Intent: models.IntentNavigational},
	{Keyword: "linkedin homepage", Intent: models.IntentNavigational},
	{Keyword: "netflix customer service", Intent: models.IntentNavigational},
	{Keyword: "wordpress dashboard login", Intent: models.IntentNavigational},
	{Keyword: "ahrefs website", Intent: models.IntentNavigational},
	{Keyword: "semrush login", Intent: models.IntentNavigational},
	{Keyword: "moz pro app", Intent: models.IntentNavigational},

	{Keyword: "best seo tools", Intent: models.IntentCommercial},
	{Keyword: "top keyword research tools", Intent: models.IntentCommercial},
	{Keyword: "ahrefs vs semrush", Intent: models.IntentCommercial},
	{Keyword: "best web hosting for small business", Intent: models.IntentCommercial},
	{Keyword: "seo software reviews", Intent: models.IntentCommercial},
	{Keyword: "mailchimp alternatives", Intent: models.IntentCommercial},
	{Keyword: "compare crm platforms", Intent: models.IntentCommercial},
	{Keyword: "best laptop for programming", Intent: models.IntentCommercial},
	{Keyword: "top rated website builders", Intent: models.IntentCommercial},
	{Keyword: "shopify vs woocommerce comparison", Intent: models.IntentCommercial},
	{Keyword: "best vpn reviews", Intent: models.IntentCommercial},
	{Keyword: "wix alternatives worth it", Intent: models.IntentCommercial},

	{Keyword: "buy domain name", Intent: models.IntentTransactional},
	{Keyword: "cheap web hosting", Intent: models.IntentTransactional},
	{Keyword: "seo software pricing", Intent: models.IntentTransactional},
	{Keyword: "buy backlinks", Intent: models.IntentTransactional},
	{Keyword: "ahrefs discount code", Intent: models.IntentTransactional},
	{Keyword: "order business cards online", Intent: models.IntentTransactional},
	{Keyword: "hire seo consultant", Intent: models.IntentTransactional},
	{Keyword: "wordpress theme download", Intent: models.IntentTransactional},
	{Keyword: "semrush free trial", Intent: models.IntentTransactional},
	{Keyword: "buy seo audit", Intent: models.IntentTransactional},
	{Keyword: "cheap ssl certificate", Intent: models.IntentTransactional},
	{Keyword: "web hosting coupon", Intent: models.IntentTransactional},
}

var defaultModel = sync.OnceValue(func() *Model {
	return fit(seedCorpus, DefaultModelVersion, time.Time{})
})

// DefaultModel returns the bootstrap model fitted on the bundled seed corpus.
func DefaultModel() *Model {
	return defaultModel()
}
