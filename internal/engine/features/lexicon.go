package features

import "keyword-intelligence/internal/models"

// WeightedPattern is a word or phrase that signals an intent.
type WeightedPattern struct {
	Text   string  `json:"text" yaml:"text"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Lexicon maps each intent to the patterns that score it.
type Lexicon map[models.Intent][]WeightedPattern

// DefaultLexicon is the bundled rule-pattern baseline. It is always available,
// so classification keeps working before any model has been trained.
func DefaultLexicon() Lexicon {
	return Lexicon{
		models.IntentInformational: {
			{"how to", 1.5}, {"what is", 1.5}, {"what are", 1.5}, {"ways to", 1.0},
			{"difference between", 1.0}, {"how", 1.0}, {"what", 1.0}, {"why", 1.0},
			{"when", 0.75}, {"who", 0.75}, {"where", 0.5}, {"which", 0.5},
			{"guide", 1.0}, {"tutorial", 1.0}, {"tips", 1.0}, {"learn", 1.0},
			{"meaning", 1.0}, {"definition", 1.0}, {"define", 1.0}, {"examples", 1.0},
			{"example", 0.75}, {"ideas", 0.75}, {"explained", 1.0}, {"benefits", 0.75},
			{"history", 0.75}, {"improve", 0.5},
		},
		models.IntentNavigational: {
			{"login", 1.5}, {"log in", 1.5}, {"sign in", 1.5}, {"signin", 1.5},
			{"website", 1.0}, {"official", 1.0}, {"homepage", 1.0}, {"home page", 1.0},
			{"portal", 1.0}, {"dashboard", 0.75}, {"account", 0.75}, {"contact us", 1.0},
			{"customer service", 1.0}, {"app", 0.5}, {"www", 1.0}, {"com", 1.0},
			{"facebook", 1.0}, {"youtube", 1.0}, {"amazon", 1.0}, {"google", 1.0},
			{"gmail", 1.0}, {"twitter", 1.0}, {"instagram", 1.0}, {"linkedin", 1.0},
			{"netflix", 1.0}, {"reddit", 1.0}, {"wikipedia", 1.0}, {"github", 1.0},
		},
		models.IntentCommercial: {
			{"best", 1.5}, {"top", 1.0}, {"review", 1.5}, {"reviews", 1.5},
			{"vs", 1.5}, {"versus", 1.5}, {"compare", 1.5}, {"comparison", 1.5},
			{"alternative", 1.25}, {"alternatives", 1.25}, {"better than", 1.25},
			{"rating", 1.0}, {"ratings", 1.0}, {"ranked", 1.0}, {"pros", 1.0},
			{"cons", 1.0}, {"worth it", 1.0}, {"recommended", 1.0}, {"features", 0.5},
		},
		models.IntentTransactional: {
			{"buy", 1.5}, {"purchase", 1.5}, {"order", 1.25}, {"price", 1.25},
			{"prices", 1.25}, {"pricing", 1.25}, {"cost", 1.0}, {"cheap", 1.0},
			{"cheapest", 1.0}, {"discount", 1.25}, {"coupon", 1.5}, {"promo code", 1.5},
			{"deal", 1.0}, {"deals", 1.0}, {"sale", 1.0}, {"for sale", 1.5},
			{"shop", 1.0}, {"subscribe", 1.0}, {"free trial", 1.25}, {"download", 1.0},
			{"hire", 1.0}, {"book", 0.75}, {"booking", 1.0}, {"quote", 0.75},
			{"rent", 1.0}, {"near me", 0.75}, {"delivery", 0.75},
		},
	}
}

type markerKind int

const (
	markerQuestion markerKind = iota
	markerAction
	markerModifier
	markerComparison
	markerSuperlative
	markerLocal
	markerBrand
)

var markerPhrases = map[markerKind][]string{
	markerQuestion: {"how", "what", "why", "when", "where", "who", "which", "whose"},
	markerAction: {
		"buy", "purchase", "order", "download", "subscribe", "hire", "book", "get",
		"install", "sign up", "register", "compare", "learn", "find", "try", "rent", "shop",
	},
	markerModifier: {
		"best", "top", "cheap", "cheapest", "free", "affordable", "premium", "online",
		"latest", "new", "easy", "quick", "fast", "professional", "local", "official",
	},
	markerComparison: {
		"vs", "versus", "compare", "comparison", "better than", "difference between",
		"alternative", "alternatives",
	},
	markerSuperlative: {
		"best", "top", "cheapest", "fastest", "easiest", "greatest", "most", "largest",
		"biggest", "highest", "lowest",
	},
	markerLocal: {"near me", "nearby", "near", "local", "open now", "directions", "hours"},
	markerBrand: {
		"www", "com", "facebook", "youtube", "amazon", "google", "gmail", "twitter",
		"instagram", "linkedin", "netflix", "reddit", "wikipedia", "github",
	},
}

// leadingQuestionWords only count as questions at the start of a keyword.
var leadingQuestionWords = map[string]struct{}{
	"can": {}, "does": {}, "do": {}, "is": {}, "are": {}, "should": {}, "will": {},
}
