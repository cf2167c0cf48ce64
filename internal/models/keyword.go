// internal/models/keyword.go
package models

// Keyword is a normalized, lowercase keyword owned by a project.
type Keyword struct {
	ProjectID    string `json:"projectId"`
	Text         string `json:"text"`
	SearchVolume *int   `json:"searchVolume,omitempty"`
}

// KeywordRanking carries the URLs a keyword currently ranks with.
type KeywordRanking struct {
	Keyword      string   `json:"keyword" yaml:"keyword"`
	URLs         []string `json:"urls" yaml:"urls"`
	SearchVolume *int     `json:"searchVolume,omitempty" yaml:"searchVolume,omitempty"`
}

// SERPSignals are optional result-page observations for a keyword.
type SERPSignals struct {
	HasFeaturedSnippet bool `json:"hasFeaturedSnippet"`
	HasPeopleAlsoAsk   bool `json:"hasPeopleAlsoAsk"`
	HasShoppingResults bool `json:"hasShoppingResults"`
	HasLocalPack       bool `json:"hasLocalPack"`
	HasKnowledgePanel  bool `json:"hasKnowledgePanel"`
	HasSitelinks       bool `json:"hasSitelinks"`
	AdCount            int  `json:"adCount"`
}

// KeywordFeatures is the feature bundle extracted from a keyword.
type KeywordFeatures struct {
	Tokens         []string           `json:"tokens"`
	WordCount      int                `json:"wordCount"`
	CharCount      int                `json:"charCount"`
	QuestionWords  []string           `json:"questionWords"`
	ActionWords    []string           `json:"actionWords"`
	Modifiers      []string           `json:"modifiers"`
	HasQuestion    bool               `json:"hasQuestion"`
	HasAction      bool               `json:"hasAction"`
	HasNumbers     bool               `json:"hasNumbers"`
	HasComparison  bool               `json:"hasComparison"`
	HasSuperlative bool               `json:"hasSuperlative"`
	HasLocalIntent bool               `json:"hasLocalIntent"`
	HasBrandMarker bool               `json:"hasBrandMarker"`
	PatternScores  map[Intent]float64 `json:"patternScores"`
	SERPSignals    *SERPSignals       `json:"serpSignals,omitempty"`
}
