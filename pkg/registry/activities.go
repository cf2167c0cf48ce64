package registry

const (
	TaskClassifyKeywordIntent       = "classify-keyword-intent"
	TaskClassifyKeywordBatch        = "classify-keyword-batch"
	TaskTrainIntentModel            = "train-intent-model"
	TaskEvaluateIntentModel         = "evaluate-intent-model"
	TaskVerifyIntentClassification  = "verify-intent-classification"
	TaskReviewIntentClassifications = "review-intent-classifications"
	TaskClusterKeywords             = "cluster-keywords"
	TaskDetectCannibalization       = "detect-cannibalization"
)

type schema = map[string]interface{}

var intentEnum = []interface{}{"informational", "navigational", "commercial", "transactional"}

func str(minLength int) schema {
	return schema{"type": "string", "minLength": minLength}
}

var serpSignalsSchema = schema{
	"type": "object",
	"properties": schema{
		"hasFeaturedSnippet": schema{"type": "boolean"},
		"hasPeopleAlsoAsk":   schema{"type": "boolean"},
		"hasShoppingResults": schema{"type": "boolean"},
		"hasLocalPack":       schema{"type": "boolean"},
		"hasKnowledgePanel":  schema{"type": "boolean"},
		"hasSitelinks":       schema{"type": "boolean"},
		"adCount":            schema{"type": "integer", "minimum": 0},
	},
}

var trainingDataSchema = schema{
	"type":     "array",
	"minItems": 1,
	"items": schema{
		"type":     "object",
		"required": []interface{}{"keyword", "intent"},
		"properties": schema{
			"keyword": str(1),
			"intent":  schema{"type": "string", "enum": intentEnum},
		},
	},
}

var searchVolumeSchema = schema{"type": "integer", "minimum": 0}

// Default is the built-in registry for the keyword workers.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-03-01",
		Activities: []Activity{
			{
				ID:          "kw-001",
				DisplayName: "Classify Keyword Intent",
				Description: "Classify one keyword into a search intent, reusing stored results",
				Category:    "intent",
				Version:     "1.0.0",
				TaskType:    TaskClassifyKeywordIntent,
				InputSchema: schema{
					"type":     "object",
					"required": []interface{}{"projectId", "keyword"},
					"properties": schema{
						"projectId":    str(1),
						"keyword":      schema{"type": "string"},
						"searchVolume": searchVolumeSchema,
						"serpSignals":  serpSignalsSchema,
						"useCache":     schema{"type": "boolean"},
					},
				},
				ErrorCodes: []string{"SCHEMA_VALIDATION_FAILED", "STORE_OPERATION_FAILED"},
				Timeout:    "10s",
				Retries:    3,
				Tags:       []string{"intent", "classification"},
			},
			{
				ID:          "kw-002",
				DisplayName: "Classify Keyword Batch",
				Description: "Classify a list of keywords, recomputing every entry",
				Category:    "intent",
				Version:     "1.0.0",
				TaskType:    TaskClassifyKeywordBatch,
				InputSchema: schema{
					"type":     "object",
					"required": []interface{}{"projectId", "keywords"},
					"properties": schema{
						"projectId": str(1),
						"keywords": schema{
							"type":     "array",
							"maxItems": 5000,
							"items": schema{
								"type":     "object",
								"required": []interface{}{"keyword"},
								"properties": schema{
									"keyword":      schema{"type": "string"},
									"searchVolume": searchVolumeSchema,
									"serpSignals":  serpSignalsSchema,
								},
							},
						},
					},
				},
				ErrorCodes: []string{"SCHEMA_VALIDATION_FAILED", "STORE_OPERATION_FAILED"},
				Timeout:    "120s",
				Retries:    3,
				Tags:       []string{"intent", "classification", "batch"},
			},
			{
				ID:          "kw-003",
				DisplayName: "Train Intent Model",
				Description: "Fit a new intent model on labelled keywords and checkpoint it",
				Category:    "model",
				Version:     "1.0.0",
				TaskType:    TaskTrainIntentModel,
				InputSchema: schema{
					"type":       "object",
					"required":   []interface{}{"trainingData"},
					"properties": schema{"trainingData": trainingDataSchema},
				},
				ErrorCodes: []string{"SCHEMA_VALIDATION_FAILED", "INVALID_INPUT", "MODEL_SNAPSHOT_FAILED"},
				Timeout:    "300s",
				Retries:    1,
				Tags:       []string{"intent", "training"},
			},
			{
				ID:          "kw-004",
				DisplayName: "Evaluate Intent Model",
				Description: "Score the current model against labelled keywords",
				Category:    "model",
				Version:     "1.0.0",
				TaskType:    TaskEvaluateIntentModel,
				InputSchema: schema{
					"type":       "object",
					"required":   []interface{}{"testData"},
					"properties": schema{"testData": trainingDataSchema},
				},
				ErrorCodes: []string{"SCHEMA_VALIDATION_FAILED", "INVALID_INPUT"},
				Timeout:    "120s",
				Retries:    1,
				Tags:       []string{"intent", "evaluation"},
			},
			{
				ID:          "kw-005",
				DisplayName: "Verify Intent Classification",
				Description: "Record a human correction of a stored classification",
				Category:    "intent",
				Version:     "1.0.0",
				TaskType:    TaskVerifyIntentClassification,
				InputSchema: schema{
					"type":     "object",
					"required": []interface{}{"classificationId", "correctIntent", "verifiedBy"},
					"properties": schema{
						"classificationId": str(1),
						"correctIntent":    schema{"type": "string", "enum": intentEnum},
						"verifiedBy":       str(1),
					},
				},
				ErrorCodes: []string{"SCHEMA_VALIDATION_FAILED", "CLASSIFICATION_NOT_FOUND", "STORE_OPERATION_FAILED"},
				Timeout:    "10s",
				Retries:    3,
				Tags:       []string{"intent", "review"},
			},
			{
				ID:          "kw-006",
				DisplayName: "Review Intent Classifications",
				Description: "Summarise a project's intent mix and list classifications needing review",
				Category:    "intent",
				Version:     "1.0.0",
				TaskType:    TaskReviewIntentClassifications,
				InputSchema: schema{
					"type":     "object",
					"required": []interface{}{"projectId"},
					"properties": schema{
						"projectId": str(1),
						"intent":    schema{"type": "string", "enum": intentEnum},
						"limit":     schema{"type": "integer", "minimum": 1, "maximum": 1000},
					},
				},
				ErrorCodes: []string{"SCHEMA_VALIDATION_FAILED", "STORE_OPERATION_FAILED"},
				Timeout:    "30s",
				Retries:    3,
				Tags:       []string{"intent", "review", "reporting"},
			},
			{
				ID:          "kw-007",
				DisplayName: "Cluster Keywords",
				Description: "Group a keyword set by semantic, intent, topic or hierarchical similarity",
				Category:    "clustering",
				Version:     "1.0.0",
				TaskType:    TaskClusterKeywords,
				InputSchema: schema{
					"type":     "object",
					"required": []interface{}{"projectId"},
					"properties": schema{
						"projectId": str(1),
						"keywords": schema{
							"type":     "array",
							"items":    schema{"type": "string"},
							"maxItems": 5000,
						},
						"method":         schema{"type": "string"},
						"threshold":      schema{"type": "number", "minimum": 0},
						"minClusterSize": schema{"type": "integer", "minimum": 1},
						"maxClusterSize": schema{"type": "integer", "minimum": 1},
						"numTopics":      schema{"type": "integer", "minimum": 1},
					},
				},
				ErrorCodes: []string{"SCHEMA_VALIDATION_FAILED", "UNSUPPORTED_CLUSTER_METHOD", "INVALID_INPUT", "KEYWORD_SOURCE_FAILED"},
				Timeout:    "120s",
				Retries:    2,
				Tags:       []string{"clustering"},
			},
			{
				ID:          "kw-008",
				DisplayName: "Detect Keyword Cannibalization",
				Description: "Find near-duplicate keywords competing for the same URLs and alert on severe reports",
				Category:    "clustering",
				Version:     "1.0.0",
				TaskType:    TaskDetectCannibalization,
				InputSchema: schema{
					"type":     "object",
					"required": []interface{}{"projectId"},
					"properties": schema{
						"projectId": str(1),
						"rankings": schema{
							"type": "array",
							"items": schema{
								"type":     "object",
								"required": []interface{}{"keyword", "urls"},
								"properties": schema{
									"keyword":      schema{"type": "string"},
									"urls":         schema{"type": "array", "items": schema{"type": "string"}},
									"searchVolume": searchVolumeSchema,
								},
							},
						},
						"similarityThreshold": schema{"type": "number", "minimum": 0, "maximum": 1},
						"urlOverlapThreshold": schema{"type": "number", "minimum": 0, "maximum": 1},
						"notify":              schema{"type": "boolean"},
					},
				},
				ErrorCodes: []string{"SCHEMA_VALIDATION_FAILED", "INVALID_INPUT", "KEYWORD_SOURCE_FAILED", "NOTIFICATION_SEND_FAILED"},
				Timeout:    "120s",
				Retries:    2,
				Tags:       []string{"clustering", "cannibalization", "alerts"},
			},
		},
	}
}
