// pkg/registry/schema.go
package registry

type ActivityRegistry struct {
	Version     string     `json:"version" yaml:"version"`
	LastUpdated string     `json:"lastUpdated" yaml:"lastUpdated"`
	Activities  []Activity `json:"activities" yaml:"activities"`
}

type Activity struct {
	ID          string                 `json:"id" yaml:"id"`
	DisplayName string                 `json:"displayName" yaml:"displayName"`
	Description string                 `json:"description" yaml:"description"`
	Category    string                 `json:"category" yaml:"category"`
	Version     string                 `json:"version" yaml:"version"`
	TaskType    string                 `json:"taskType" yaml:"taskType"`
	InputSchema map[string]interface{} `json:"inputSchema" yaml:"inputSchema"`
	ErrorCodes  []string               `json:"errorCodes" yaml:"errorCodes"`
	Timeout     string                 `json:"timeout" yaml:"timeout"`
	Retries     int                    `json:"retries" yaml:"retries"`
	Tags        []string               `json:"tags" yaml:"tags"`
}
