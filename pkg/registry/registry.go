// Package registry describes the Zeebe task types this service implements
// and the JSON schemas their job variables must satisfy.
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"keyword-intelligence/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrDefault reads the registry at path, falling back to the built-in one
// when the file does not exist.
func LoadOrDefault(path string) (*ActivityRegistry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadRegistry(path)
}

func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	return out
}

// InputSchema returns the schema for taskType. Unknown task types accept any
// object.
func (r *ActivityRegistry) InputSchema(taskType string) map[string]interface{} {
	if a, ok := r.Find(taskType); ok && a.InputSchema != nil {
		return a.InputSchema
	}
	return map[string]interface{}{"type": "object"}
}

// Validate checks that task types are unique and every schema compiles.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.TaskType == "" {
			return fmt.Errorf("activity %q has no task type", a.ID)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("duplicate task type %q", a.TaskType)
		}
		seen[a.TaskType] = true
		if err := validation.CompileSchema(a.InputSchema); err != nil {
			return fmt.Errorf("activity %s: %w", a.TaskType, err)
		}
	}
	return nil
}

func (r *ActivityRegistry) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
