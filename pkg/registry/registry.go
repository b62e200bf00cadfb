// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	json "github.com/goccy/go-json"

	"credit-decision-workers/internal/common/validation"
)

//go:embed activities.json
var embeddedActivities []byte

var (
	defaultOnce sync.Once
	defaultReg  *ActivityRegistry
	defaultErr  error
)

// Default returns the registry compiled into the binary. It is parsed once
// and must not be modified by callers.
func Default() (*ActivityRegistry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Parse(embeddedActivities)
	})
	return defaultReg, defaultErr
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Find looks an activity up by its Zeebe task type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// InputSchema compiles the input schema of the activity bound to taskType.
func (r *ActivityRegistry) InputSchema(taskType string) (*validation.Schema, error) {
	act, ok := r.Find(taskType)
	if !ok {
		return nil, fmt.Errorf("activity %q not registered", taskType)
	}
	return validation.CompileSchema(act.InputSchema)
}

// Validate checks naming, uniqueness, timeouts and that every schema compiles.
func (r *ActivityRegistry) Validate() []error {
	var errs []error
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)

	for _, act := range r.Activities {
		if err := validation.ValidateActivityNaming(act.ID); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", act.ID, err))
		}
		if ids[act.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate activity id", act.ID))
		}
		ids[act.ID] = true

		if act.TaskType == "" {
			errs = append(errs, fmt.Errorf("%s: taskType is required", act.ID))
		} else if taskTypes[act.TaskType] {
			errs = append(errs, fmt.Errorf("%s: duplicate taskType %q", act.ID, act.TaskType))
		}
		taskTypes[act.TaskType] = true

		if _, err := act.TimeoutDuration(); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid timeout %q", act.ID, act.Timeout))
		}
		if act.Retries < 0 {
			errs = append(errs, fmt.Errorf("%s: retries must not be negative", act.ID))
		}
		if _, err := validation.CompileSchema(act.InputSchema); err != nil {
			errs = append(errs, fmt.Errorf("%s: inputSchema: %w", act.ID, err))
		}
		if len(act.OutputSchema) > 0 {
			if _, err := validation.CompileSchema(act.OutputSchema); err != nil {
				errs = append(errs, fmt.Errorf("%s: outputSchema: %w", act.ID, err))
			}
		}
	}
	return errs
}
