// pkg/registry/schema.go
package registry

import (
	"fmt"
	"time"
)

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one job type: its Zeebe task type, the JSON schemas of
// its variables and the error codes it may throw.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// TimeoutDuration parses Timeout ("90s", "2m"), returning fallback when it is
// empty or malformed.
func (a *Activity) TimeoutDuration(fallback time.Duration) time.Duration {
	if a.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Check reports structural problems; schema compilation is left to callers.
func (a *Activity) Check() error {
	switch {
	case a.ID == "":
		return fmt.Errorf("activity without id")
	case a.TaskType == "":
		return fmt.Errorf("activity %s: taskType is required", a.ID)
	case a.Retries < 0:
		return fmt.Errorf("activity %s: retries must not be negative", a.ID)
	}
	if a.Timeout != "" {
		if _, err := time.ParseDuration(a.Timeout); err != nil {
			return fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout)
		}
	}
	return nil
}
