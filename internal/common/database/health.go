package database

import (
	"context"
	"fmt"
	"time"
)

// Checker is a dependency the readiness probe pings.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every checker with a shared timeout and returns the
// failures keyed by checker name.
func CheckAll(ctx context.Context, timeout time.Duration, checkers ...Checker) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failures := make(map[string]error)
	for _, c := range checkers {
		if c == nil {
			continue
		}
		if err := c.Ping(ctx); err != nil {
			failures[c.Name()] = fmt.Errorf("%s: %w", c.Name(), err)
		}
	}
	return failures
}
