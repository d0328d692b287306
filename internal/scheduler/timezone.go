package scheduler

import (
	"fmt"
	"time"
)

// LoadLocation resolves a timezone name, UTC when empty
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", name, err)
	}

	return location, nil
}
