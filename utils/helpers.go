package utils

import (
	"fmt"
	"time"
)

// ParseTimeRange parses optional RFC3339 start/end query parameters.
// Missing values default to the trailing defaultSpan ending now.
func ParseTimeRange(startParam, endParam string, defaultSpan time.Duration) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endParam != "" {
		end, err = time.Parse(time.RFC3339, endParam)
		if err != nil {
			return start, end, fmt.Errorf("invalid 'end' timestamp: %w", err)
		}
	} else {
		end = time.Now().UTC()
	}

	if startParam != "" {
		start, err = time.Parse(time.RFC3339, startParam)
		if err != nil {
			return start, end, fmt.Errorf("invalid 'start' timestamp: %w", err)
		}
	} else {
		start = end.Add(-defaultSpan)
	}

	if !start.Before(end) {
		return start, end, fmt.Errorf("'start' must be before 'end'")
	}

	return start, end, nil
}
