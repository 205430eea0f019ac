package conversation

import (
	"errors"
	"fmt"
	"time"
)

var ErrMissingStartDate = errors.New("a start date is required")

const dateLayout = "2006-01-02"

// FormatDateRange renders a confirmed date selection as the message text
// sent to the assistant: "YYYY-MM-DD" for a single date, or
// "YYYY-MM-DD to YYYY-MM-DD" when an end date is present. An empty start
// date is rejected before any request is made.
func FormatDateRange(start, end string) (string, error) {
	if start == "" {
		return "", ErrMissingStartDate
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		return "", fmt.Errorf("invalid start date %q: %w", start, err)
	}
	if end == "" {
		return start, nil
	}
	if _, err := time.Parse(dateLayout, end); err != nil {
		return "", fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return start + " to " + end, nil
}
