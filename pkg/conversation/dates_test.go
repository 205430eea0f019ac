package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDateRange(t *testing.T) {
	msg, err := FormatDateRange("2025-01-01", "")
	assert.NoError(t, err)
	assert.Equal(t, "2025-01-01", msg)

	msg, err = FormatDateRange("2025-01-01", "2025-01-05")
	assert.NoError(t, err)
	assert.Equal(t, "2025-01-01 to 2025-01-05", msg)
}

func TestFormatDateRangeRejectsMissingStart(t *testing.T) {
	_, err := FormatDateRange("", "2025-01-05")
	assert.ErrorIs(t, err, ErrMissingStartDate)
}

func TestFormatDateRangeRejectsGarbage(t *testing.T) {
	_, err := FormatDateRange("not-a-date", "")
	assert.Error(t, err)

	_, err = FormatDateRange("2025-01-01", "05-01-2025")
	assert.Error(t, err)
}
