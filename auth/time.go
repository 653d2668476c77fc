package auth

import (
	"time"

	"github.com/goliatone/go-errors"
)

// IsWithinThresholdPeriod reports whether t happened after now minus
// the duration expressed by expr (e.g. "24h", "2h30m")
func IsWithinThresholdPeriod(t time.Time, expr string) (bool, error) {
	threshold, err := time.ParseDuration(expr)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryBadInput, "invalid threshold expression").
			WithMetadata(map[string]any{"expression": expr})
	}
	return t.After(time.Now().Add(-threshold)), nil
}

// IsOutsideThresholdPeriod is the complement of IsWithinThresholdPeriod
func IsOutsideThresholdPeriod(t time.Time, expr string) (bool, error) {
	within, err := IsWithinThresholdPeriod(t, expr)
	if err != nil {
		return false, err
	}
	return !within, nil
}
