package validation

import (
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// QueryValidator parses request parameters. Empty values yield ok=false so
// callers can apply their own defaults.
type QueryValidator struct {
	loc *time.Location
}

// NewQueryValidator parses dates as local midnight in loc
func NewQueryValidator(loc *time.Location) *QueryValidator {
	if loc == nil {
		loc = time.Local
	}
	return &QueryValidator{loc: loc}
}

// ParseDate parses a YYYY-MM-DD value
func (qv *QueryValidator) ParseDate(field, value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(DateLayout, value, qv.loc)
	if err != nil {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError(field, value, "YYYY-MM-DD")
		return time.Time{}, false, validationError
	}
	return t, true, nil
}

// ParseMonth parses a YYYY-MM value into the first day of the month
func (qv *QueryValidator) ParseMonth(field, value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(MonthLayout, value, qv.loc)
	if err != nil {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError(field, value, "YYYY-MM")
		return time.Time{}, false, validationError
	}
	return t, true, nil
}

// ParseYear parses a four digit year
func (qv *QueryValidator) ParseYear(field, value string) (int, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil || year < 1970 || year > 9999 {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError(field, value, "YYYY")
		return 0, false, validationError
	}
	return year, true, nil
}

// ParseID parses a positive integer identifier
func (qv *QueryValidator) ParseID(field, value string) (int64, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		validationError := NewValidationError()
		validationError.AddInvalidValueError(field, value, "must be a positive integer")
		return 0, false, validationError
	}
	return id, true, nil
}

// ParseLimit parses a result limit in 1..max, returning def when empty
func (qv *QueryValidator) ParseLimit(field, value string, def, max int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 || limit > max {
		validationError := NewValidationError()
		validationError.AddInvalidRangeError(field, value, "must be between 1 and "+strconv.Itoa(max))
		return 0, validationError
	}
	return limit, nil
}

// ValidateDateRange rejects ranges whose end precedes their start
func (qv *QueryValidator) ValidateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !end.Before(start) {
		return nil
	}
	validationError := NewValidationError()
	validationError.AddInvalidRangeError("end_date", end.Format(DateLayout), "must not be before start_date")
	return validationError
}
