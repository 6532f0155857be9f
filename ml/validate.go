package ml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var (
	// ErrMissingField is returned when an input field is empty.
	ErrMissingField = errors.New("missing field")
	// ErrParse is returned when an input field is not a finite decimal number.
	ErrParse = errors.New("not a number")
	// ErrFieldCount is returned when the number of inputs is not NumFeatures.
	ErrFieldCount = errors.New("wrong number of fields")
)

// ValidationError reports the first input that failed validation.
type ValidationError struct {
	Index int
	Field Field
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrMissingField) {
		return fmt.Sprintf("%s: %v", e.Field.Name, e.Err)
	}
	return fmt.Sprintf("%s: %q: %v", e.Field.Name, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func errFeatureLength(n int) error {
	return fmt.Errorf("%w: got %d, want %d", ErrFieldCount, n, NumFeatures)
}

// ParseFeatures turns the raw form inputs into a FeatureVector.
// Only plain decimal notation (optional sign, fraction and exponent) is accepted;
// hexadecimal literals, digit separators and non-finite values are parse errors.
// Inputs must be in FeatureNames order. The first empty input yields ErrMissingField
// and the first unparseable one yields ErrParse; all inputs are checked for emptiness
// before any is parsed.
func ParseFeatures(raw []string) (FeatureVector, error) {
	var v FeatureVector
	if len(raw) != NumFeatures {
		return v, errFeatureLength(len(raw))
	}

	cleaned := make([]string, NumFeatures)
	for i, s := range raw {
		cleaned[i] = normalizeInput(s)
		if cleaned[i] == "" {
			return v, &ValidationError{Index: i, Field: fields[i], Value: raw[i], Err: ErrMissingField}
		}
	}

	for i, s := range cleaned {
		if strings.ContainsAny(s, "xXpP_") {
			return v, &ValidationError{Index: i, Field: fields[i], Value: raw[i], Err: ErrParse}
		}
		value, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return v, &ValidationError{Index: i, Field: fields[i], Value: raw[i], Err: ErrParse}
		}
		v[i] = value
	}
	return v, nil
}

// ParseNamedFeatures is ParseFeatures for inputs keyed by Field.Key.
// Absent keys count as empty inputs; unknown keys are ignored.
func ParseNamedFeatures(values map[string]string) (FeatureVector, error) {
	raw := make([]string, NumFeatures)
	for i, f := range fields {
		raw[i] = values[f.Key]
	}
	return ParseFeatures(raw)
}

// normalizeInput folds full-width characters (e.g. "１２．５") to their ASCII forms.
func normalizeInput(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}
