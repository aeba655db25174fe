package records

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Client-facing validation messages.
const (
	msgNameEmpty      = "Patient name cannot be empty"
	msgContactDigits  = "Contact must be 10 digits"
	msgAgeRange       = "Age must be between 0-150"
	msgAgeFormat      = "Invalid age format"
	msgMetricPositive = "Weight and height must be positive"
)

const (
	minAge = 0
	maxAge = 150
)

var contactPattern = regexp.MustCompile(`^[0-9]{10}$`)

// validateName requires at least one non-whitespace character.
func validateName(name string) error {
	return check(strings.TrimSpace(name), validation.Required.Error(msgNameEmpty))
}

// validateContact requires exactly ten ASCII digits.
func validateContact(contact string) error {
	return check(contact,
		validation.Required.Error(msgContactDigits),
		validation.Match(contactPattern).Error(msgContactDigits),
	)
}

func validateAge(age int) error {
	return check(age,
		validation.Min(minAge).Error(msgAgeRange),
		validation.Max(maxAge).Error(msgAgeRange),
	)
}

func validateMeasurements(weight, height float64) error {
	positive := []validation.Rule{
		validation.Required.Error(msgMetricPositive),
		validation.Min(0.0).Exclusive().Error(msgMetricPositive),
	}
	if err := check(weight, positive...); err != nil {
		return err
	}
	return check(height, positive...)
}

// check runs ozzo rules against value and converts the first failure into
// an InputError so the API boundary reports it as a 400.
func check(value interface{}, rules ...validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return invalidInput(err.Error())
	}
	return nil
}

// parseAge accepts a JSON number, truncated to an integer, or a string
// holding an integer.
func parseAge(raw json.RawMessage) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, invalidInput(msgAgeFormat)
	}

	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return clampInt(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, invalidInput(msgAgeFormat)
		}
		// Fractional ages are truncated toward zero: 30.7 is 30.
		f = math.Trunc(f)
		if f > math.MaxInt32 || f < math.MinInt32 {
			return 0, invalidInput(msgAgeRange)
		}
		return int(f), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, invalidInput(msgAgeFormat)
		}
		return n, nil
	default:
		return 0, invalidInput(msgAgeFormat)
	}
}

// clampInt keeps out-of-range integers out of range after conversion so
// validateAge still rejects them on 32-bit platforms.
func clampInt(n int64) int {
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	default:
		return int(n)
	}
}
