package bridge

import (
	"fmt"
	"math"

	domainerrors "github.com/reglet-dev/lambda-bridge/domain/errors"
)

// GetString safely extracts a string field from an object event.
// Returns the value and true if found and is a string, otherwise returns empty string and false.
func GetString(event Value, key string) (string, bool) {
	v, ok := event.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetInt safely extracts an integer field from an object event.
// Floats holding an integral value are accepted.
func GetInt(event Value, key string) (int64, bool) {
	v, ok := event.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.AsNumber()
	if !ok {
		return 0, false
	}
	if n.IsInteger() {
		return n.Int64()
	}
	f := n.Float64()
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// GetFloat safely extracts a numeric field from an object event as a float64.
func GetFloat(event Value, key string) (float64, bool) {
	v, ok := event.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.AsNumber()
	if !ok {
		return 0, false
	}
	return n.Float64(), true
}

// GetBool safely extracts a bool field from an object event.
func GetBool(event Value, key string) (bool, bool) {
	v, ok := event.Get(key)
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// GetStringSlice safely extracts an array of strings from an object event.
// Returns nil and false if any element is not a string.
func GetStringSlice(event Value, key string) ([]string, bool) {
	v, ok := event.Get(key)
	if !ok {
		return nil, false
	}
	items, ok := v.AsArray()
	if !ok {
		return nil, false
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.AsString()
		if !ok {
			return nil, false
		}
		result = append(result, s)
	}
	return result, true
}

// MustGetString extracts a string field or returns an error.
// Use this when the field is required.
func MustGetString(event Value, key string) (string, error) {
	s, ok := GetString(event, key)
	if !ok {
		return "", &domainerrors.EventError{
			Field: key,
			Err:   fmt.Errorf("required string field '%s' is missing or not a string", key),
		}
	}
	return s, nil
}

// MustGetInt extracts an integer field or returns an error.
func MustGetInt(event Value, key string) (int64, error) {
	i, ok := GetInt(event, key)
	if !ok {
		return 0, &domainerrors.EventError{
			Field: key,
			Err:   fmt.Errorf("required int field '%s' is missing or not an integer", key),
		}
	}
	return i, nil
}

// MustGetBool extracts a bool field or returns an error.
func MustGetBool(event Value, key string) (bool, error) {
	b, ok := GetBool(event, key)
	if !ok {
		return false, &domainerrors.EventError{
			Field: key,
			Err:   fmt.Errorf("required bool field '%s' is missing or not a bool", key),
		}
	}
	return b, nil
}
