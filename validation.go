package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/reglet-dev/lambda-bridge/domain/errors"
	"github.com/reglet-dev/lambda-bridge/domain/value"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeEvent decodes event into target, a pointer, and validates struct
// targets against their validate tags. Failures are *errors.EventError.
func DecodeEvent(event Value, target any) error {
	data, err := event.MarshalJSON()
	if err != nil {
		return &domainerrors.EventError{Err: err}
	}
	if err := json.Unmarshal(data, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &domainerrors.EventError{
				Field: typeErr.Field,
				Err:   fmt.Errorf("cannot use %s as %s", typeErr.Value, typeErr.Type),
			}
		}
		return &domainerrors.EventError{Err: err}
	}

	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(rv.Interface()); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return &domainerrors.EventError{
				Field: first.Field(),
				Err:   fmt.Errorf("failed on the '%s' rule", first.Tag()),
			}
		}
		return &domainerrors.EventError{Err: err}
	}
	return nil
}

// EncodeResult converts a Go value into a Value through its JSON encoding.
func EncodeResult(result any) (Value, error) {
	if v, ok := result.(Value); ok {
		return v, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return Value{}, fmt.Errorf("failed to encode result: %w", err)
	}
	return value.Parse(data)
}
