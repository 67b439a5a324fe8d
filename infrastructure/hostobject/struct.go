package hostobject

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/reglet-dev/lambda-bridge/domain/ports"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Struct exposes a Go struct as a host object. Attributes are exported
// fields, matched by their json tag name or by the snake_case form of the
// field name. Methods are exported zero-argument methods, matched by the
// snake_case form of the method name, returning a value and optionally an
// error.
type Struct struct {
	target reflect.Value
}

// NewStruct wraps v, which must be a struct or a non-nil pointer to one.
// Methods with pointer receivers are only reachable when v is a pointer.
func NewStruct(v any) (*Struct, error) {
	rv := reflect.ValueOf(v)
	base := rv
	if base.Kind() == reflect.Pointer {
		if base.IsNil() {
			return nil, errors.New("hostobject: nil struct pointer")
		}
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return nil, fmt.Errorf("hostobject: %T is not a struct", v)
	}
	return &Struct{target: rv}, nil
}

// Attr implements ports.HostObject.
func (s *Struct) Attr(name string) (any, error) {
	base := reflect.Indirect(s.target)
	t := base.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if fieldName(field) == name {
			return base.Field(i).Interface(), nil
		}
	}
	return nil, ports.ErrAttributeNotFound
}

// Call implements ports.HostObject.
func (s *Struct) Call(method string) (any, error) {
	t := s.target.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if toSnakeCase(m.Name) != method {
			continue
		}
		return invoke(s.target.Method(i))
	}
	return nil, ports.ErrMethodNotFound
}

func invoke(fn reflect.Value) (any, error) {
	ft := fn.Type()
	if ft.NumIn() != 0 {
		return nil, fmt.Errorf("hostobject: method takes %d arguments", ft.NumIn())
	}
	out := fn.Call(nil)
	switch {
	case len(out) == 1:
		return out[0].Interface(), nil
	case len(out) == 2 && ft.Out(1) == errType:
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("hostobject: unsupported method signature %s", ft)
	}
}

func fieldName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return toSnakeCase(field.Name)
}

var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// toSnakeCase converts PascalCase to snake_case.
func toSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}
