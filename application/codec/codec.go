// Package codec converts between host-native objects and the canonical
// value.Value. Host-native objects are ordinary Go dynamic values: nil, bool,
// numbers, strings, slices and string-keyed maps, the shapes produced by
// encoding/json when decoding into an interface{}.
package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	domainerrors "github.com/reglet-dev/lambda-bridge/domain/errors"
	"github.com/reglet-dev/lambda-bridge/domain/value"
)

var (
	valueType      = reflect.TypeOf(value.Value{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
)

// Decode converts a host-native object into a Value. It fails with a
// *errors.ConversionError for unsupported types and cyclic references.
func Decode(native any) (value.Value, error) {
	d := &decoder{visiting: make(map[visitKey]struct{})}
	return d.decode(reflect.ValueOf(native), "$")
}

// visitKey identifies a map or slice currently on the decode stack.
type visitKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type decoder struct {
	visiting map[visitKey]struct{}
}

func (d *decoder) decode(rv reflect.Value, path string) (value.Value, error) {
	if !rv.IsValid() {
		return value.Null(), nil
	}
	for rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return value.Null(), nil
		}
		rv = rv.Elem()
	}

	switch rv.Type() {
	case valueType:
		return rv.Interface().(value.Value), nil
	case jsonNumberType:
		n, err := value.ParseNumber(rv.String())
		if err != nil {
			return value.Value{}, decodeError(path, err.Error())
		}
		return value.FromNumber(n), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return value.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Uint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return value.Value{}, decodeError(path, fmt.Sprintf("non-finite number %v", f))
		}
		return value.MustFloat(f), nil
	case reflect.String:
		return value.String(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value.Value{}, decodeError(path, "binary data is not supported")
		}
		if rv.IsNil() {
			return value.Null(), nil
		}
		key := visitKey{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}
		if err := d.enter(key, path); err != nil {
			return value.Value{}, err
		}
		defer d.leave(key)
		return d.decodeSequence(rv, path)
	case reflect.Array:
		return d.decodeSequence(rv, path)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value.Value{}, decodeError(path, fmt.Sprintf("map key type %s is not a string", rv.Type().Key()))
		}
		if rv.IsNil() {
			return value.Null(), nil
		}
		key := visitKey{typ: rv.Type(), ptr: rv.Pointer()}
		if err := d.enter(key, path); err != nil {
			return value.Value{}, err
		}
		defer d.leave(key)
		return d.decodeMapping(rv, path)
	default:
		return value.Value{}, decodeError(path, fmt.Sprintf("unsupported type %s", rv.Type()))
	}
}

func (d *decoder) enter(key visitKey, path string) error {
	if _, ok := d.visiting[key]; ok {
		return decodeError(path, "cyclic reference")
	}
	d.visiting[key] = struct{}{}
	return nil
}

func (d *decoder) leave(key visitKey) {
	delete(d.visiting, key)
}

func (d *decoder) decodeSequence(rv reflect.Value, path string) (value.Value, error) {
	items := make([]value.Value, rv.Len())
	for i := range items {
		item, err := d.decode(rv.Index(i), path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return value.Value{}, err
		}
		items[i] = item
	}
	return value.Array(items...), nil
}

func (d *decoder) decodeMapping(rv reflect.Value, path string) (value.Value, error) {
	fields := make(map[string]value.Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		item, err := d.decode(iter.Value(), childPath(path, k))
		if err != nil {
			return value.Value{}, err
		}
		fields[k] = item
	}
	return value.Object(fields), nil
}

// Encode converts a Value into a host-native object built from nil, bool,
// int64, uint64, float64, string, []any and map[string]any.
func Encode(v value.Value) (any, error) {
	return encode(v, "$")
}

func encode(v value.Value, path string) (any, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		b, _ := v.AsBool()
		return b, nil
	case value.KindNumber:
		n, _ := v.AsNumber()
		if i, ok := n.Int64(); ok {
			return i, nil
		}
		if u, ok := n.Uint64(); ok {
			return u, nil
		}
		return n.Float64(), nil
	case value.KindString:
		s, _ := v.AsString()
		return s, nil
	case value.KindArray:
		out := make([]any, 0, v.Len())
		var err error
		v.Range(func(_ string, i int, item value.Value) bool {
			var native any
			native, err = encode(item, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return false
			}
			out = append(out, native)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case value.KindObject:
		out := make(map[string]any, v.Len())
		var err error
		v.Range(func(k string, _ int, item value.Value) bool {
			var native any
			native, err = encode(item, childPath(path, k))
			if err != nil {
				return false
			}
			out[k] = native
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, &domainerrors.ConversionError{
			Direction: domainerrors.DirectionEncode,
			Path:      path,
			Reason:    fmt.Sprintf("unknown value kind %s", v.Kind()),
		}
	}
}

// DecodeJSON parses JSON text, the host-native form of serialized hosts, into
// a host-native object. Integer literals decode as int64 or uint64.
func DecodeJSON(data []byte) (any, error) {
	v, err := value.Parse(data)
	if err != nil {
		return nil, decodeError("$", err.Error())
	}
	return Encode(v)
}

// EncodeJSON serializes a host-native object as JSON text, keeping the
// integer/float distinction that encoding/json would lose.
func EncodeJSON(native any) ([]byte, error) {
	v, err := Decode(native)
	if err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}

func decodeError(path, reason string) error {
	return &domainerrors.ConversionError{
		Direction: domainerrors.DirectionDecode,
		Path:      path,
		Reason:    reason,
	}
}

// childPath appends an object key to a path, quoting keys that are not plain
// identifiers.
func childPath(path, key string) string {
	if isIdentifier(key) {
		return path + "." + key
	}
	return path + "[" + strconv.Quote(key) + "]"
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
