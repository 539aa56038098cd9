package binder

import (
	"encoding"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	integerPattern      = regexp.MustCompile(`^[+-]?[0-9]+$`)
	errOverflow         = errors.New("value out of range")
	errNotInteger       = errors.New("not a decimal integer")
)

// Coerce converts raw into a value of type t.
func Coerce(raw string, t reflect.Type) (reflect.Value, error) {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		v := reflect.New(t)
		if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, err
		}
		return v.Elem(), nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !integerPattern.MatchString(raw) {
			return reflect.Value{}, errNotInteger
		}
		n, err := cast.ToInt64E(decimal(raw))
		if err != nil {
			return reflect.Value{}, err
		}
		if v.OverflowInt(n) {
			return reflect.Value{}, errOverflow
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !integerPattern.MatchString(raw) || strings.HasPrefix(raw, "-") {
			return reflect.Value{}, errNotInteger
		}
		n, err := cast.ToUint64E(decimal(raw))
		if err != nil {
			return reflect.Value{}, err
		}
		if v.OverflowUint(n) {
			return reflect.Value{}, errOverflow
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		if v.OverflowFloat(f) {
			return reflect.Value{}, errOverflow
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, ErrUnsupportedType
	}
	return v, nil
}

// Coercible reports whether Coerce supports t.
func Coercible(t reflect.Type) bool {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// decimal strips leading zeros so that base prefixes are never inferred ("010" is ten).
func decimal(raw string) string {
	sign := ""
	if raw != "" && (raw[0] == '+' || raw[0] == '-') {
		sign, raw = raw[:1], raw[1:]
	}
	trimmed := strings.TrimLeft(raw, "0")
	if trimmed == "" && raw != "" {
		trimmed = "0"
	}
	return sign + trimmed
}
