package cache

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// KeySerializer builds a stable cache key from a scope name and query parameters.
type KeySerializer interface {
	SerializeKey(scope string, params ...any) string
}

// defaultKeySerializer walks parameters with reflection so structurally equal
// parameters always produce the same key.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return defaultKeySerializer{}
}

// SerializeKey joins the scope and every serialized parameter with KeySeparator.
func (s defaultKeySerializer) SerializeKey(scope string, params ...any) string {
	if len(params) == 0 {
		return scope
	}

	parts := make([]string, 0, len(params)+1)
	parts = append(parts, scope)
	for _, p := range params {
		parts = append(parts, s.value(reflect.ValueOf(p)))
	}
	return strings.Join(parts, KeySeparator)
}

func (s defaultKeySerializer) value(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.value(rv.Elem())

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// only stable for the lifetime of the process
		if rv.IsNil() {
			return "nil"
		}
		return fmt.Sprintf("%s:%#x", rv.Kind(), rv.Pointer())

	case reflect.Struct, reflect.Array:
		if text, ok := s.text(rv); ok {
			return text
		}
	}

	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return fmt.Sprintf("slice[%d]:{%s}", rv.Len(), s.elements(rv))

	case reflect.Array:
		return fmt.Sprintf("array[%d]:{%s}", rv.Len(), s.elements(rv))

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.mapValue(rv)

	case reflect.Struct:
		return s.structValue(rv)

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return fmt.Sprintf("%v", rv.Interface())
	}

	return s.fallback(rv)
}

// text uses MarshalText for values such as time.Time or uuid.UUID whose
// reflected shape is not meaningful.
func (s defaultKeySerializer) text(rv reflect.Value) (string, bool) {
	if !rv.CanInterface() {
		return "", false
	}
	tm, ok := rv.Interface().(encoding.TextMarshaler)
	if !ok {
		return "", false
	}
	data, err := tm.MarshalText()
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s defaultKeySerializer) elements(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.value(rv.Index(i))
	}
	return strings.Join(parts, ",")
}

func (s defaultKeySerializer) mapValue(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.value(iter.Key())+"="+s.value(iter.Value()))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

func (s defaultKeySerializer) structValue(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, field.Name+":"+s.value(rv.Field(i)))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func (s defaultKeySerializer) fallback(rv reflect.Value) string {
	if !rv.CanInterface() {
		return "fallback:" + rv.Type().String()
	}
	data, err := sonic.Marshal(rv.Interface())
	if err != nil {
		return "fallback:" + rv.Type().String()
	}
	return "json:" + string(data)
}
