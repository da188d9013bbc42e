package lang

import (
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// blockedProperties may never be read, whatever the object.
var blockedProperties = []string{"constructor", "__proto__"}

func isBlockedProperty(name string) bool {
	return slices.Contains(blockedProperties, name)
}

// propertyKey converts a computed property value to a property name.
func propertyKey(v any) string { return toString(v) }

// arrayIndex parses a canonical non-negative integer property name.
func arrayIndex(key string) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || strconv.Itoa(i) != key {
		return 0, false
	}

	return i, true
}

// getProperty reads property key of obj. Missing properties are [Undefined].
// The caller has already refused blocked names and nullish or callable
// objects.
func getProperty(obj any, key string) any {
	switch o := obj.(type) {
	case string:
		return stringProperty(o, key)
	case bool:
		if key == "toString" {
			return Func(boolToString)
		}

		return Undefined
	case map[string]any:
		if v, ok := o[key]; ok {
			return v
		}

		return Undefined
	case []any:
		return arrayProperty(o, key)
	}

	if _, ok := number(obj); ok {
		return numberProperty(key)
	}

	if elems, ok := elements(obj); ok {
		return arrayProperty(elems, key)
	}

	return reflectProperty(reflect.ValueOf(obj), key)
}

// reflectProperty reads a map entry, struct field or method of a Go value.
func reflectProperty(rv reflect.Value, key string) any {
	name := exportedName(key)

	if rv.Kind() != reflect.Interface && name != "" {
		if m := rv.MethodByName(name); m.IsValid() {
			return m.Interface()
		}
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Undefined
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Undefined
		}

		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return Undefined
		}

		return fromReflect(v)

	case reflect.Struct:
		if f, ok := structField(rv.Type(), key); ok {
			return fromReflect(rv.FieldByIndex(f.Index))
		}
	}

	return Undefined
}

// structField finds an exported field by its name, its name with the first
// letter upper-cased, or its json or yaml tag name.
func structField(t reflect.Type, key string) (reflect.StructField, bool) {
	for _, name := range []string{key, exportedName(key)} {
		if f, ok := t.FieldByName(name); ok && f.IsExported() {
			return f, true
		}
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		for _, tag := range []string{"json", "yaml"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name == key {
				return f, true
			}
		}
	}

	return reflect.StructField{}, false
}

func exportedName(key string) string {
	if key == "" {
		return ""
	}

	r := []rune(key)
	r[0] = unicode.ToUpper(r[0])

	return string(r)
}

func stringProperty(s, key string) any {
	if key == "length" {
		return float64(len(utf16.Encode([]rune(s))))
	}

	if i, ok := arrayIndex(key); ok {
		units := utf16.Encode([]rune(s))
		if i >= len(units) {
			return Undefined
		}

		return string(utf16.Decode(units[i : i+1]))
	}

	if m, ok := stringMethods[key]; ok {
		return m
	}

	return Undefined
}

func arrayProperty(elems []any, key string) any {
	if key == "length" {
		return float64(len(elems))
	}

	if i, ok := arrayIndex(key); ok {
		if i >= len(elems) {
			return Undefined
		}

		return elems[i]
	}

	if m, ok := arrayMethods[key]; ok {
		return m
	}

	return Undefined
}

func numberProperty(key string) any {
	if m, ok := numberMethods[key]; ok {
		return m
	}

	return Undefined
}
