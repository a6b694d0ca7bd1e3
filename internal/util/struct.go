package util

import (
	"reflect"

	"github.com/pkg/errors"
)

// IsStructInitialized returns an error naming the first exported field of s
// that holds a nil pointer, interface, map, slice, func or channel.
// s must be a struct or a pointer to one.
func IsStructInitialized(s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return errors.New("struct pointer is nil")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.Errorf("expected struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := range v.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		switch v.Field(i).Kind() { //nolint:exhaustive
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if v.Field(i).IsNil() {
				return errors.Errorf("field %s is not initialized", field.Name)
			}
		}
	}

	return nil
}
