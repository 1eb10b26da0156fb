package validate

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Completer is implemented by list items that know when all of their
// required parts are filled in.
type Completer interface {
	Complete() bool
}

// anyComplete passes when at least one element of a slice is complete. It is
// a rule on the slice itself, so a failure yields one error for the field.
func anyComplete(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice && field.Kind() != reflect.Array {
		return false
	}

	for i := 0; i < field.Len(); i++ {
		item := field.Index(i)
		if item.Kind() == reflect.Pointer && item.IsNil() {
			continue
		}
		c, ok := item.Interface().(Completer)
		if ok && c.Complete() {
			return true
		}
	}
	return false
}
