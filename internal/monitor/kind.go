package monitor

import (
	"errors"
	"reflect"
)

type kinded interface {
	Kind() string
}

// ErrorKind names the kind of err for fingerprints and filtering. Errors
// anywhere in the chain that expose Kind() win; otherwise the dynamic type
// name is used.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var k kinded
	if errors.As(err, &k) {
		if kind := k.Kind(); kind != "" {
			return kind
		}
	}

	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "Error"
	}
	return t.Name()
}
