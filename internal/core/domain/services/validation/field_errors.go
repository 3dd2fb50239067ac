package validation

import (
	"sort"
	"strings"
)

// FieldErrors maps an input field name to the reason it was rejected.
type FieldErrors map[string]error

// Err returns f as an error, or nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Fields returns the rejected field names in lexical order.
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Messages returns the error text per field.
func (f FieldErrors) Messages() map[string]string {
	messages := make(map[string]string, len(f))
	for field, err := range f {
		messages[field] = err.Error()
	}
	return messages
}

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, field := range f.Fields() {
		parts = append(parts, field+": "+f[field].Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the per-field errors to errors.Is and errors.As.
func (f FieldErrors) Unwrap() []error {
	errs := make([]error, 0, len(f))
	for _, field := range f.Fields() {
		errs = append(errs, f[field])
	}
	return errs
}

// add keeps the first error reported for a field.
func (f FieldErrors) add(field string, err error) {
	if err == nil {
		return
	}
	if _, ok := f[field]; !ok {
		f[field] = err
	}
}
