package service

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level messages for the 400 response body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type validation struct {
	fields map[string]string
}

func newValidation() *validation {
	return &validation{fields: make(map[string]string)}
}

// add records the first message per field; later ones would shadow the
// root cause.
func (v *validation) add(field, message string) {
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

func (v *validation) failed() bool {
	return len(v.fields) > 0
}

func (v *validation) err() error {
	return &ValidationError{Fields: v.fields}
}
