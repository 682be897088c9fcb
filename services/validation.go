package services

import "strings"

// ValidationResult separates blocking field errors from advisory warnings.
// A transition proceeds only when Errors is empty; Warnings are returned to
// the actor but do not block the write (e.g. the minimum-reports check is a
// hard error for a publish recommendation but only advisory for a revision
// request).
type ValidationResult struct {
	Errors   map[string]string `json:"errors,omitempty"`
	Warnings map[string]string `json:"warnings,omitempty"`
}

// AddError records a blocking error for a field.
func (v *ValidationResult) AddError(field, msg string) {
	if v.Errors == nil {
		v.Errors = map[string]string{}
	}
	v.Errors[field] = msg
}

// AddWarning records an advisory warning for a field.
func (v *ValidationResult) AddWarning(field, msg string) {
	if v.Warnings == nil {
		v.Warnings = map[string]string{}
	}
	v.Warnings[field] = msg
}

// OK reports whether the input passed all blocking checks.
func (v *ValidationResult) OK() bool {
	return len(v.Errors) == 0
}

// Error makes a failed ValidationResult usable as an error value.
func (v *ValidationResult) Error() string {
	if v.OK() {
		return "validation passed"
	}
	parts := make([]string, 0, len(v.Errors))
	for field, msg := range v.Errors {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
