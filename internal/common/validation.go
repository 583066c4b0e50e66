package common

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error returns a combined error, or nil when every rule passed
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return errors.New(v.ErrorMessage())
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case []byte:
		if len(v) == 0 {
			return &ValidationError{Field: fieldName, Value: "<empty>", Message: "is required"}
		}
	}
	return nil
}

// MaxLength limits a string to max runes. The error carries the length,
// not the text.
func MaxLength(max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok {
			return nil
		}
		if n := utf8.RuneCountInString(str); n > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   fmt.Sprintf("%d chars", n),
				Message: fmt.Sprintf("must be at most %d characters", max),
			}
		}
		return nil
	}
}

// OneOf requires a string value from allowed.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, _ := value.(string)
		if slices.Contains(allowed, str) {
			return nil
		}
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be one of: " + strings.Join(allowed, ", "),
		}
	}
}

// MaxBytes limits an int64 size in bytes.
func MaxBytes(max int64) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		size, ok := value.(int64)
		if !ok || size <= max {
			return nil
		}
		return &ValidationError{
			Field:   fieldName,
			Value:   fmt.Sprintf("%.2fMB", float64(size)/(1024*1024)),
			Message: fmt.Sprintf("exceeds maximum limit of %dMB", max/(1024*1024)),
		}
	}
}

// AllowedExtension requires a filename whose extension is accepted for upload.
func AllowedExtension(fieldName string, value interface{}) *ValidationError {
	name, _ := value.(string)
	ext := constants.NormalizeExt(filepath.Ext(name))
	if _, ok := constants.AllowedExtensions[ext]; ok {
		return nil
	}
	allowed := make([]string, 0, len(constants.AllowedExtensions))
	for e := range constants.AllowedExtensions {
		allowed = append(allowed, e)
	}
	slices.Sort(allowed)
	return &ValidationError{
		Field:   fieldName,
		Value:   value,
		Message: "file type not supported, allowed types: " + strings.Join(allowed, ", "),
	}
}

// ValidateUpload checks an uploaded document before extraction. Failures are
// permanent: resubmitting the same upload cannot succeed.
func ValidateUpload(filename string, size int64, maxMB int) error {
	if maxMB <= 0 {
		maxMB = constants.MaxUploadMBDefault
	}
	v := NewValidator().
		Field("filename", filename, Required, AllowedExtension).
		Field("size", size, MaxBytes(int64(maxMB)*1024*1024))
	if v.HasErrors() {
		return Permanent(v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// ValidateAndReturnError returns a permanent ErrInvalidInput error if validation fails
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return Permanent(validator.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
