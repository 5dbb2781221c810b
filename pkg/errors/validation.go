package errors

import (
	"regexp"

	"github.com/google/uuid"
)

// identifierRegex matches cell and variable names: a letter or underscore
// followed by letters, digits or underscores.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s satisfies the identifier grammar
// [A-Za-z_][A-Za-z0-9_]*.
func IsIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// ValidateName validates a cell name against the identifier grammar.
//
// The validation rules:
//   - No empty names
//   - First character is a letter or underscore
//   - Remaining characters are letters, digits or underscores
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "cell name cannot be empty")
	}
	if !IsIdentifier(name) {
		return New(ErrCodeInvalidName, "invalid cell name: %q", name)
	}
	return nil
}

// ValidateWorkbookID validates a workbook identifier.
// Workbook IDs are UUIDs in their canonical textual form.
func ValidateWorkbookID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "workbook ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid workbook ID: %q", id)
	}
	return nil
}
