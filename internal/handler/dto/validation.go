package dto

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MinDescriptionLength is the minimum description length in characters.
const MinDescriptionLength = 5

// Validation errors.
var (
	ErrTitleRequired       = errors.New("title is required")
	ErrAddressRequired     = errors.New("address is required")
	ErrDescriptionTooShort = errors.New("description is too short")
)

// ValidatePlaceFields checks the text fields of a new place.
func ValidatePlaceFields(title, description, address string) error {
	if err := ValidatePlaceUpdate(title, description); err != nil {
		return err
	}
	if strings.TrimSpace(address) == "" {
		return ErrAddressRequired
	}
	return nil
}

// ValidatePlaceUpdate checks the editable fields of a place.
func ValidatePlaceUpdate(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(strings.TrimSpace(description)) < MinDescriptionLength {
		return ErrDescriptionTooShort
	}
	return nil
}
