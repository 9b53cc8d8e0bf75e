package chat

import (
	"fmt"
	"unicode/utf16"

	apierrors "github.com/diogo/chatpanel/internal/errors"
	"github.com/diogo/chatpanel/internal/models"
)

// FieldPrompt is the name of the only form field.
const FieldPrompt = "prompt"

// ValidPrompt is a prompt that passed validation.
type ValidPrompt struct {
	text string
}

// String returns the prompt text.
func (p ValidPrompt) String() string {
	return p.text
}

// FieldError is a field-level validation failure shown next to the input.
type FieldError = apierrors.ValidationError

// minLengthMessage returns the field error text for a minimum length rule.
func minLengthMessage(n int) string {
	return fmt.Sprintf("Prompt must be at least %d characters", n)
}

// Validate checks prompt against the minimum length rule. Length is counted
// in UTF-16 code units, the way browser form validation counts it, so a
// character outside the Basic Multilingual Plane such as an emoji counts as
// two. The prompt is not trimmed. A non-positive minLength falls back to
// models.MinPromptLength.
func Validate(prompt string, minLength int) (ValidPrompt, *FieldError) {
	if minLength <= 0 {
		minLength = models.MinPromptLength
	}
	if promptLength(prompt) < minLength {
		return ValidPrompt{}, apierrors.NewValidationError(FieldPrompt, minLengthMessage(minLength))
	}
	return ValidPrompt{text: prompt}, nil
}

// promptLength returns the length of s in UTF-16 code units.
func promptLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
