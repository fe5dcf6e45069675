package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLength_CountsRunes(t *testing.T) {
	// Кириллица занимает два байта на символ: длина считается в рунах.
	assert.NoError(t, ValidateLength("тема", strings.Repeat("я", MaxSubjectLength), MinSubjectLength, MaxSubjectLength))
	assert.Error(t, ValidateLength("тема", strings.Repeat("я", MaxSubjectLength+1), MinSubjectLength, MaxSubjectLength))
	assert.Error(t, ValidateLength("тема", "я", MinSubjectLength, MaxSubjectLength))
}

func TestValidateCost(t *testing.T) {
	assert.NoError(t, ValidateCost("стоимость", 1500))
	assert.Error(t, ValidateCost("стоимость", 0))
	assert.Error(t, ValidateCost("стоимость", -100))
	assert.Error(t, ValidateCost("стоимость", MaxCost+1))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "привет", SanitizeText("  привет  "))
	assert.Equal(t, "стр1\nстр2", SanitizeText("стр1\nстр2"))
	assert.Equal(t, "", SanitizeText("  \x00\x01\x1b  "))
	assert.Equal(t, "tab\tok", SanitizeText("tab\tok\x07"))
}
