package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinSubjectLength     = 2
	MaxSubjectLength     = 200
	MinDescriptionLength = 1
	MaxDescriptionLength = 5000
	MinMessageLength     = 1
	MaxMessageLength     = 5000
	MaxFileNameLength    = 255
	MinCost              = 0.0
	MaxCost              = 100000000.0 // 100 миллионов
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateCost проверяет стоимость.
func ValidateCost(fieldName string, value float64) error {
	if value <= MinCost {
		return fmt.Errorf("%s должна быть положительной", fieldName)
	}
	if value > MaxCost {
		return fmt.Errorf("%s превышает допустимый максимум", fieldName)
	}
	return nil
}

// SanitizeText обрезает пробелы и удаляет управляющие символы, кроме
// переводов строк и табуляции.
func SanitizeText(value string) string {
	value = strings.TrimSpace(value)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)
}
