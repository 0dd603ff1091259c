package service

import (
	"strings"
	"unicode"
)

// NormalizarRUT strips dots, dashes and whitespace and uppercases the
// verifier digit: "12.345.678-k" → "12345678K".
func NormalizarRUT(rut string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, rut)
}

// NormalizarPatente strips dashes and whitespace and uppercases: "ab-cd 12" → "ABCD12".
func NormalizarPatente(patente string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, patente)
}

func NormalizarEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
