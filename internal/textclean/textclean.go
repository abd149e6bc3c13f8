// Package textclean normalizes free text before it is labelled or compared.
package textclean

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Clean composes the text to NFC, lower-cases it, and trims surrounding
// whitespace. Composed form keeps "é" typed two ways from producing two
// different records.
func Clean(text string) string {
	text = norm.NFC.String(text)
	text = cases.Lower(language.Und).String(text)
	return strings.TrimSpace(text)
}
