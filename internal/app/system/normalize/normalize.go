// Package normalize canonicalizes user-supplied strings before they are
// stored or compared.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name. Case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Title trims a program title and collapses inner runs of whitespace.
func Title(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Content trims free text (chat messages, concerns, descriptions). Every
// other character is kept as typed.
func Content(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a query-string value. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
