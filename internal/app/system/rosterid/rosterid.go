// Package rosterid generates the human-readable ids printed on student and
// faculty records, e.g. STU-2025-0042.
package rosterid

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/dalemusser/facultrack/internal/domain/models"
)

// MaxAttempts bounds the search for an unused id.
const MaxAttempts = 20

var pattern = regexp.MustCompile(`^(STU|FAC)-\d{4}-\d{4}$`)

// Prefix returns the id prefix for role, or "" for roles without ids.
func Prefix(role string) string {
	switch role {
	case models.RoleStudent:
		return "STU"
	case models.RoleFaculty:
		return "FAC"
	}
	return ""
}

// Generate returns a candidate id for role in the year of now.
// Callers check it for uniqueness.
func Generate(role string, now time.Time) string {
	p := Prefix(role)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("%s-%04d-%04d", p, now.Year(), rand.IntN(10000))
}

// Valid reports whether id has the PREFIX-YYYY-NNNN shape.
func Valid(id string) bool {
	return pattern.MatchString(id)
}
