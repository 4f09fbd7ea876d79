// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false, so ok=true always comes with a usable id.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsFaculty reports whether the current request's user is faculty.
func IsFaculty(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleFaculty
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleStudent
}

// IsSelfOrAdmin reports whether the caller is id or an admin.
func IsSelfOrAdmin(r *http.Request, id primitive.ObjectID) bool {
	role, _, uid, ok := UserCtx(r)
	return ok && (role == models.RoleAdmin || uid == id)
}

// CanViewSection reports whether the caller may read section-scoped data:
// admins always, faculty and students only as members of the section.
func CanViewSection(r *http.Request, s models.Section) bool {
	role, _, uid, ok := UserCtx(r)
	if !ok {
		return false
	}
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleFaculty:
		return s.IsFaculty(uid)
	case models.RoleStudent:
		return s.HasStudent(uid)
	}
	return false
}
