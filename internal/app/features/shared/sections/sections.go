// Package sections holds the request shape and error mapping shared by the
// endpoints that write program sections.
package sections

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/facultrack/internal/app/features/errors"
	assignmentservice "github.com/dalemusser/facultrack/internal/app/services/assignment"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Input is the JSON body of section create/update.
type Input struct {
	Name       string   `json:"name" validate:"max=200" label:"Section name"`
	FacultyID  string   `json:"faculty_id" validate:"omitempty,objectid" label:"Faculty"`
	StudentIDs []string `json:"student_ids" validate:"max=1000,dive,objectid" label:"Students"`
}

// Section validates in and converts it for the assignment service. On
// failure it writes a 400 and returns false.
func (in Input) Section(w http.ResponseWriter) (assignmentservice.SectionInput, bool) {
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return assignmentservice.SectionInput{}, false
	}
	out := assignmentservice.SectionInput{Name: in.Name}
	if in.FacultyID != "" {
		oid, _ := primitive.ObjectIDFromHex(in.FacultyID)
		out.FacultyID = &oid
	}
	ids, ok := ObjectIDs(w, in.StudentIDs)
	if !ok {
		return assignmentservice.SectionInput{}, false
	}
	out.StudentIDs = ids
	return out, true
}

// ObjectIDs parses hex ids, writing a 400 on the first bad one.
func ObjectIDs(w http.ResponseWriter, hex []string) ([]primitive.ObjectID, bool) {
	out := make([]primitive.ObjectID, 0, len(hex))
	for _, h := range hex {
		oid, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			respond.Message(w, http.StatusBadRequest, "Invalid ID: "+h)
			return nil, false
		}
		out = append(out, oid)
	}
	return out, true
}

// WriteError maps assignment service errors to responses. Anything
// unrecognized is a logged 500.
func WriteError(w http.ResponseWriter, r *http.Request, errLog *uierrors.ErrorLogger, what string, err error) {
	switch {
	case errors.Is(err, assignmentservice.ErrFacultyNotFound):
		respond.Message(w, http.StatusNotFound, "Faculty not found")
	case errors.Is(err, assignmentservice.ErrStudentsNotFound):
		respond.Message(w, http.StatusNotFound, "One or more students not found")
	case errors.Is(err, assignmentservice.ErrProgramNotFound):
		respond.Message(w, http.StatusNotFound, "Program not found")
	case errors.Is(err, assignmentservice.ErrSectionNotFound):
		respond.Message(w, http.StatusNotFound, "Section not found")
	case errors.Is(err, assignmentservice.ErrSectionNameRequired):
		respond.Message(w, http.StatusBadRequest, "Section name is required")
	default:
		errLog.ServerError(w, r, what, err)
	}
}
