// internal/domain/models/concern.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Concern is an issue a student raises about a section they belong to.
type Concern struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ProgramID   primitive.ObjectID `bson:"program_id" json:"program_id"`
	SectionID   primitive.ObjectID `bson:"section_id" json:"section_id"`
	SectionName string             `bson:"section_name" json:"section_name"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"student_id"`
	StudentName string             `bson:"student_name" json:"student_name"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
