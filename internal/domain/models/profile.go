// internal/domain/models/profile.go
package models

// Profile is the role-specific part of a User. Exactly one variant is set and
// it must match the owning user's role.
type Profile struct {
	Student *StudentProfile `bson:"student,omitempty" json:"student,omitempty"`
	Faculty *FacultyProfile `bson:"faculty,omitempty" json:"faculty,omitempty"`
	Admin   *AdminProfile   `bson:"admin,omitempty" json:"admin,omitempty"`
}

// Location is a physical place on campus.
type Location struct {
	CabinNo   string `bson:"cabin_no" json:"cabin_no"`
	Floor     string `bson:"floor" json:"floor"`
	BlockName string `bson:"block_name" json:"block_name"`
}

// SocialLinks holds public profile URLs.
type SocialLinks struct {
	LinkedIn string `bson:"linkedin" json:"linkedin"`
	GitHub   string `bson:"github" json:"github"`
}

// StudentProfile is the student variant.
type StudentProfile struct {
	StudentID       string      `bson:"student_id" json:"student_id"`
	College         string      `bson:"college" json:"college"`
	Branch          string      `bson:"branch" json:"branch"`
	Department      string      `bson:"department" json:"department"`
	CurrentYear     string      `bson:"current_year" json:"current_year"`
	CurrentSemester string      `bson:"current_semester" json:"current_semester"`
	CurrentGPA      string      `bson:"current_gpa" json:"current_gpa"`
	Qualification   string      `bson:"qualification" json:"qualification"`
	Description     string      `bson:"description" json:"description"`
	Courses         []string    `bson:"courses" json:"courses"`
	ProfilePic      string      `bson:"profile_pic" json:"profile_pic"`
	Location        Location    `bson:"location" json:"location"`
	Timetable       string      `bson:"timetable" json:"timetable"`
	CoursesTable    string      `bson:"courses_table" json:"courses_table"`
	SocialLinks     SocialLinks `bson:"social_links" json:"social_links"`
}

// FacultyProfile is the faculty variant.
type FacultyProfile struct {
	FacultyID      string      `bson:"faculty_id" json:"faculty_id"`
	Department     string      `bson:"department" json:"department"`
	Qualification  string      `bson:"qualification" json:"qualification"`
	Specialization string      `bson:"specialization" json:"specialization"`
	Experience     string      `bson:"experience" json:"experience"`
	OfficeLocation string      `bson:"office_location" json:"office_location"`
	OfficeHours    string      `bson:"office_hours" json:"office_hours"`
	Description    string      `bson:"description" json:"description"`
	Courses        []string    `bson:"courses" json:"courses"`
	ProfilePic     string      `bson:"profile_pic" json:"profile_pic"`
	Location       Location    `bson:"location" json:"location"`
	Timetable      string      `bson:"timetable" json:"timetable"`
	SocialLinks    SocialLinks `bson:"social_links" json:"social_links"`
}

// AdminProfile is the admin variant.
type AdminProfile struct {
	Department string `bson:"department" json:"department"`
	Position   string `bson:"position" json:"position"`
}

// DefaultProfile returns an empty profile holding the variant for role.
// Unknown roles get an empty Profile.
func DefaultProfile(role string) Profile {
	switch role {
	case RoleStudent:
		return Profile{Student: &StudentProfile{Courses: []string{}}}
	case RoleFaculty:
		return Profile{Faculty: &FacultyProfile{Courses: []string{}}}
	case RoleAdmin:
		return Profile{Admin: &AdminProfile{}}
	}
	return Profile{}
}

// Matches reports whether p holds exactly the variant for role.
func (p Profile) Matches(role string) bool {
	n := 0
	if p.Student != nil {
		n++
	}
	if p.Faculty != nil {
		n++
	}
	if p.Admin != nil {
		n++
	}
	if n != 1 {
		return false
	}
	switch role {
	case RoleStudent:
		return p.Student != nil
	case RoleFaculty:
		return p.Faculty != nil
	case RoleAdmin:
		return p.Admin != nil
	}
	return false
}

// WithDefaults returns p with the variant for role filled in when missing.
// Documents written before a role change or by older clients may lack it.
func (p Profile) WithDefaults(role string) Profile {
	if p.Matches(role) {
		if p.Student != nil && p.Student.Courses == nil {
			p.Student.Courses = []string{}
		}
		if p.Faculty != nil && p.Faculty.Courses == nil {
			p.Faculty.Courses = []string{}
		}
		return p
	}
	d := DefaultProfile(role)
	switch role {
	case RoleStudent:
		if p.Student != nil {
			d.Student = p.Student
		}
	case RoleFaculty:
		if p.Faculty != nil {
			d.Faculty = p.Faculty
		}
	case RoleAdmin:
		if p.Admin != nil {
			d.Admin = p.Admin
		}
	}
	return d
}
