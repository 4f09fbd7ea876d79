// internal/domain/models/profilepatch.go
package models

// StudentProfilePatch is a partial update of a StudentProfile.
// Nil fields are left unchanged. StudentID is assigned by the system and
// cannot be patched.
type StudentProfilePatch struct {
	College         *string      `json:"college"`
	Branch          *string      `json:"branch"`
	Department      *string      `json:"department"`
	CurrentYear     *string      `json:"current_year"`
	CurrentSemester *string      `json:"current_semester"`
	CurrentGPA      *string      `json:"current_gpa"`
	Qualification   *string      `json:"qualification"`
	Description     *string      `json:"description"`
	Courses         []string     `json:"courses"`
	ProfilePic      *string      `json:"profile_pic"`
	Location        *Location    `json:"location"`
	Timetable       *string      `json:"timetable"`
	CoursesTable    *string      `json:"courses_table"`
	SocialLinks     *SocialLinks `json:"social_links"`
}

// Apply returns a copy of p with the patch applied.
func (pt StudentProfilePatch) Apply(p StudentProfile) StudentProfile {
	set(&p.College, pt.College)
	set(&p.Branch, pt.Branch)
	set(&p.Department, pt.Department)
	set(&p.CurrentYear, pt.CurrentYear)
	set(&p.CurrentSemester, pt.CurrentSemester)
	set(&p.CurrentGPA, pt.CurrentGPA)
	set(&p.Qualification, pt.Qualification)
	set(&p.Description, pt.Description)
	set(&p.ProfilePic, pt.ProfilePic)
	set(&p.Timetable, pt.Timetable)
	set(&p.CoursesTable, pt.CoursesTable)
	if pt.Courses != nil {
		p.Courses = append([]string{}, pt.Courses...)
	}
	if pt.Location != nil {
		p.Location = *pt.Location
	}
	if pt.SocialLinks != nil {
		p.SocialLinks = *pt.SocialLinks
	}
	return p
}

// FacultyProfilePatch is a partial update of a FacultyProfile.
// FacultyID cannot be patched.
type FacultyProfilePatch struct {
	Department     *string      `json:"department"`
	Qualification  *string      `json:"qualification"`
	Specialization *string      `json:"specialization"`
	Experience     *string      `json:"experience"`
	OfficeLocation *string      `json:"office_location"`
	OfficeHours    *string      `json:"office_hours"`
	Description    *string      `json:"description"`
	Courses        []string     `json:"courses"`
	ProfilePic     *string      `json:"profile_pic"`
	Location       *Location    `json:"location"`
	Timetable      *string      `json:"timetable"`
	SocialLinks    *SocialLinks `json:"social_links"`
}

// Apply returns a copy of p with the patch applied.
func (pt FacultyProfilePatch) Apply(p FacultyProfile) FacultyProfile {
	set(&p.Department, pt.Department)
	set(&p.Qualification, pt.Qualification)
	set(&p.Specialization, pt.Specialization)
	set(&p.Experience, pt.Experience)
	set(&p.OfficeLocation, pt.OfficeLocation)
	set(&p.OfficeHours, pt.OfficeHours)
	set(&p.Description, pt.Description)
	set(&p.ProfilePic, pt.ProfilePic)
	set(&p.Timetable, pt.Timetable)
	if pt.Courses != nil {
		p.Courses = append([]string{}, pt.Courses...)
	}
	if pt.Location != nil {
		p.Location = *pt.Location
	}
	if pt.SocialLinks != nil {
		p.SocialLinks = *pt.SocialLinks
	}
	return p
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
