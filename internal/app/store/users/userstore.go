// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/app/system/paging"
	"github.com/dalemusser/facultrack/internal/app/system/rosterid"
	"github.com/dalemusser/facultrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrBadRole is returned for roles other than admin, faculty and student.
	ErrBadRole = errors.New(`role must be "admin"|"faculty"|"student"`)
	// ErrDuplicateRosterID is returned when a caller-supplied student or faculty id is taken.
	ErrDuplicateRosterID = errors.New("a user with this id already exists")
	// ErrRosterIDExhausted means no unused student/faculty id was found.
	ErrRosterIDExhausted = errors.New("could not generate a unique id")
)

// publicProjection leaves out the password hash.
var publicProjection = bson.M{"password_hash": 0}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDAndRole loads a user that has the given role.
// Returns mongo.ErrNoDocuments if the user is missing or has another role.
func (s *Store) GetByIDAndRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "role": role}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Find returns users matching filter without password hashes.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	o := options.Find().SetProjection(publicProjection)
	cur, err := s.c.Find(ctx, filter, append([]*options.FindOptions{o}, opts...)...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByRole returns every user with role, sorted by name. An empty role
// lists everyone.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return s.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
}

// ListFilter narrows ListPage.
type ListFilter struct {
	Role  string // exact role, or "" for all
	Query string // name prefix, case/diacritic-insensitive
}

// ListPage returns one keyset page of users ordered by name_ci, _id.
func (s *Store) ListPage(ctx context.Context, f ListFilter, before, after string) ([]models.User, paging.Result, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if lo, hi := text.PrefixRange(f.Query); lo != "" {
		filter["name_ci"] = bson.M{"$gte": lo, "$lt": hi}
	}

	find := options.Find()
	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(find, "name_ci")
	if ks := cfg.KeysetWindow("name_ci"); ks != nil {
		filter["$or"] = ks["$or"]
	}

	users, err := s.Find(ctx, filter, find)
	if err != nil {
		return nil, paging.Result{}, err
	}
	res := paging.TrimPage(&users, before, after)
	if before != "" {
		paging.Reverse(users)
	}
	return users, res, nil
}

// Summaries resolves ids to public identities. Missing ids are absent from
// the map.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1, "role": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.UserSummary
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// CountWithRole counts how many of ids are users with role. Duplicate ids
// are counted once.
func (s *Store) CountWithRole(ctx context.Context, ids []primitive.ObjectID, role string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}, "role": role})
}

// CountByRole counts all users with role.
func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": role})
}

// rosterIDField is the profile path holding the generated id for role.
func rosterIDField(role string) string {
	switch role {
	case models.RoleStudent:
		return "profile.student.student_id"
	case models.RoleFaculty:
		return "profile.faculty.faculty_id"
	}
	return ""
}

// rosterIDExists reports whether id is already used.
func (s *Store) rosterIDExists(ctx context.Context, role, id string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{rosterIDField(role): id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// NextRosterID returns an unused student or faculty id for role.
func (s *Store) NextRosterID(ctx context.Context, role string) (string, error) {
	if rosterid.Prefix(role) == "" {
		return "", nil
	}
	for i := 0; i < rosterid.MaxAttempts; i++ {
		id := rosterid.Generate(role, time.Now())
		exists, err := s.rosterIDExists(ctx, role, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", ErrRosterIDExhausted
}

func setRosterID(p *models.Profile, role, id string) {
	switch role {
	case models.RoleStudent:
		p.Student.StudentID = id
	case models.RoleFaculty:
		p.Faculty.FacultyID = id
	}
}

func rosterID(p models.Profile, role string) string {
	switch role {
	case models.RoleStudent:
		return p.Student.StudentID
	case models.RoleFaculty:
		return p.Faculty.FacultyID
	}
	return ""
}

// isEmailDup tells an email collision apart from a roster id collision.
func isEmailDup(err error) bool {
	return strings.Contains(err.Error(), "uniq_users_email")
}

// Create inserts a new user after normalizing fields. The profile is reset
// to the role's variant when it does not match, and a student or faculty id
// is generated when missing. A racing id collision is retried.
// PasswordHash must already be set by the caller.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if !models.IsValidRole(u.Role) {
		return models.User{}, ErrBadRole
	}
	u.Profile = u.Profile.WithDefaults(u.Role)
	if u.AssignedPrograms == nil {
		u.AssignedPrograms = []models.AssignedProgram{}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	generated := false
	for attempt := 0; attempt < rosterid.MaxAttempts; attempt++ {
		if rosterid.Prefix(u.Role) != "" && (generated || rosterID(u.Profile, u.Role) == "") {
			id, err := s.NextRosterID(ctx, u.Role)
			if err != nil {
				return models.User{}, err
			}
			setRosterID(&u.Profile, u.Role, id)
			generated = true
		}

		_, err := s.c.InsertOne(ctx, u)
		if err == nil {
			return u, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.User{}, err
		}
		if isEmailDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		if !generated {
			return models.User{}, ErrDuplicateRosterID
		}
	}
	return models.User{}, ErrRosterIDExhausted
}

// Update holds the account fields an admin or the user may change.
// Nil fields are left untouched.
type Update struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
}

// Fields lists the names of the fields set on upd.
func (upd Update) Fields() []string {
	var out []string
	if upd.Name != nil {
		out = append(out, "name")
	}
	if upd.Email != nil {
		out = append(out, "email")
	}
	if upd.PasswordHash != nil {
		out = append(out, "password")
	}
	if upd.Role != nil {
		out = append(out, "role")
	}
	return out
}

// Update applies upd and returns the stored user. A role change replaces
// the profile with the new role's default variant and a fresh roster id.
// Returns mongo.ErrNoDocuments if the user does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Role != nil {
		role := normalize.Role(*upd.Role)
		if !models.IsValidRole(role) {
			return nil, ErrBadRole
		}
		cur, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.Role != role {
			p := models.DefaultProfile(role)
			rid, err := s.NextRosterID(ctx, role)
			if err != nil {
				return nil, err
			}
			if rid != "" {
				setRosterID(&p, role, rid)
			}
			set["role"] = role
			set["profile"] = p
		}
	}

	var out models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(publicProjection),
	).Decode(&out)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &out, nil
}

// UpdateStudentProfile applies patch to a student's profile.
// Returns mongo.ErrNoDocuments if id is not a student.
func (s *Store) UpdateStudentProfile(ctx context.Context, id primitive.ObjectID, patch models.StudentProfilePatch) (*models.User, error) {
	u, err := s.GetByIDAndRole(ctx, id, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	p := u.Profile.WithDefaults(models.RoleStudent)
	next := patch.Apply(*p.Student)
	return s.setProfile(ctx, id, models.RoleStudent, "profile.student", next)
}

// UpdateFacultyProfile applies patch to a faculty member's profile.
// Returns mongo.ErrNoDocuments if id is not faculty.
func (s *Store) UpdateFacultyProfile(ctx context.Context, id primitive.ObjectID, patch models.FacultyProfilePatch) (*models.User, error) {
	u, err := s.GetByIDAndRole(ctx, id, models.RoleFaculty)
	if err != nil {
		return nil, err
	}
	p := u.Profile.WithDefaults(models.RoleFaculty)
	next := patch.Apply(*p.Faculty)
	return s.setProfile(ctx, id, models.RoleFaculty, "profile.faculty", next)
}

func (s *Store) setProfile(ctx context.Context, id primitive.ObjectID, role, path string, v any) (*models.User, error) {
	var out models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "role": role},
		bson.M{"$set": bson.M{path: v, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(publicProjection),
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
// It does not touch sections or chats; see services/purge.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EmailExistsForOther checks if an email already exists for a user other than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// InvalidIDs returns users missing a name or email, or carrying an unknown
// role. Such documents predate validation and break populated views.
func (s *Store) InvalidIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	blank := func(field string) []bson.M {
		return []bson.M{
			{field: bson.M{"$exists": false}},
			{field: nil},
			{field: ""},
		}
	}
	or := append(blank("name"), blank("email")...)
	or = append(or, bson.M{"role": bson.M{"$nin": models.Roles}})

	cur, err := s.c.Find(ctx, bson.M{"$or": or}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// AddAssignment gives each user in ids a back-reference to the section.
// Users that already carry it are left alone, so the list stays a set.
func (s *Store) AddAssignment(ctx context.Context, ids []primitive.ObjectID, programID, sectionID primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"_id": bson.M{"$in": ids},
			"assigned_programs": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"program_id": programID,
				"section_id": sectionID,
			}}},
		},
		bson.M{"$push": bson.M{"assigned_programs": models.AssignedProgram{
			ProgramID:  programID,
			SectionID:  sectionID,
			AssignedAt: time.Now().UTC(),
		}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// RemoveAssignment drops the back-reference to the section from the users in
// ids, or from every user when ids is nil.
func (s *Store) RemoveAssignment(ctx context.Context, ids []primitive.ObjectID, programID, sectionID primitive.ObjectID) (int64, error) {
	filter := bson.M{"assigned_programs": bson.M{"$elemMatch": bson.M{
		"program_id": programID,
		"section_id": sectionID,
	}}}
	if ids != nil {
		if len(ids) == 0 {
			return 0, nil
		}
		filter["_id"] = bson.M{"$in": ids}
	}
	res, err := s.c.UpdateMany(ctx, filter, bson.M{"$pull": bson.M{"assigned_programs": bson.M{
		"program_id": programID,
		"section_id": sectionID,
	}}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// RemoveProgramAssignments drops every back-reference to the program.
func (s *Store) RemoveProgramAssignments(ctx context.Context, programID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"assigned_programs.program_id": programID},
		bson.M{"$pull": bson.M{"assigned_programs": bson.M{"program_id": programID}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
