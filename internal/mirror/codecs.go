package mirror

import (
	"fmt"
	"strings"

	"github.com/abira1/Academy-Management-System/internal/calculator"
	"github.com/abira1/Academy-Management-System/internal/models"
	"github.com/abira1/Academy-Management-System/internal/storage"
)

// Concrete mirror types, one per collection.
type (
	Students = Mirror[models.Student, models.StudentPatch]
	Teachers = Mirror[models.Teacher, models.TeacherPatch]
	Expenses = Mirror[models.Expense, models.ExpensePatch]
	Partners = Mirror[models.Partner, models.PartnerPatch]
)

// StudentCodec stores students and keeps due equal to totalPayment - paid
// on every write.
type StudentCodec struct{}

func (StudentCodec) Collection() string         { return storage.Students }
func (StudentCodec) ID(s models.Student) string { return s.ID }

func (StudentCodec) EncodeNew(s models.Student, _ []models.Student) (storage.Record, error) {
	if err := models.Validate(s); err != nil {
		return nil, err
	}
	s.Due = calculator.Due(s.TotalPayment, s.Paid)
	return encode(s)
}

// EncodePatch sends the given fields. A patch touching totalPayment or paid
// carries totalPayment, paid and due together, computed from the merged
// record, so the stored money fields always agree with each other. A patch
// without money fields leaves all three as stored.
func (StudentCodec) EncodePatch(current models.Student, p models.StudentPatch, _ []models.Student) (storage.Record, error) {
	if err := models.Validate(p); err != nil {
		return nil, err
	}
	fields, err := encode(p)
	if err != nil {
		return nil, err
	}
	if p.TotalPayment == nil && p.Paid == nil {
		return fields, nil
	}
	merged := p.Apply(current)
	fields["totalPayment"] = merged.TotalPayment
	fields["paid"] = merged.Paid
	fields["due"] = calculator.Due(merged.TotalPayment, merged.Paid)
	return fields, nil
}

func (StudentCodec) Decode(rec storage.Record) (models.Student, error) {
	var s models.Student
	err := decode(rec, &s)
	return s, err
}

// TeacherCodec stores salary disbursements.
type TeacherCodec struct{}

func (TeacherCodec) Collection() string         { return storage.Teachers }
func (TeacherCodec) ID(t models.Teacher) string { return t.ID }

func (TeacherCodec) EncodeNew(t models.Teacher, _ []models.Teacher) (storage.Record, error) {
	if err := models.Validate(t); err != nil {
		return nil, err
	}
	return encode(t)
}

func (TeacherCodec) EncodePatch(_ models.Teacher, p models.TeacherPatch, _ []models.Teacher) (storage.Record, error) {
	if err := models.Validate(p); err != nil {
		return nil, err
	}
	return encode(p)
}

func (TeacherCodec) Decode(rec storage.Record) (models.Teacher, error) {
	var t models.Teacher
	err := decode(rec, &t)
	return t, err
}

// ExpenseCodec stores non-salary expenses.
type ExpenseCodec struct{}

func (ExpenseCodec) Collection() string         { return storage.Expenses }
func (ExpenseCodec) ID(e models.Expense) string { return e.ID }

func (ExpenseCodec) EncodeNew(e models.Expense, _ []models.Expense) (storage.Record, error) {
	if err := models.Validate(e); err != nil {
		return nil, err
	}
	return encode(e)
}

func (ExpenseCodec) EncodePatch(_ models.Expense, p models.ExpensePatch, _ []models.Expense) (storage.Record, error) {
	if err := models.Validate(p); err != nil {
		return nil, err
	}
	return encode(p)
}

func (ExpenseCodec) Decode(rec storage.Record) (models.Expense, error) {
	var e models.Expense
	err := decode(rec, &e)
	return e, err
}

// Hasher turns a plaintext password into the stored credential.
type Hasher interface {
	Hash(password string) (string, error)
}

// PartnerCodec stores partners. Usernames are unique ignoring case, and
// passwords are hashed before they leave the process. An empty password in
// a patch leaves the stored credential alone.
//
// Uniqueness is checked against the mirror's current snapshot, not by the
// store, so two writers adding the same username at the same time can both
// succeed.
type PartnerCodec struct {
	Hasher Hasher
}

func (PartnerCodec) Collection() string         { return storage.Partners }
func (PartnerCodec) ID(p models.Partner) string { return p.ID }

func (c PartnerCodec) EncodeNew(p models.Partner, existing []models.Partner) (storage.Record, error) {
	p.Username = strings.TrimSpace(p.Username)
	if err := models.Validate(p); err != nil {
		return nil, err
	}
	if p.Password == "" {
		return nil, models.NewValidationError("password", "this field is required")
	}
	if err := checkUsername(p.Username, "", existing); err != nil {
		return nil, err
	}
	hash, err := c.hash(p.Password)
	if err != nil {
		return nil, err
	}
	p.Password = hash
	return encode(p)
}

func (c PartnerCodec) EncodePatch(current models.Partner, p models.PartnerPatch, existing []models.Partner) (storage.Record, error) {
	if p.Username != nil {
		trimmed := strings.TrimSpace(*p.Username)
		p.Username = &trimmed
	}
	if err := models.Validate(p); err != nil {
		return nil, err
	}
	if p.Username != nil {
		if err := checkUsername(*p.Username, current.ID, existing); err != nil {
			return nil, err
		}
	}

	password := p.Password
	p.Password = nil
	fields, err := encode(p)
	if err != nil {
		return nil, err
	}
	if password != nil && *password != "" {
		hash, err := c.hash(*password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}
	return fields, nil
}

func (PartnerCodec) Decode(rec storage.Record) (models.Partner, error) {
	var p models.Partner
	err := decode(rec, &p)
	return p, err
}

func (c PartnerCodec) hash(password string) (string, error) {
	if c.Hasher == nil {
		return "", fmt.Errorf("partner codec has no password hasher")
	}
	hash, err := c.Hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash partner password: %w", err)
	}
	return hash, nil
}

func checkUsername(username, selfID string, existing []models.Partner) error {
	for _, p := range existing {
		if p.ID != selfID && models.SameUsername(p.Username, username) {
			return models.NewValidationError("username", "is already taken")
		}
	}
	return nil
}

// NewStudents creates a student mirror over store.
func NewStudents(store storage.RecordStore, opts Options) *Students {
	return New[models.Student, models.StudentPatch](store, StudentCodec{}, opts)
}

// NewTeachers creates a teacher mirror over store.
func NewTeachers(store storage.RecordStore, opts Options) *Teachers {
	return New[models.Teacher, models.TeacherPatch](store, TeacherCodec{}, opts)
}

// NewExpenses creates an expense mirror over store.
func NewExpenses(store storage.RecordStore, opts Options) *Expenses {
	return New[models.Expense, models.ExpensePatch](store, ExpenseCodec{}, opts)
}

// NewPartners creates a partner mirror over store. hasher protects the
// passwords written through it.
func NewPartners(store storage.RecordStore, hasher Hasher, opts Options) *Partners {
	return New[models.Partner, models.PartnerPatch](store, PartnerCodec{Hasher: hasher}, opts)
}
