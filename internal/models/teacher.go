package models

// Teacher represents one salary disbursement to a teacher.
// Salary is a single expense event, not a running balance.
type Teacher struct {
	// ID is the store-assigned identifier.
	ID string `json:"id"`

	// Name is the teacher's name.
	Name string `json:"name" validate:"required"`

	// Salary is the amount disbursed.
	Salary float64 `json:"salary" validate:"gte=0"`

	// Date is the disbursement date (YYYY-MM-DD), used for monthly bucketing.
	Date string `json:"date" validate:"required,isodate"`
}

// TeacherPatch is a partial update of a Teacher.
type TeacherPatch struct {
	Name   *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Salary *float64 `json:"salary,omitempty" validate:"omitempty,gte=0"`
	Date   *string  `json:"date,omitempty" validate:"omitempty,isodate"`
}

// Apply returns t with the non-nil fields of p merged in.
func (p TeacherPatch) Apply(t Teacher) Teacher {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Salary != nil {
		t.Salary = *p.Salary
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}
