package models

// Student represents an admitted student and their payment position.
type Student struct {
	// ID is the store-assigned identifier, stable for the record lifetime.
	ID string `json:"id"`

	// Name is the student's full name.
	Name string `json:"name" validate:"required"`

	// StudentID is the academy's own student code (e.g., "S-001").
	StudentID string `json:"studentId"`

	// Phone is the contact number.
	Phone string `json:"phone"`

	// Course is the course the student is admitted to.
	Course string `json:"course"`

	// TotalPayment is the total amount the student owes for the course.
	TotalPayment float64 `json:"totalPayment" validate:"gte=0"`

	// Paid is the amount received to date.
	Paid float64 `json:"paid" validate:"gte=0"`

	// Due is TotalPayment - Paid. It is derived on every write and never
	// taken from the caller.
	Due float64 `json:"due"`
}

// StudentPatch is a partial update of a Student. Nil fields are left as stored.
type StudentPatch struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	StudentID    *string  `json:"studentId,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
	Course       *string  `json:"course,omitempty"`
	TotalPayment *float64 `json:"totalPayment,omitempty" validate:"omitempty,gte=0"`
	Paid         *float64 `json:"paid,omitempty" validate:"omitempty,gte=0"`
}

// Apply returns s with the non-nil fields of p merged in. Due is not touched.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.StudentID != nil {
		s.StudentID = *p.StudentID
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Course != nil {
		s.Course = *p.Course
	}
	if p.TotalPayment != nil {
		s.TotalPayment = *p.TotalPayment
	}
	if p.Paid != nil {
		s.Paid = *p.Paid
	}
	return s
}
