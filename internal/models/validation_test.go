package models

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	negative := -1.0
	empty := ""
	badDate := "05/10/2023"

	tests := []struct {
		name      string
		value     any
		wantErr   bool
		wantField string
	}{
		{
			name:  "valid student",
			value: Student{Name: "Rahim Islam", TotalPayment: 20000, Paid: 15000},
		},
		{
			name:      "student without name",
			value:     Student{TotalPayment: 100},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:      "negative paid",
			value:     Student{Name: "A", Paid: -5},
			wantErr:   true,
			wantField: "paid",
		},
		{
			name:  "valid teacher",
			value: Teacher{Name: "Mr. Alamgir", Salary: 30000, Date: "2023-10-01"},
		},
		{
			name:      "teacher with malformed date",
			value:     Teacher{Name: "Mr. Alamgir", Salary: 30000, Date: "yesterday"},
			wantErr:   true,
			wantField: "date",
		},
		{
			name:  "expense with RFC 3339 date",
			value: Expense{Item: "Office Rent", Cost: 15000, Date: "2023-10-05T09:00:00Z"},
		},
		{
			name:      "partner share above 100",
			value:     Partner{Username: "p", SharePercentage: 120},
			wantErr:   true,
			wantField: "sharePercentage",
		},
		{
			name:  "empty patch",
			value: StudentPatch{},
		},
		{
			name:      "patch with negative total",
			value:     StudentPatch{TotalPayment: &negative},
			wantErr:   true,
			wantField: "totalPayment",
		},
		{
			name:      "patch clearing name",
			value:     TeacherPatch{Name: &empty},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:      "patch with bad date",
			value:     ExpensePatch{Date: &badDate},
			wantErr:   true,
			wantField: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not a *ValidationError", err)
			}
			if verr.Fields[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Fields[0].Field, tt.wantField)
			}
		})
	}
}

func TestStudentPatchApply(t *testing.T) {
	paid := 18000.0
	course := "IELTS"
	s := Student{ID: "x", Name: "Rahim Islam", TotalPayment: 20000, Paid: 15000, Due: 5000}

	got := StudentPatch{Paid: &paid, Course: &course}.Apply(s)

	if got.Paid != 18000 || got.Course != "IELTS" {
		t.Errorf("Apply() = %+v", got)
	}
	if got.Name != "Rahim Islam" || got.TotalPayment != 20000 {
		t.Errorf("Apply() changed fields that were not given: %+v", got)
	}
	if got.Due != 5000 {
		t.Errorf("Apply() touched Due: %v", got.Due)
	}
}

func TestSameUsername(t *testing.T) {
	if !SameUsername("PARTNER ONE", " partner one ") {
		t.Error("usernames differing in case and spacing should collide")
	}
	if SameUsername("partner one", "partner two") {
		t.Error("distinct usernames should not collide")
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2023-10-05", "2023-10-05T10:00:00Z", " 2023-10-05 "} {
		d, err := ParseDate(s)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", s, err)
			continue
		}
		if d.Month() != 10 || d.Year() != 2023 {
			t.Errorf("ParseDate(%q) = %v", s, d)
		}
	}
	for _, s := range []string{"", "10/05/2023", "2023-13-01"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) should fail", s)
		}
	}
}
