package mirror

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/abira1/Academy-Management-System/internal/models"
	"github.com/abira1/Academy-Management-System/internal/storage"
	"github.com/abira1/Academy-Management-System/internal/storage/memory"
)

// racingStore runs between once, right after the first Lookup, to stand in
// for another writer changing the record mid-update.
type racingStore struct {
	*memory.Store
	once    sync.Once
	between func()
}

func (s *racingStore) Lookup(ctx context.Context, collection, id string) (storage.Record, error) {
	rec, err := s.Store.Lookup(ctx, collection, id)
	if s.between != nil {
		s.once.Do(s.between)
	}
	return rec, err
}

func storedStudent(t *testing.T, store storage.RecordStore, id string) models.Student {
	t.Helper()
	rec, err := store.Lookup(context.Background(), storage.Students, id)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	s, err := StudentCodec{}.Decode(rec)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return s
}

func checkDue(t *testing.T, s models.Student) {
	t.Helper()
	if math.Abs(s.Due-(s.TotalPayment-s.Paid)) > 0.01 {
		t.Errorf("stored totalPayment=%v paid=%v due=%v, want due == totalPayment - paid", s.TotalPayment, s.Paid, s.Due)
	}
}

func TestStudentDueOverWriteSequences(t *testing.T) {
	tests := []struct {
		name    string
		start   models.Student
		patches []models.StudentPatch
		want    models.Student
	}{
		{
			name:    "paid only",
			start:   models.Student{Name: "Rahim Islam", TotalPayment: 20000, Paid: 5000},
			patches: []models.StudentPatch{{Paid: ptr(10000.0)}, {Paid: ptr(20000.0)}},
			want:    models.Student{Name: "Rahim Islam", TotalPayment: 20000, Paid: 20000},
		},
		{
			name:    "total payment only",
			start:   models.Student{Name: "Karim Hossain", TotalPayment: 15000, Paid: 5000},
			patches: []models.StudentPatch{{TotalPayment: ptr(18000.0)}, {TotalPayment: ptr(4000.0)}},
			want:    models.Student{Name: "Karim Hossain", TotalPayment: 4000, Paid: 5000},
		},
		{
			name:    "name only",
			start:   models.Student{Name: "Fatima Begum", TotalPayment: 25000, Paid: 25000},
			patches: []models.StudentPatch{{Name: ptr("Fatima Akter")}, {Course: ptr("Spoken English")}},
			want:    models.Student{Name: "Fatima Akter", Course: "Spoken English", TotalPayment: 25000, Paid: 25000},
		},
		{
			name:  "mixed",
			start: models.Student{Name: "Nusrat Jahan", TotalPayment: 12000, Paid: 0},
			patches: []models.StudentPatch{
				{Paid: ptr(3000.0)},
				{Phone: ptr("01711000000")},
				{TotalPayment: ptr(15000.0), Paid: ptr(9000.0)},
				{Paid: ptr(0.0)},
				{Name: ptr("Nusrat J.")},
			},
			want: models.Student{Name: "Nusrat J.", Phone: "01711000000", TotalPayment: 15000, Paid: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.New()
			students := NewStudents(store, Options{})

			added, err := students.Add(ctx, tt.start)
			if err != nil {
				t.Fatalf("Add() error: %v", err)
			}
			checkDue(t, storedStudent(t, store, added.ID))

			for i, p := range tt.patches {
				got, err := students.Update(ctx, added.ID, p)
				if err != nil {
					t.Fatalf("Update() #%d error: %v", i, err)
				}
				stored := storedStudent(t, store, added.ID)
				checkDue(t, stored)
				if got != stored {
					t.Errorf("Update() #%d = %+v, stored %+v", i, got, stored)
				}
			}

			final := storedStudent(t, store, added.ID)
			want := tt.want
			want.ID = added.ID
			want.Due = want.TotalPayment - want.Paid
			if final != want {
				t.Errorf("final = %+v, want %+v", final, want)
			}
		})
	}
}

func TestUpdateWithConcurrentWriter(t *testing.T) {
	tests := []struct {
		name  string
		patch models.StudentPatch
		want  models.Student
	}{
		{
			name:  "name only keeps the other payment",
			patch: models.StudentPatch{Name: ptr("Rahim Uddin")},
			want:  models.Student{Name: "Rahim Uddin", TotalPayment: 1000, Paid: 600, Due: 400},
		},
		{
			name:  "paid wins as the last write",
			patch: models.StudentPatch{Paid: ptr(300.0)},
			want:  models.Student{Name: "Rahim Islam", TotalPayment: 1000, Paid: 300, Due: 700},
		},
		{
			name:  "total payment writes a consistent set",
			patch: models.StudentPatch{TotalPayment: ptr(2000.0)},
			want:  models.Student{Name: "Rahim Islam", TotalPayment: 2000, Paid: 100, Due: 1900},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := memory.New()
			other := NewStudents(base, Options{})

			added, err := other.Add(ctx, models.Student{Name: "Rahim Islam", TotalPayment: 1000, Paid: 100})
			if err != nil {
				t.Fatalf("Add() error: %v", err)
			}

			store := &racingStore{Store: base}
			store.between = func() {
				if _, err := other.Update(ctx, added.ID, models.StudentPatch{Paid: ptr(600.0)}); err != nil {
					t.Errorf("concurrent Update() error: %v", err)
				}
			}
			students := NewStudents(store, Options{})

			got, err := students.Update(ctx, added.ID, tt.patch)
			if err != nil {
				t.Fatalf("Update() error: %v", err)
			}

			stored := storedStudent(t, base, added.ID)
			checkDue(t, stored)
			want := tt.want
			want.ID = added.ID
			if stored != want {
				t.Errorf("stored = %+v, want %+v", stored, want)
			}
			if got != stored {
				t.Errorf("Update() = %+v, want the stored record %+v", got, stored)
			}
		})
	}
}

func TestUpdateDeletedStudent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	students := NewStudents(store, Options{})

	added, err := students.Add(ctx, models.Student{Name: "Rahim Islam", TotalPayment: 20000, Paid: 15000})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := students.Delete(ctx, added.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	_, err = students.Update(ctx, added.ID, models.StudentPatch{Paid: ptr(20000.0)})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
	var werr *WriteError
	if !errors.As(err, &werr) || werr.Collection != storage.Students {
		t.Errorf("Update() error = %#v, want a WriteError on students", err)
	}

	if _, err := store.Lookup(ctx, storage.Students, added.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Lookup() error = %v, want the record to stay deleted", err)
	}
}

func TestUpdateRecordDeletedMidway(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	other := NewStudents(base, Options{})

	added, err := other.Add(ctx, models.Student{Name: "Rahim Islam", TotalPayment: 1000, Paid: 100})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	store := &racingStore{Store: base}
	store.between = func() {
		if err := other.Delete(ctx, added.ID); err != nil {
			t.Errorf("concurrent Delete() error: %v", err)
		}
	}
	students := NewStudents(store, Options{})

	_, err = students.Update(ctx, added.ID, models.StudentPatch{Name: ptr("Rahim Uddin")})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}
