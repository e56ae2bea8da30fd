// Package models defines the record types mirrored from the academy's
// record store.
//
// # Records
//
// Four collections are kept, one per entity kind:
//   - Student: an admitted student and their payment position
//   - Teacher: a salary disbursement to a teacher
//   - Expense: any other cost the academy paid
//   - Partner: a revenue-sharing partner and their login
//
// Records are identified by a store-assigned ID string. The JSON field names
// match the layout the records are persisted with, so records written by older
// clients decode unchanged.
//
// # Partial updates
//
// Every entity has a matching patch type (StudentPatch, TeacherPatch, ...)
// made of pointer fields. A nil field means "not given" and is never sent to
// the store. Derived fields such as Student.Due have no patch field at all:
// they are recomputed by the write path.
//
// # Dates
//
// Teacher and Expense dates are calendar dates in YYYY-MM-DD form. ParseDate
// also accepts RFC 3339 timestamps written by other tools.
package models
