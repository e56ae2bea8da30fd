package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/abira1/Academy-Management-System/internal/mirror"
	"github.com/abira1/Academy-Management-System/internal/models"
)

var (
	staff     = []models.Role{models.RoleAdmin, models.RoleReception}
	adminOnly = []models.Role{models.RoleAdmin}
)

// RecordsService implements the RecordsService RPC interface: list and
// write-through operations on the four collection mirrors.
type RecordsService struct {
	set    *mirror.Set
	logger *slog.Logger
}

// NewRecordsService creates a RecordsService over the given mirrors.
func NewRecordsService(set *mirror.Set, logger *slog.Logger) *RecordsService {
	return &RecordsService{set: set, logger: logger}
}

// Handler returns the service's path prefix and HTTP handler.
func (s *RecordsService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()

	mux.Handle(ListStudentsProcedure, connect.NewUnaryHandler(ListStudentsProcedure, s.ListStudents, opts...))
	mux.Handle(AddStudentsProcedure, connect.NewUnaryHandler(AddStudentsProcedure, s.AddStudents, opts...))
	mux.Handle(UpdateStudentsProcedure, connect.NewUnaryHandler(UpdateStudentsProcedure, s.UpdateStudents, opts...))
	mux.Handle(DeleteStudentsProcedure, connect.NewUnaryHandler(DeleteStudentsProcedure, s.DeleteStudents, opts...))

	mux.Handle(ListTeachersProcedure, connect.NewUnaryHandler(ListTeachersProcedure, s.ListTeachers, opts...))
	mux.Handle(AddTeachersProcedure, connect.NewUnaryHandler(AddTeachersProcedure, s.AddTeachers, opts...))
	mux.Handle(UpdateTeachersProcedure, connect.NewUnaryHandler(UpdateTeachersProcedure, s.UpdateTeachers, opts...))
	mux.Handle(DeleteTeachersProcedure, connect.NewUnaryHandler(DeleteTeachersProcedure, s.DeleteTeachers, opts...))

	mux.Handle(ListExpensesProcedure, connect.NewUnaryHandler(ListExpensesProcedure, s.ListExpenses, opts...))
	mux.Handle(AddExpensesProcedure, connect.NewUnaryHandler(AddExpensesProcedure, s.AddExpenses, opts...))
	mux.Handle(UpdateExpensesProcedure, connect.NewUnaryHandler(UpdateExpensesProcedure, s.UpdateExpenses, opts...))
	mux.Handle(DeleteExpensesProcedure, connect.NewUnaryHandler(DeleteExpensesProcedure, s.DeleteExpenses, opts...))

	mux.Handle(ListPartnersProcedure, connect.NewUnaryHandler(ListPartnersProcedure, s.ListPartners, opts...))
	mux.Handle(AddPartnersProcedure, connect.NewUnaryHandler(AddPartnersProcedure, s.AddPartners, opts...))
	mux.Handle(UpdatePartnersProcedure, connect.NewUnaryHandler(UpdatePartnersProcedure, s.UpdatePartners, opts...))
	mux.Handle(DeletePartnersProcedure, connect.NewUnaryHandler(DeletePartnersProcedure, s.DeletePartners, opts...))

	return "/" + RecordsServiceName + "/", mux
}

// Students: reception may list, add and update; only admins delete.

func (s *RecordsService) ListStudents(ctx context.Context, req *connect.Request[ListRequest]) (*connect.Response[ListResponse[models.Student]], error) {
	return list(ctx, s.set.Students, nil, staff)
}

func (s *RecordsService) AddStudents(ctx context.Context, req *connect.Request[AddRequest[models.Student]]) (*connect.Response[RecordResponse[models.Student]], error) {
	return add(ctx, s.logger, s.set.Students, req.Msg.Record, nil, staff)
}

func (s *RecordsService) UpdateStudents(ctx context.Context, req *connect.Request[UpdateRequest[models.StudentPatch]]) (*connect.Response[RecordResponse[models.Student]], error) {
	return update(ctx, s.logger, s.set.Students, req.Msg.ID, req.Msg.Patch, nil, staff)
}

func (s *RecordsService) DeleteStudents(ctx context.Context, req *connect.Request[DeleteRequest]) (*connect.Response[DeleteResponse], error) {
	return remove(ctx, s.logger, s.set.Students, req.Msg.ID, adminOnly)
}

// Teachers are admin-only.

func (s *RecordsService) ListTeachers(ctx context.Context, req *connect.Request[ListRequest]) (*connect.Response[ListResponse[models.Teacher]], error) {
	return list(ctx, s.set.Teachers, nil, adminOnly)
}

func (s *RecordsService) AddTeachers(ctx context.Context, req *connect.Request[AddRequest[models.Teacher]]) (*connect.Response[RecordResponse[models.Teacher]], error) {
	return add(ctx, s.logger, s.set.Teachers, req.Msg.Record, nil, adminOnly)
}

func (s *RecordsService) UpdateTeachers(ctx context.Context, req *connect.Request[UpdateRequest[models.TeacherPatch]]) (*connect.Response[RecordResponse[models.Teacher]], error) {
	return update(ctx, s.logger, s.set.Teachers, req.Msg.ID, req.Msg.Patch, nil, adminOnly)
}

func (s *RecordsService) DeleteTeachers(ctx context.Context, req *connect.Request[DeleteRequest]) (*connect.Response[DeleteResponse], error) {
	return remove(ctx, s.logger, s.set.Teachers, req.Msg.ID, adminOnly)
}

// Expenses: reception may list and add.

func (s *RecordsService) ListExpenses(ctx context.Context, req *connect.Request[ListRequest]) (*connect.Response[ListResponse[models.Expense]], error) {
	return list(ctx, s.set.Expenses, nil, staff)
}

func (s *RecordsService) AddExpenses(ctx context.Context, req *connect.Request[AddRequest[models.Expense]]) (*connect.Response[RecordResponse[models.Expense]], error) {
	return add(ctx, s.logger, s.set.Expenses, req.Msg.Record, nil, staff)
}

func (s *RecordsService) UpdateExpenses(ctx context.Context, req *connect.Request[UpdateRequest[models.ExpensePatch]]) (*connect.Response[RecordResponse[models.Expense]], error) {
	return update(ctx, s.logger, s.set.Expenses, req.Msg.ID, req.Msg.Patch, nil, adminOnly)
}

func (s *RecordsService) DeleteExpenses(ctx context.Context, req *connect.Request[DeleteRequest]) (*connect.Response[DeleteResponse], error) {
	return remove(ctx, s.logger, s.set.Expenses, req.Msg.ID, adminOnly)
}

// Partners are admin-only and never leave the server with a credential.

func (s *RecordsService) ListPartners(ctx context.Context, req *connect.Request[ListRequest]) (*connect.Response[ListResponse[models.Partner]], error) {
	return list(ctx, s.set.Partners, models.Partner.Redacted, adminOnly)
}

func (s *RecordsService) AddPartners(ctx context.Context, req *connect.Request[AddRequest[models.Partner]]) (*connect.Response[RecordResponse[models.Partner]], error) {
	return add(ctx, s.logger, s.set.Partners, req.Msg.Record, models.Partner.Redacted, adminOnly)
}

func (s *RecordsService) UpdatePartners(ctx context.Context, req *connect.Request[UpdateRequest[models.PartnerPatch]]) (*connect.Response[RecordResponse[models.Partner]], error) {
	return update(ctx, s.logger, s.set.Partners, req.Msg.ID, req.Msg.Patch, models.Partner.Redacted, adminOnly)
}

func (s *RecordsService) DeletePartners(ctx context.Context, req *connect.Request[DeleteRequest]) (*connect.Response[DeleteResponse], error) {
	return remove(ctx, s.logger, s.set.Partners, req.Msg.ID, adminOnly)
}

func list[T, P any](ctx context.Context, m *mirror.Mirror[T, P], view func(T) T, roles []models.Role) (*connect.Response[ListResponse[T]], error) {
	if _, err := authorize(ctx, roles...); err != nil {
		return nil, err
	}
	records := m.Snapshot()
	if view != nil {
		for i := range records {
			records[i] = view(records[i])
		}
	}
	return connect.NewResponse(&ListResponse[T]{Records: records, Stale: m.Stale() != nil}), nil
}

func add[T, P any](ctx context.Context, logger *slog.Logger, m *mirror.Mirror[T, P], record T, view func(T) T, roles []models.Role) (*connect.Response[RecordResponse[T]], error) {
	session, err := authorize(ctx, roles...)
	if err != nil {
		return nil, err
	}
	added, err := m.Add(ctx, record)
	if err != nil {
		logger.Warn("Add failed", "collection", m.Collection(), "username", session.Username, "error", err)
		return nil, toConnectError(err)
	}
	if view != nil {
		added = view(added)
	}
	logger.Info("Record added", "collection", m.Collection(), "username", session.Username)
	return connect.NewResponse(&RecordResponse[T]{Record: added}), nil
}

func update[T, P any](ctx context.Context, logger *slog.Logger, m *mirror.Mirror[T, P], id string, patch P, view func(T) T, roles []models.Role) (*connect.Response[RecordResponse[T]], error) {
	session, err := authorize(ctx, roles...)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingID)
	}
	updated, err := m.Update(ctx, id, patch)
	if err != nil {
		logger.Warn("Update failed", "collection", m.Collection(), "id", id, "username", session.Username, "error", err)
		return nil, toConnectError(err)
	}
	if view != nil {
		updated = view(updated)
	}
	logger.Info("Record updated", "collection", m.Collection(), "id", id, "username", session.Username)
	return connect.NewResponse(&RecordResponse[T]{Record: updated}), nil
}

func remove[T, P any](ctx context.Context, logger *slog.Logger, m *mirror.Mirror[T, P], id string, roles []models.Role) (*connect.Response[DeleteResponse], error) {
	session, err := authorize(ctx, roles...)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingID)
	}
	if err := m.Delete(ctx, id); err != nil {
		logger.Warn("Delete failed", "collection", m.Collection(), "id", id, "username", session.Username, "error", err)
		return nil, toConnectError(err)
	}
	logger.Info("Record deleted", "collection", m.Collection(), "id", id, "username", session.Username)
	return connect.NewResponse(&DeleteResponse{}), nil
}
