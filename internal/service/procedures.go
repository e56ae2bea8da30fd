package service

// Fully-qualified procedure names, in Connect's /package.Service/Method form.
const (
	AuthServiceName      = "academy.v1.AuthService"
	RecordsServiceName   = "academy.v1.RecordsService"
	DashboardServiceName = "academy.v1.DashboardService"

	AuthLoginProcedure = "/" + AuthServiceName + "/Login"

	ListStudentsProcedure   = "/" + RecordsServiceName + "/ListStudents"
	AddStudentsProcedure    = "/" + RecordsServiceName + "/AddStudents"
	UpdateStudentsProcedure = "/" + RecordsServiceName + "/UpdateStudents"
	DeleteStudentsProcedure = "/" + RecordsServiceName + "/DeleteStudents"

	ListTeachersProcedure   = "/" + RecordsServiceName + "/ListTeachers"
	AddTeachersProcedure    = "/" + RecordsServiceName + "/AddTeachers"
	UpdateTeachersProcedure = "/" + RecordsServiceName + "/UpdateTeachers"
	DeleteTeachersProcedure = "/" + RecordsServiceName + "/DeleteTeachers"

	ListExpensesProcedure   = "/" + RecordsServiceName + "/ListExpenses"
	AddExpensesProcedure    = "/" + RecordsServiceName + "/AddExpenses"
	UpdateExpensesProcedure = "/" + RecordsServiceName + "/UpdateExpenses"
	DeleteExpensesProcedure = "/" + RecordsServiceName + "/DeleteExpenses"

	ListPartnersProcedure   = "/" + RecordsServiceName + "/ListPartners"
	AddPartnersProcedure    = "/" + RecordsServiceName + "/AddPartners"
	UpdatePartnersProcedure = "/" + RecordsServiceName + "/UpdatePartners"
	DeletePartnersProcedure = "/" + RecordsServiceName + "/DeletePartners"

	AdminOverviewProcedure     = "/" + DashboardServiceName + "/AdminOverview"
	ReceptionOverviewProcedure = "/" + DashboardServiceName + "/ReceptionOverview"
	PartnerStatementProcedure  = "/" + DashboardServiceName + "/PartnerStatement"
	ExportProcedure            = "/" + DashboardServiceName + "/Export"
)
