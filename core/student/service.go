package student

import (
	"context"
	"time"

	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/fee"
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		// FilterStudents applies AND on available QueryFilter fields.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo   Repository
		feeSvc *fee.Service
	}
)

func NewService(repo Repository, feeSvc *fee.Service) *Service {
	return &Service{repo: repo, feeSvc: feeSvc}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	s := Student{
		Name:          core.CleanString(ns.Name),
		Class:         core.CleanString(ns.Class),
		Gender:        ns.Gender,
		DateOfBirth:   ns.DateOfBirth,
		ParentName:    core.CleanString(ns.ParentName),
		ParentContact: core.CleanString(ns.ParentContact),
		ParentEmail:   core.CleanString(ns.ParentEmail, true),
		AcademicYear:  ns.AcademicYear,
		Term:          ns.Term,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	if us.Name != "" {
		s.Name = core.CleanString(us.Name)
	}
	if us.Class != "" {
		s.Class = core.CleanString(us.Class)
	}
	if us.Gender != "" {
		s.Gender = us.Gender
	}
	if us.DateOfBirth != nil {
		s.DateOfBirth = us.DateOfBirth
	}
	if us.ParentName != "" {
		s.ParentName = core.CleanString(us.ParentName)
	}
	if us.ParentContact != "" {
		s.ParentContact = core.CleanString(us.ParentContact)
	}
	if us.ParentEmail != "" {
		s.ParentEmail = core.CleanString(us.ParentEmail, true)
	}
	if us.AcademicYear != "" {
		s.AcademicYear = us.AcademicYear
	}
	if us.Term != "" {
		s.Term = us.Term
	}
	s.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

// GetWithSummary returns the student plus their derived financial position.
func (svc *Service) GetWithSummary(ctx context.Context, id int) (WithSummary, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return WithSummary{}, err
	}
	sum, err := svc.feeSvc.Summary(ctx, s.FeeContext())
	if err != nil {
		return WithSummary{}, err
	}
	return WithSummary{Student: s, Summary: sum}, nil
}

// FilterWithSummaries resolves each matched student's position. Summaries come
// from the fee service cache, so list views do not re-walk the ledger.
func (svc *Service) FilterWithSummaries(ctx context.Context, filter QueryFilter) ([]WithSummary, error) {
	students, err := svc.repo.FilterStudents(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]WithSummary, 0, len(students))
	for _, s := range students {
		sum, err := svc.feeSvc.Summary(ctx, s.FeeContext())
		if err != nil {
			return nil, err
		}
		out = append(out, WithSummary{Student: s, Summary: sum})
	}
	return out, nil
}
