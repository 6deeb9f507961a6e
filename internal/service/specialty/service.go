package specialty

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Service struct {
	repos     *repository.Repositories
	auditor   *audit.Service
	validator validator.Validator
	now       func() time.Time
	mu        sync.Mutex
}

func NewService(repos *repository.Repositories, auditor *audit.Service, now func() time.Time) *Service {
	if auditor == nil {
		auditor = audit.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repos: repos, auditor: auditor, validator: validator.New(), now: now}
}

func (s *Service) Create(ctx context.Context, actor model.Session, req *model.SpecialtyRequest) (*model.Specialty, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	specialties, err := s.repos.Specialties.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	sp := model.Specialty{Base: model.NewBase(s.now()), Name: req.Name, Description: req.Description}
	if err := s.repos.Specialties.Replace(ctx, append(specialties, sp)); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntitySpecialty, sp.ID)
	return &sp, nil
}

func (s *Service) Update(ctx context.Context, actor model.Session, id string, req *model.SpecialtyRequest) (*model.Specialty, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	specialties, err := s.repos.Specialties.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	i := repository.IndexOf(specialties, id)
	if i < 0 {
		return nil, apperrors.NotFound("specialty", nil)
	}
	sp := specialties[i]
	sp.Name = req.Name
	sp.Description = req.Description
	sp.Touch(s.now())
	specialties[i] = sp

	if err := s.repos.Specialties.Replace(ctx, specialties); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionUpdate, model.AuditEntitySpecialty, sp.ID)
	return &sp, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	specialties, err := s.repos.Specialties.All(ctx)
	if err != nil {
		return apperrors.Internal(err)
	}
	specialties, ok := repository.Remove(specialties, id)
	if !ok {
		return apperrors.NotFound("specialty", nil)
	}
	if err := s.repos.Specialties.Replace(ctx, specialties); err != nil {
		return apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionDelete, model.AuditEntitySpecialty, id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Specialty, error) {
	sp, ok, err := s.repos.Specialties.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("specialty", nil)
	}
	return &sp, nil
}

// List returns every specialty ordered by name.
func (s *Service) List(ctx context.Context) ([]model.Specialty, error) {
	specialties, err := s.repos.Specialties.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	sort.SliceStable(specialties, func(i, j int) bool { return specialties[i].Name < specialties[j].Name })
	return specialties, nil
}
