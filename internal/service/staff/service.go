package staff

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

var ErrDuplicateIdentification = errors.New("a practitioner with this identification number already exists")

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

// check runs struct validation and the cross-collection rules together so
// the caller sees every problem at once.
func (s *Service) check(ctx context.Context, staff []model.MedicalStaff, req *model.MedicalStaffRequest, excludeID string) error {
	var c validator.Collector
	if err := c.Merge(s.validator.Validate(req)); err != nil {
		return err
	}
	if req.SpecialtyID != "" {
		_, ok, err := s.repos.Specialties.Get(ctx, req.SpecialtyID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if !ok {
			c.Add("specialtyId", "unknown specialty")
		}
	}
	if err := c.Err(); err != nil {
		return err
	}
	for _, m := range staff {
		if m.ID != excludeID && m.IdentificationNumber == req.IdentificationNumber {
			return apperrors.Conflict(ErrDuplicateIdentification.Error(), ErrDuplicateIdentification)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor model.Session, req *model.MedicalStaffRequest) (*model.MedicalStaff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff, err := s.repos.MedicalStaff.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.check(ctx, staff, req, ""); err != nil {
		return nil, err
	}

	m := model.MedicalStaff{Base: model.NewBase(s.now())}
	req.Apply(&m)
	if err := s.repos.MedicalStaff.Replace(ctx, append(staff, m)); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntityStaff, m.ID)
	return &m, nil
}

func (s *Service) Update(ctx context.Context, actor model.Session, id string, req *model.MedicalStaffRequest) (*model.MedicalStaff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff, err := s.repos.MedicalStaff.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	i := repository.IndexOf(staff, id)
	if i < 0 {
		return nil, apperrors.NotFound("medical staff", nil)
	}
	if err := s.check(ctx, staff, req, id); err != nil {
		return nil, err
	}

	m := staff[i]
	req.Apply(&m)
	m.Touch(s.now())
	staff[i] = m

	if err := s.repos.MedicalStaff.Replace(ctx, staff); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionUpdate, model.AuditEntityStaff, m.ID)
	return &m, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff, err := s.repos.MedicalStaff.All(ctx)
	if err != nil {
		return apperrors.Internal(err)
	}
	staff, ok := repository.Remove(staff, id)
	if !ok {
		return apperrors.NotFound("medical staff", nil)
	}
	if err := s.repos.MedicalStaff.Replace(ctx, staff); err != nil {
		return apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionDelete, model.AuditEntityStaff, id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.MedicalStaff, error) {
	m, ok, err := s.repos.MedicalStaff.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("medical staff", nil)
	}
	return &m, nil
}

// List returns practitioners ordered by name, optionally only those of
// one specialty.
func (s *Service) List(ctx context.Context, specialtyID string) ([]model.MedicalStaff, error) {
	staff, err := s.repos.MedicalStaff.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	out := make([]model.MedicalStaff, 0, len(staff))
	for _, m := range staff {
		if specialtyID == "" || m.SpecialtyID == specialtyID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
