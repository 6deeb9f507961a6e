package patient

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

var ErrDuplicateIdentification = errors.New("a patient with this identification number already exists")

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

func duplicateID(patients []model.Patient, number, excludeID string) bool {
	for _, p := range patients {
		if p.ID != excludeID && p.IdentificationNumber == number {
			return true
		}
	}
	return false
}

func (s *Service) Create(ctx context.Context, actor model.Session, req *model.PatientRequest) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	patients, err := s.repos.Patients.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if duplicateID(patients, req.IdentificationNumber, "") {
		return nil, apperrors.Conflict(ErrDuplicateIdentification.Error(), ErrDuplicateIdentification)
	}

	p := model.Patient{Base: model.NewBase(s.now())}
	req.Apply(&p)
	if err := s.repos.Patients.Replace(ctx, append(patients, p)); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntityPatient, p.ID)
	return &p, nil
}

func (s *Service) Update(ctx context.Context, actor model.Session, id string, req *model.PatientRequest) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	patients, err := s.repos.Patients.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	i := repository.IndexOf(patients, id)
	if i < 0 {
		return nil, apperrors.NotFound("patient", nil)
	}
	if duplicateID(patients, req.IdentificationNumber, id) {
		return nil, apperrors.Conflict(ErrDuplicateIdentification.Error(), ErrDuplicateIdentification)
	}

	p := patients[i]
	req.Apply(&p)
	p.Touch(s.now())
	patients[i] = p

	if err := s.repos.Patients.Replace(ctx, patients); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionUpdate, model.AuditEntityPatient, p.ID)
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patients, err := s.repos.Patients.All(ctx)
	if err != nil {
		return apperrors.Internal(err)
	}
	patients, ok := repository.Remove(patients, id)
	if !ok {
		return apperrors.NotFound("patient", nil)
	}
	if err := s.repos.Patients.Replace(ctx, patients); err != nil {
		return apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionDelete, model.AuditEntityPatient, id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	p, ok, err := s.repos.Patients.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return &p, nil
}

// List returns patients whose name, identification number or e-mail
// contains search (case-insensitive), ordered by name.
func (s *Service) List(ctx context.Context, search string) ([]model.Patient, error) {
	patients, err := s.repos.Patients.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]model.Patient, 0, len(patients))
	for _, p := range patients {
		if search == "" ||
			strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.IdentificationNumber), search) ||
			strings.Contains(strings.ToLower(p.Email), search) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
