package shift

import (
	"context"
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

func (s *Service) validate(req *model.WorkShiftRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	start, _ := time.Parse(validator.TimeLayout, req.StartTime)
	end, _ := time.Parse(validator.TimeLayout, req.EndTime)
	if !start.Before(end) {
		return apperrors.Validation(apperrors.FieldError{Field: "endTime", Message: "must be after startTime"})
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor model.Session, req *model.WorkShiftRequest) (*model.WorkShift, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shifts, err := s.repos.WorkShifts.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	ws := model.WorkShift{Base: model.NewBase(s.now()), IsActive: true}
	apply(&ws, req)

	if err := s.repos.WorkShifts.Replace(ctx, append(shifts, ws)); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntityWorkShift, ws.ID)
	return &ws, nil
}

func (s *Service) Update(ctx context.Context, actor model.Session, id string, req *model.WorkShiftRequest) (*model.WorkShift, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shifts, err := s.repos.WorkShifts.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	i := repository.IndexOf(shifts, id)
	if i < 0 {
		return nil, apperrors.NotFound("work shift", nil)
	}
	ws := shifts[i]
	apply(&ws, req)
	ws.Touch(s.now())
	shifts[i] = ws

	if err := s.repos.WorkShifts.Replace(ctx, shifts); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionUpdate, model.AuditEntityWorkShift, ws.ID)
	return &ws, nil
}

func apply(ws *model.WorkShift, req *model.WorkShiftRequest) {
	ws.Name = req.Name
	ws.StartTime = req.StartTime
	ws.EndTime = req.EndTime
	ws.Description = req.Description
	if req.IsActive != nil {
		ws.IsActive = *req.IsActive
	}
}

func (s *Service) Delete(ctx context.Context, actor model.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shifts, err := s.repos.WorkShifts.All(ctx)
	if err != nil {
		return apperrors.Internal(err)
	}
	shifts, ok := repository.Remove(shifts, id)
	if !ok {
		return apperrors.NotFound("work shift", nil)
	}
	if err := s.repos.WorkShifts.Replace(ctx, shifts); err != nil {
		return apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionDelete, model.AuditEntityWorkShift, id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.WorkShift, error) {
	ws, ok, err := s.repos.WorkShifts.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("work shift", nil)
	}
	return &ws, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]model.WorkShift, error) {
	shifts, err := s.repos.WorkShifts.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !activeOnly {
		return shifts, nil
	}
	out := make([]model.WorkShift, 0, len(shifts))
	for _, ws := range shifts {
		if ws.IsActive {
			out = append(out, ws)
		}
	}
	return out, nil
}
