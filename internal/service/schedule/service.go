package schedule

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

var ErrDuplicateSchedule = errors.New("a schedule already exists for this practitioner on this day")

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
	return &Service{
		repos:     repos,
		auditor:   auditor,
		validator: validator.New(),
		now:       now,
	}
}

// HasDuplicate reports whether another row (id other than excludeID) already
// assigns staffID on day. Shift times are deliberately not compared.
func HasDuplicate(schedules []model.WorkSchedule, staffID string, day int, excludeID string) bool {
	for _, ws := range schedules {
		if ws.ID != excludeID && ws.MedicalStaffID == staffID && ws.DayOfWeek == day {
			return true
		}
	}
	return false
}

func (s *Service) Create(ctx context.Context, actor model.Session, req *model.WorkScheduleRequest) (*model.WorkSchedule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	schedules, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if HasDuplicate(schedules, req.MedicalStaffID, *req.DayOfWeek, "") {
		return nil, apperrors.Conflict(ErrDuplicateSchedule.Error(), ErrDuplicateSchedule)
	}

	ws := model.WorkSchedule{
		Base:           model.NewBase(s.now()),
		MedicalStaffID: req.MedicalStaffID,
		WorkShiftID:    req.WorkShiftID,
		DayOfWeek:      *req.DayOfWeek,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}
	if err := s.repos.WorkSchedules.Replace(ctx, append(schedules, ws)); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntityWorkSchedule, ws.ID,
		zap.String("medical_staff_id", ws.MedicalStaffID),
		zap.Int("day_of_week", ws.DayOfWeek),
	)
	return &ws, nil
}

func (s *Service) Update(ctx context.Context, actor model.Session, id string, req *model.WorkScheduleRequest) (*model.WorkSchedule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	schedules, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	i := repository.IndexOf(schedules, id)
	if i < 0 {
		return nil, apperrors.NotFound("work schedule", nil)
	}
	if HasDuplicate(schedules, req.MedicalStaffID, *req.DayOfWeek, id) {
		return nil, apperrors.Conflict(ErrDuplicateSchedule.Error(), ErrDuplicateSchedule)
	}

	ws := schedules[i]
	ws.MedicalStaffID = req.MedicalStaffID
	ws.WorkShiftID = req.WorkShiftID
	ws.DayOfWeek = *req.DayOfWeek
	if req.IsActive != nil {
		ws.IsActive = *req.IsActive
	}
	ws.Touch(s.now())
	schedules[i] = ws

	if err := s.repos.WorkSchedules.Replace(ctx, schedules); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionUpdate, model.AuditEntityWorkSchedule, ws.ID)
	return &ws, nil
}

// load checks that the referenced practitioner and shift exist and returns
// the current schedules.
func (s *Service) load(ctx context.Context, req *model.WorkScheduleRequest) ([]model.WorkSchedule, error) {
	_, ok, err := s.repos.MedicalStaff.Get(ctx, req.MedicalStaffID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("medical staff", nil)
	}
	_, ok, err = s.repos.WorkShifts.Get(ctx, req.WorkShiftID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("work shift", nil)
	}

	schedules, err := s.repos.WorkSchedules.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return schedules, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedules, err := s.repos.WorkSchedules.All(ctx)
	if err != nil {
		return apperrors.Internal(err)
	}
	schedules, ok := repository.Remove(schedules, id)
	if !ok {
		return apperrors.NotFound("work schedule", nil)
	}
	if err := s.repos.WorkSchedules.Replace(ctx, schedules); err != nil {
		return apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionDelete, model.AuditEntityWorkSchedule, id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.WorkSchedule, error) {
	ws, ok, err := s.repos.WorkSchedules.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("work schedule", nil)
	}
	return &ws, nil
}

// List returns every schedule, or only staffID's when given, ordered by
// weekday.
func (s *Service) List(ctx context.Context, staffID string) ([]model.WorkSchedule, error) {
	schedules, err := s.repos.WorkSchedules.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	out := make([]model.WorkSchedule, 0, len(schedules))
	for _, ws := range schedules {
		if staffID == "" || ws.MedicalStaffID == staffID {
			out = append(out, ws)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}
