// Package clinical keeps consultation notes, per-patient medical history and
// exam results. Only practitioners and administrators may use it.
package clinical

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
	loc       *time.Location
	mu        sync.Mutex
}

func NewService(repos *repository.Repositories, auditor *audit.Service, now func() time.Time, loc *time.Location) *Service {
	if auditor == nil {
		auditor = audit.Nop()
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{repos: repos, auditor: auditor, validator: validator.New(), now: now, loc: loc}
}

func authorize(actor model.Session) error {
	if actor.Role == model.RoleAdmin || actor.Role == model.RoleMedicalStaff {
		return nil
	}
	return apperrors.Forbidden("clinical records are restricted to medical staff")
}

// CreateConsultation records a consultation authored by the acting
// practitioner. Administrators must name the practitioner explicitly.
func (s *Service) CreateConsultation(ctx context.Context, actor model.Session, req *model.ConsultationRequest) (*model.MedicalConsultation, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}

	var c validator.Collector
	if err := c.Merge(s.validator.Validate(req)); err != nil {
		return nil, err
	}

	staff, err := s.repos.MedicalStaff.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	author := req.MedicalStaffID
	if actor.Role == model.RoleMedicalStaff {
		author = actor.StaffID(staff)
		if author == "" {
			return nil, apperrors.Forbidden("session is not linked to a practitioner")
		}
	}
	if author == "" {
		c.Add("medicalStaffId", "is required")
	} else if repository.IndexOf(staff, author) < 0 {
		c.Add("medicalStaffId", "unknown practitioner")
	}
	if req.PatientID != "" {
		_, ok, err := s.repos.Patients.Get(ctx, req.PatientID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if !ok {
			c.Add("patientId", "unknown patient")
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	local := now.In(s.loc)
	mc := model.MedicalConsultation{
		Base:                model.NewBase(now),
		PatientID:           req.PatientID,
		MedicalStaffID:      author,
		AppointmentID:       req.AppointmentID,
		Date:                local.Format(validator.DateLayout),
		Time:                local.Format(validator.TimeLayout),
		ChiefComplaint:      req.ChiefComplaint,
		CurrentIllness:      req.CurrentIllness,
		VitalSigns:          req.VitalSigns,
		PhysicalExamination: req.PhysicalExamination,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	consultations, err := s.repos.Consultations.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.repos.Consultations.Replace(ctx, append(consultations, mc)); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntityConsultation, mc.ID)
	return &mc, nil
}

// ListConsultations filters by patient and practitioner when given, newest
// first.
func (s *Service) ListConsultations(ctx context.Context, actor model.Session, patientID, staffID string) ([]model.MedicalConsultation, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	consultations, err := s.repos.Consultations.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	out := make([]model.MedicalConsultation, 0, len(consultations))
	for _, mc := range consultations {
		if patientID != "" && mc.PatientID != patientID {
			continue
		}
		if staffID != "" && mc.MedicalStaffID != staffID {
			continue
		}
		out = append(out, mc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func (s *Service) GetConsultation(ctx context.Context, actor model.Session, id string) (*model.MedicalConsultation, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	mc, ok, err := s.repos.Consultations.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("consultation", nil)
	}
	return &mc, nil
}

// SaveHistory creates or replaces the single history record of a patient.
func (s *Service) SaveHistory(ctx context.Context, actor model.Session, patientID string, req *model.MedicalHistoryRequest) (*model.MedicalHistory, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	_, ok, err := s.repos.Patients.Get(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.repos.Histories.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	action := model.AuditActionCreate
	h := model.MedicalHistory{Base: model.NewBase(now), PatientID: patientID}
	for _, existing := range histories {
		if existing.PatientID == patientID {
			h = existing
			action = model.AuditActionUpdate
			break
		}
	}
	req.Apply(&h)
	h.Touch(now)

	if err := s.repos.Histories.Replace(ctx, repository.Upsert(histories, h)); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, action, model.AuditEntityHistory, h.ID)
	return &h, nil
}

func (s *Service) GetHistory(ctx context.Context, actor model.Session, patientID string) (*model.MedicalHistory, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	histories, err := s.repos.Histories.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, h := range histories {
		if h.PatientID == patientID {
			return &h, nil
		}
	}
	return nil, apperrors.NotFound("medical history", nil)
}

func (s *Service) CreateExam(ctx context.Context, actor model.Session, req *model.MedicalExamRequest) (*model.MedicalExam, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}

	var c validator.Collector
	if err := c.Merge(s.validator.Validate(req)); err != nil {
		return nil, err
	}
	if req.ConsultationID != "" {
		_, ok, err := s.repos.Consultations.Get(ctx, req.ConsultationID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if !ok {
			c.Add("consultationId", "unknown consultation")
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	exam := model.MedicalExam{
		Base:           model.NewBase(s.now()),
		ConsultationID: req.ConsultationID,
		ExamType:       req.ExamType,
		ExamName:       req.ExamName,
		Results:        req.Results,
		Interpretation: req.Interpretation,
		Date:           req.Date,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exams, err := s.repos.Exams.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.repos.Exams.Replace(ctx, append(exams, exam)); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntityExam, exam.ID)
	return &exam, nil
}

func (s *Service) ListExams(ctx context.Context, actor model.Session, consultationID string) ([]model.MedicalExam, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	exams, err := s.repos.Exams.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if consultationID == "" {
		return exams, nil
	}
	out := make([]model.MedicalExam, 0, len(exams))
	for _, e := range exams {
		if e.ConsultationID == consultationID {
			out = append(out, e)
		}
	}
	return out, nil
}
