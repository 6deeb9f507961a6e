package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/notifier"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Service struct {
	repos     *repository.Repositories
	notifier  notifier.Sender
	auditor   *audit.Service
	validator validator.Validator
	broker    messaging.Broker
	channel   string
	metrics   *metrics.Metrics
	logger    *logger.Logger
	loc       *time.Location
	now       func() time.Time

	// mu serializes every read-modify-write of the appointment collection.
	mu sync.Mutex
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone appointment dates and times are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithBroker(b messaging.Broker, channel string) Option {
	return func(s *Service) {
		s.broker = b
		s.channel = channel
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repos *repository.Repositories, sender notifier.Sender, auditor *audit.Service, opts ...Option) *Service {
	s := &Service{
		repos:     repos,
		notifier:  sender,
		auditor:   auditor,
		validator: validator.New(),
		broker:    messaging.NopBroker{},
		metrics:   metrics.NewNop(),
		logger:    logger.Nop(),
		loc:       time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auditor == nil {
		s.auditor = audit.Nop()
	}
	if s.notifier == nil {
		s.notifier = notifier.NewNoop(s.logger.Zerolog())
	}
	return s
}

// Book creates a scheduled appointment for the acting patient, or for
// req.PatientID when an admin books on someone's behalf.
func (s *Service) Book(ctx context.Context, actor model.Session, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	var c validator.Collector
	var patientID string
	switch actor.Role {
	case model.RolePatient:
		patientID = actor.UserID
	case model.RoleAdmin:
		c.Required("patientId", req.PatientID)
		patientID = req.PatientID
	case model.RoleMedicalStaff:
		return nil, apperrors.Forbidden("medical staff cannot book appointments")
	default:
		return nil, apperrors.Unauthorized(nil)
	}

	if err := c.Merge(s.validator.Validate(req)); err != nil {
		return nil, err
	}
	if err := c.Err(); err != nil {
		s.metrics.Bookings.WithLabelValues("invalid").Inc()
		return nil, err
	}

	now := s.now()
	at, err := SlotTime(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, apperrors.BadRequest("invalid appointment date or time", err)
	}
	if !at.After(now) {
		s.metrics.Bookings.WithLabelValues("past").Inc()
		return nil, apperrors.BadRequest(ErrNotInFuture.Error(), ErrNotInFuture)
	}
	// slots are compared and sorted as strings, so store one canonical form
	req.Date = at.Format(validator.DateLayout)
	req.Time = at.Format(validator.TimeLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	notice, recipient, err := s.resolveParties(ctx, actor, patientID, req)
	if err != nil {
		return nil, err
	}

	appointments, err := s.repos.Appointments.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if HasConflict(appointments, req.MedicalStaffID, req.Date, req.Time) {
		s.metrics.Bookings.WithLabelValues("conflict").Inc()
		return nil, apperrors.Conflict(ErrSlotTaken.Error(), ErrSlotTaken)
	}

	sent := false
	apt := model.Appointment{
		Base:           model.NewBase(now),
		PatientID:      patientID,
		MedicalStaffID: req.MedicalStaffID,
		SpecialtyID:    req.SpecialtyID,
		Date:           req.Date,
		Time:           req.Time,
		Status:         model.AppointmentStatusScheduled,
		Notes:          req.Notes,
		EmailSent:      &sent,
	}
	appointments = append(appointments, apt)
	if err := s.repos.Appointments.Replace(ctx, appointments); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.metrics.Bookings.WithLabelValues("booked").Inc()

	notice.AppointmentID = apt.ID
	if err := s.notifier.Send(ctx, recipient, notice); err != nil {
		s.metrics.NoticesSent.WithLabelValues("failed").Inc()
		s.logger.WithContext(ctx).Warn("confirmation notice failed", "appointment_id", apt.ID, "error", err.Error())
	} else {
		s.metrics.NoticesSent.WithLabelValues(noticeResult(s.notifier)).Inc()
		sent = true
		apt.EmailSent = &sent
		appointments[len(appointments)-1] = apt
		if err := s.repos.Appointments.Replace(ctx, appointments); err != nil {
			s.logger.WithContext(ctx).Error(err, "failed to record notice flag", "appointment_id", apt.ID)
		}
	}

	s.publish(ctx, model.EventAppointmentBooked, apt)
	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntityAppointment, apt.ID,
		zap.String("medical_staff_id", apt.MedicalStaffID),
		zap.String("date", apt.Date),
		zap.String("time", apt.Time),
	)
	return &apt, nil
}

// resolveParties checks that the patient, practitioner and specialty exist
// and belong together, and builds the notice text.
func (s *Service) resolveParties(ctx context.Context, actor model.Session, patientID string, req *model.CreateAppointmentRequest) (model.AppointmentNotice, string, error) {
	var notice model.AppointmentNotice

	staff, ok, err := s.repos.MedicalStaff.Get(ctx, req.MedicalStaffID)
	if err != nil {
		return notice, "", apperrors.Internal(err)
	}
	if !ok {
		return notice, "", apperrors.NotFound("medical staff", nil)
	}

	specialty, ok, err := s.repos.Specialties.Get(ctx, req.SpecialtyID)
	if err != nil {
		return notice, "", apperrors.Internal(err)
	}
	if !ok {
		return notice, "", apperrors.NotFound("specialty", nil)
	}
	if staff.SpecialtyID != specialty.ID {
		return notice, "", apperrors.Validation(apperrors.FieldError{
			Field:   "specialtyId",
			Message: "does not match the practitioner's specialty",
		})
	}

	patient, ok, err := s.repos.Users.Get(ctx, patientID)
	if err != nil {
		return notice, "", apperrors.Internal(err)
	}
	recipient := actor.Email
	patientName := actor.Name
	switch {
	case ok && patient.Role == model.RolePatient:
		recipient = patient.Email
		patientName = patient.Name
	case actor.Role == model.RoleAdmin:
		return notice, "", apperrors.NotFound("patient", nil)
	}

	notice = model.AppointmentNotice{
		PatientName:   patientName,
		StaffName:     staff.Name,
		SpecialtyName: specialty.Name,
		Date:          req.Date,
		Time:          req.Time,
	}
	return notice, recipient, nil
}

// Cancel moves a scheduled appointment to cancelled. Admins and the owning
// practitioner may always cancel; the owning patient only outside the
// cancellation window.
func (s *Service) Cancel(ctx context.Context, actor model.Session, id string) (*model.Appointment, error) {
	return s.mutate(ctx, actor, id, func(apt *model.Appointment, now time.Time) error {
		if err := transition(apt.Status, model.AppointmentStatusCancelled); err != nil {
			return apperrors.Conflict(err.Error(), err)
		}
		if actor.Role == model.RolePatient && !CanPatientCancel(*apt, now, s.loc) {
			return apperrors.New(apperrors.ErrForbidden, ErrCancellationWindowClosed.Error(), ErrCancellationWindowClosed)
		}
		apt.Status = model.AppointmentStatusCancelled
		return nil
	}, model.AuditActionCancel, model.EventAppointmentCancelled, true)
}

// Complete moves a scheduled appointment to completed. The appointment's
// date is not checked.
func (s *Service) Complete(ctx context.Context, actor model.Session, id string) (*model.Appointment, error) {
	if actor.Role == model.RolePatient {
		return nil, apperrors.Forbidden("patients cannot complete appointments")
	}
	return s.mutate(ctx, actor, id, func(apt *model.Appointment, _ time.Time) error {
		if err := transition(apt.Status, model.AppointmentStatusCompleted); err != nil {
			return apperrors.Conflict(err.Error(), err)
		}
		apt.Status = model.AppointmentStatusCompleted
		return nil
	}, model.AuditActionComplete, model.EventAppointmentCompleted, false)
}

// UpdateNotes sets the free text notes in any status.
func (s *Service) UpdateNotes(ctx context.Context, actor model.Session, id string, req *model.UpdateNotesRequest) (*model.Appointment, error) {
	if actor.Role == model.RolePatient {
		return nil, apperrors.Forbidden("patients cannot edit appointment notes")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, func(apt *model.Appointment, _ time.Time) error {
		apt.Notes = req.Notes
		return nil
	}, model.AuditActionUpdate, "", false)
}

// mutate runs change against one appointment under the lock and persists
// the collection when change succeeds. Nothing is written on error.
func (s *Service) mutate(
	ctx context.Context,
	actor model.Session,
	id string,
	change func(apt *model.Appointment, now time.Time) error,
	action, event string,
	patientAllowed bool,
) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointments, err := s.repos.Appointments.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	i := repository.IndexOf(appointments, id)
	if i < 0 {
		return nil, apperrors.NotFound("appointment", nil)
	}
	apt := appointments[i]

	if err := s.authorize(ctx, actor, apt, patientAllowed); err != nil {
		return nil, err
	}

	now := s.now()
	if err := change(&apt, now); err != nil {
		return nil, err
	}
	apt.Touch(now)
	appointments[i] = apt

	if err := s.repos.Appointments.Replace(ctx, appointments); err != nil {
		return nil, apperrors.Internal(err)
	}

	if event != "" {
		s.metrics.AppointmentStatuses.WithLabelValues(string(apt.Status), actor.Role.String()).Inc()
		s.publish(ctx, event, apt)
	}
	s.auditor.Log(ctx, actor, action, model.AuditEntityAppointment, apt.ID, zap.String("status", string(apt.Status)))
	return &apt, nil
}

// authorize checks that actor may act on apt.
func (s *Service) authorize(ctx context.Context, actor model.Session, apt model.Appointment, patientAllowed bool) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleMedicalStaff:
		staffID, err := s.staffID(ctx, actor)
		if err != nil {
			return err
		}
		if staffID == "" || apt.MedicalStaffID != staffID {
			return apperrors.Forbidden("appointment belongs to another practitioner")
		}
		return nil
	case model.RolePatient:
		if !patientAllowed {
			return apperrors.Forbidden("operation not allowed for patients")
		}
		if apt.PatientID != actor.UserID {
			return apperrors.Forbidden("appointment belongs to another patient")
		}
		return nil
	default:
		return apperrors.Unauthorized(nil)
	}
}

func (s *Service) staffID(ctx context.Context, actor model.Session) (string, error) {
	if actor.MedicalStaffID != "" {
		return actor.MedicalStaffID, nil
	}
	staff, err := s.repos.MedicalStaff.All(ctx)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return actor.StaffID(staff), nil
}

// Get returns one appointment visible to actor.
func (s *Service) Get(ctx context.Context, actor model.Session, id string) (*model.AppointmentView, error) {
	apt, ok, err := s.repos.Appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	if err := s.authorize(ctx, actor, apt, true); err != nil {
		if apperrors.HasCode(err, apperrors.ErrForbidden) {
			return nil, apperrors.NotFound("appointment", nil)
		}
		return nil, err
	}
	view := s.view(apt, s.now())
	return &view, nil
}

// List returns the appointments visible to actor that match filters,
// ordered by date and time.
func (s *Service) List(ctx context.Context, actor model.Session, filters model.AppointmentFilters) ([]model.AppointmentView, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "status", Message: "must be one of: scheduled completed cancelled"})
	}
	switch filters.Period {
	case model.PeriodAll, model.PeriodUpcoming, model.PeriodHistory:
	default:
		return nil, apperrors.Validation(apperrors.FieldError{Field: "period", Message: "must be one of: upcoming history"})
	}

	switch actor.Role {
	case model.RoleAdmin:
	case model.RolePatient:
		filters.PatientID = actor.UserID
	case model.RoleMedicalStaff:
		staffID, err := s.staffID(ctx, actor)
		if err != nil {
			return nil, err
		}
		if staffID == "" {
			return []model.AppointmentView{}, nil
		}
		filters.MedicalStaffID = staffID
	default:
		return nil, apperrors.Unauthorized(nil)
	}

	appointments, err := s.repos.Appointments.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	today := now.In(s.loc).Format("2006-01-02")
	out := make([]model.AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		if !matches(a, filters, today) {
			continue
		}
		out = append(out, s.view(a, now))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func matches(a model.Appointment, f model.AppointmentFilters, today string) bool {
	switch {
	case f.PatientID != "" && a.PatientID != f.PatientID:
		return false
	case f.MedicalStaffID != "" && a.MedicalStaffID != f.MedicalStaffID:
		return false
	case f.SpecialtyID != "" && a.SpecialtyID != f.SpecialtyID:
		return false
	case f.Status != "" && a.Status != f.Status:
		return false
	case f.Date != "" && a.Date != f.Date:
		return false
	case f.Period == model.PeriodUpcoming && a.Date < today:
		return false
	case f.Period == model.PeriodHistory && a.Date >= today:
		return false
	}
	return true
}

func (s *Service) view(a model.Appointment, now time.Time) model.AppointmentView {
	return model.AppointmentView{Appointment: a, CanCancel: CanPatientCancel(a, now, s.loc)}
}

func (s *Service) publish(ctx context.Context, event string, apt model.Appointment) {
	msg := messaging.Message{Type: event, Payload: apt}
	if err := s.broker.Publish(ctx, s.channel, msg); err != nil {
		s.logger.WithContext(ctx).Warn("failed to publish appointment event", "event", event, "appointment_id", apt.ID, "error", err.Error())
	}
}

// noticeResult labels a successful Send. Queueing senders only hand the
// notice to the worker, which counts the delivery itself.
func noticeResult(sender notifier.Sender) string {
	if q, ok := sender.(notifier.Queuer); ok && q.Queues() {
		return "queued"
	}
	return "sent"
}
