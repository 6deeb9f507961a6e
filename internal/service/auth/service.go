package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionNotFound    = errors.New("session not found")
)

type Service struct {
	repos     *repository.Repositories
	tokens    auth.TokenService
	hasher    security.PasswordHasher
	auditor   *audit.Service
	validator validator.Validator
	now       func() time.Time
	mu        sync.Mutex
}

func NewService(repos *repository.Repositories, tokens auth.TokenService, hasher security.PasswordHasher,
	auditor *audit.Service, now func() time.Time) *Service {
	if auditor == nil {
		auditor = audit.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		repos:     repos,
		tokens:    tokens,
		hasher:    hasher,
		auditor:   auditor,
		validator: validator.New(),
		now:       now,
	}
}

// Login checks the credentials, opens a session and returns its token.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	var user *model.User
	for i := range users {
		if users[i].Username == req.Username {
			user = &users[i]
			break
		}
	}
	if user == nil || s.hasher.Compare(user.PasswordHash, req.Password) != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	session := model.Session{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Role:           user.Role,
		Name:           user.Name,
		Email:          user.Email,
		MedicalStaffID: user.MedicalStaffID,
		CreatedAt:      s.now(),
	}

	token, err := s.tokens.Issue(session.ID, user.Role.String())
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.repos.Sessions.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.repos.Sessions.Replace(ctx, append(sessions, session)); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Log(ctx, session, model.AuditActionLogin, model.AuditEntityUser, user.ID)
	return &model.LoginResponse{Token: token, User: user.View(), Session: session}, nil
}

// Register creates a patient or medical staff account. A medical staff
// account is linked to the practitioner with the same e-mail, if any.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role := model.RolePatient
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			return nil, apperrors.BadRequest("invalid role", err)
		}
		role = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, u := range users {
		if u.Username == req.Username {
			return nil, apperrors.Conflict(ErrUsernameTaken.Error(), ErrUsernameTaken)
		}
		if strings.EqualFold(u.Email, req.Email) {
			return nil, apperrors.Conflict(ErrEmailTaken.Error(), ErrEmailTaken)
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		Name:         req.Name,
		Email:        req.Email,
		CreatedAt:    s.now(),
	}
	if role == model.RoleMedicalStaff {
		staff, err := s.repos.MedicalStaff.All(ctx)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		for _, m := range staff {
			if m.Email != "" && strings.EqualFold(m.Email, req.Email) {
				user.MedicalStaffID = m.ID
				break
			}
		}
	}

	if err := s.repos.Users.Replace(ctx, append(users, user)); err != nil {
		return nil, apperrors.Internal(err)
	}

	actor := model.Session{UserID: user.ID, Role: user.Role, Name: user.Name}
	s.auditor.Log(ctx, actor, model.AuditActionRegister, model.AuditEntityUser, user.ID)

	view := user.View()
	return &view, nil
}

// Logout drops the session; its token stops resolving.
func (s *Service) Logout(ctx context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.repos.Sessions.All(ctx)
	if err != nil {
		return apperrors.Internal(err)
	}
	sessions, ok := repository.Remove(sessions, session.ID)
	if !ok {
		return apperrors.Unauthorized(ErrSessionNotFound)
	}
	if err := s.repos.Sessions.Replace(ctx, sessions); err != nil {
		return apperrors.Internal(err)
	}
	s.auditor.Log(ctx, session, model.AuditActionLogout, model.AuditEntityUser, session.UserID)
	return nil
}

// Resolve verifies a bearer token and loads the session it points at.
func (s *Service) Resolve(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	session, ok, err := s.repos.Sessions.Get(ctx, claims.Subject)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.Unauthorized(ErrSessionNotFound)
	}
	return &session, nil
}

// Me returns the account behind a session.
func (s *Service) Me(ctx context.Context, session model.Session) (*model.UserView, error) {
	user, ok, err := s.repos.Users.Get(ctx, session.UserID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	view := user.View()
	return &view, nil
}
