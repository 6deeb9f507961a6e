package model

import (
	"fmt"
	"time"
)

// Role is the closed set of actor kinds.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RolePatient
	RoleMedicalStaff
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RolePatient:
		return "patient"
	case RoleMedicalStaff:
		return "medical_staff"
	default:
		return "unknown"
	}
}

// ParseRole maps the wire form back to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "patient":
		return RolePatient, nil
	case "medical_staff":
		return RoleMedicalStaff, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if r == RoleUnknown {
		return nil, fmt.Errorf("cannot marshal unknown role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User represents an account able to log in
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"passwordHash"`
	Role           Role      `json:"role"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	MedicalStaffID string    `json:"medicalStaffId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserView is what the API returns for a user.
type UserView struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Role           Role   `json:"role"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	MedicalStaffID string `json:"medicalStaffId,omitempty"`
}

func (u User) View() UserView {
	return UserView{
		ID:             u.ID,
		Username:       u.Username,
		Role:           u.Role,
		Name:           u.Name,
		Email:          u.Email,
		MedicalStaffID: u.MedicalStaffID,
	}
}

// Session is held until explicit logout.
type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Role           Role      `json:"role"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	MedicalStaffID string    `json:"medicalStaffId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,loose_email"`
	Role            string `json:"role" validate:"omitempty,oneof=patient medical_staff"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	User    UserView `json:"user"`
	Session Session  `json:"session"`
}

func (u User) GetID() string    { return u.ID }
func (s Session) GetID() string { return s.ID }

// StaffID resolves which practitioner the session acts as. The explicit link
// wins; otherwise the staff row is matched by email, then by display name.
func (s Session) StaffID(staff []MedicalStaff) string {
	if s.Role != RoleMedicalStaff {
		return ""
	}
	if s.MedicalStaffID != "" {
		return s.MedicalStaffID
	}
	for _, m := range staff {
		if s.Email != "" && m.Email == s.Email {
			return m.ID
		}
	}
	for _, m := range staff {
		if m.Name == s.Name {
			return m.ID
		}
	}
	return ""
}
