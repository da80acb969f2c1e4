package auth

import (
	"errors"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "Admin"
	RolePersonnel Role = "Personnel"
	RolePatient   Role = "Patient"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("operation not permitted for this identity")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Identity is the typed view of a bearer credential: who is calling and
// which profile rows they are linked to. It is decoded once at the boundary
// and passed around as a value, never as a claims map.
type Identity struct {
	Subject   string
	UserID    uuid.UUID
	Roles     []Role
	PatientID *uuid.UUID // set when Roles contains Patient
	StaffID   *uuid.UUID // set when Roles contains Personnel
}

func (id Identity) HasRole(r Role) bool {
	for _, have := range id.Roles {
		if have == r {
			return true
		}
	}
	return false
}
