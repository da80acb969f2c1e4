package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	staffID := uuid.New()
	otherStaff := uuid.New()
	patientID := uuid.New()
	otherPatient := uuid.New()

	admin := Identity{UserID: uuid.New(), Roles: []Role{RoleAdmin}}
	personnel := Identity{UserID: uuid.New(), Roles: []Role{RolePersonnel}, StaffID: &staffID}
	patient := Identity{UserID: uuid.New(), Roles: []Role{RolePatient}, PatientID: &patientID}
	anonymous := Identity{}

	cases := []struct {
		name  string
		id    Identity
		op    Operation
		owner uuid.UUID
		allow bool
	}{
		{"admin creates any slot", admin, OpCreateSlot, otherStaff, true},
		{"admin releases any booking", admin, OpRelease, otherPatient, true},

		{"personnel creates own slot", personnel, OpCreateSlot, staffID, true},
		{"personnel updates own slot", personnel, OpUpdateSlot, staffID, true},
		{"personnel deletes own slot", personnel, OpDeleteSlot, staffID, true},
		{"personnel creates slot for other staff", personnel, OpCreateSlot, otherStaff, false},
		{"personnel deletes other staff's slot", personnel, OpDeleteSlot, otherStaff, false},
		{"personnel books a slot", personnel, OpBook, patientID, false},

		{"patient books for self", patient, OpBook, patientID, true},
		{"patient releases own booking", patient, OpRelease, patientID, true},
		{"patient moves own booking", patient, OpMove, patientID, true},
		{"patient books for someone else", patient, OpBook, otherPatient, false},
		{"patient releases someone else's booking", patient, OpRelease, otherPatient, false},
		{"patient creates a slot", patient, OpCreateSlot, staffID, false},

		{"patient reads", patient, OpRead, uuid.Nil, true},
		{"personnel reads", personnel, OpRead, uuid.Nil, true},
		{"anonymous reads", anonymous, OpRead, uuid.Nil, false},
		{"anonymous books", anonymous, OpBook, patientID, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.id, tc.op, tc.owner)
			if tc.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorizePersonnelWithoutStaffLink(t *testing.T) {
	// A Personnel role without a linked staff profile owns nothing.
	id := Identity{UserID: uuid.New(), Roles: []Role{RolePersonnel}}
	assert.ErrorIs(t, Authorize(id, OpCreateSlot, uuid.New()), ErrForbidden)
}
