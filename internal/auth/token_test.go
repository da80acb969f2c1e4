package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	patientID := uuid.New()
	id := Identity{
		Subject:   "pia.holm",
		UserID:    uuid.New(),
		Roles:     []Role{RolePatient},
		PatientID: &patientID,
	}

	token, err := issuer.Issue(id)
	require.NoError(t, err)

	parsed, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id.Subject, parsed.Subject)
	assert.Equal(t, id.UserID, parsed.UserID)
	assert.Equal(t, id.Roles, parsed.Roles)
	require.NotNil(t, parsed.PatientID)
	assert.Equal(t, patientID, *parsed.PatientID)
	assert.Nil(t, parsed.StaffID)
}

func TestTokenCarriesStaffLink(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	staffID := uuid.New()
	token, err := issuer.Issue(Identity{
		Subject: "nina.fields",
		UserID:  uuid.New(),
		Roles:   []Role{RolePersonnel},
		StaffID: &staffID,
	})
	require.NoError(t, err)

	parsed, err := issuer.Parse(token)
	require.NoError(t, err)
	require.NotNil(t, parsed.StaffID)
	assert.Equal(t, staffID, *parsed.StaffID)
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	issuedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issuedAt }

	token, err := issuer.Issue(Identity{
		Subject: "pia.holm",
		UserID:  uuid.New(),
		Roles:   []Role{RolePatient},
	})
	require.NoError(t, err)

	// Still valid just before expiry.
	issuer.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	_, err = issuer.Parse(token)
	assert.NoError(t, err)

	issuer.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue(Identity{
		Subject: "pia.holm",
		UserID:  uuid.New(),
		Roles:   []Role{RolePatient},
	})
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
