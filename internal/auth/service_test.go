package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(NewMemStore(), zap.NewNop())
	ctx := context.Background()

	id, err := svc.Register(ctx, "pia.holm", "pia@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "pia.holm", id.Subject)
	assert.Equal(t, []Role{RolePatient}, id.Roles)
	require.NotNil(t, id.PatientID, "registration links a patient profile")

	logged, err := svc.Login(ctx, "pia.holm", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, id.UserID, logged.UserID)
	assert.Equal(t, id.PatientID, logged.PatientID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewService(NewMemStore(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, "pia.holm", "pia@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "pia.holm", "other@example.com", "another-pass")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(NewMemStore(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, "pia.holm", "pia@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "pia.holm", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewService(NewMemStore(), zap.NewNop())

	_, err := svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
