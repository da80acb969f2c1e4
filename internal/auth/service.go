package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service exchanges credentials for identities. Token mechanics live in
// TokenIssuer; this only owns accounts and password checks.
type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Register creates a Patient account with a linked patient profile and
// returns its identity, ready for token issue.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.store.CreatePatientAccount(ctx, username, email, string(hash))
	if err != nil {
		return nil, err
	}

	s.log.Info("account registered", zap.String("username", username))
	return identityFor(account), nil
}

// Login verifies the password and returns the account's identity. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*Identity, error) {
	account, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return identityFor(account), nil
}

func identityFor(a *Account) *Identity {
	return &Identity{
		Subject:   a.Username,
		UserID:    a.ID,
		Roles:     a.Roles,
		PatientID: a.PatientID,
		StaffID:   a.StaffID,
	}
}
