package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errAccountNotFound = errors.New("account not found")

// Account is a login credential linked to at most one patient and one
// personnel profile.
type Account struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Roles        []Role
	PatientID    *uuid.UUID
	StaffID      *uuid.UUID
	CreatedAt    time.Time
}

type Store interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	// CreatePatientAccount registers a new account with the Patient role and
	// its linked patient profile in one step.
	CreatePatientAccount(ctx context.Context, username, email, passwordHash string) (*Account, error)
}

// PgStore keeps accounts in Postgres.

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

var _ Store = (*PgStore)(nil)

func (s *PgStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	var roles []string

	row := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, roles, patient_id, personnel_id, created_at
		FROM accounts
		WHERE username = $1
	`, username)

	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &roles, &a.PatientID, &a.StaffID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errAccountNotFound
		}
		return nil, err
	}

	for _, r := range roles {
		a.Roles = append(a.Roles, Role(r))
	}
	return &a, nil
}

func (s *PgStore) CreatePatientAccount(ctx context.Context, username, email, passwordHash string) (*Account, error) {
	accountID := uuid.New()
	patientID := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO patients (id, name, email, auth_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, patientID, username, email, accountID)
	if err != nil {
		return nil, fmt.Errorf("insert patient profile: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (id, username, password_hash, roles, patient_id, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, accountID, username, passwordHash, []string{string(RolePatient)}, patientID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &Account{
		ID:           accountID,
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        []Role{RolePatient},
		PatientID:    &patientID,
	}, nil
}

// MemStore is an in-memory Store for tests.

type MemStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[string]Account)}
}

var _ Store = (*MemStore)(nil)

// Put inserts or replaces an account, for test fixtures.
func (s *MemStore) Put(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Username] = a
}

func (s *MemStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[username]
	if !ok {
		return nil, errAccountNotFound
	}
	return &a, nil
}

func (s *MemStore) CreatePatientAccount(ctx context.Context, username, email, passwordHash string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[username]; ok {
		return nil, ErrUsernameTaken
	}

	patientID := uuid.New()
	a := Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        []Role{RolePatient},
		PatientID:    &patientID,
		CreatedAt:    time.Now(),
	}
	s.accounts[username] = a
	return &a, nil
}
