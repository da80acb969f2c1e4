package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abrahamm4/HomeCare/internal/auth"
	"github.com/Abrahamm4/HomeCare/internal/db"
)

// Demo credentials: admin/password123, staff1../staffN, patient usernames
// printed as they are created. All seeded accounts share one password.
const seedPassword = "password123"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash seed password: %v", err)
	}

	if err := seedAdmin(context.Background(), pool, string(hash)); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	staffIDs, err := seedPersonnel(context.Background(), pool, string(hash), 10)
	if err != nil {
		log.Fatalf("seed personnel: %v", err)
	}

	if err := seedPatients(context.Background(), pool, string(hash), 50); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	if err := seedSlots(context.Background(), pool, staffIDs); err != nil {
		log.Fatalf("seed slots: %v", err)
	}

	log.Println("seed complete")
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, hash string) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO accounts (id, username, password_hash, roles, created_at)
		VALUES ($1, 'admin', $2, $3, now())
		ON CONFLICT (username) DO NOTHING
	`, uuid.New(), hash, []string{string(auth.RoleAdmin)})
	if err != nil {
		return err
	}
	log.Println("admin account seeded")
	return nil
}

func seedPersonnel(ctx context.Context, pool *pgxpool.Pool, hash string, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d personnel", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		staffID := uuid.New()
		accountID := uuid.New()
		name := gofakeit.Name()
		username := gofakeit.Username()

		_, err := tx.Exec(ctx, `
			INSERT INTO personnel (id, name, auth_user_id, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, staffID, name, accountID)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO accounts (id, username, password_hash, roles, personnel_id, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
		`, accountID, username, hash, []string{string(auth.RolePersonnel)}, staffID)
		if err != nil {
			return nil, err
		}

		log.Printf("personnel account: %s", username)
		ids = append(ids, staffID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("personnel seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, hash string, count int) error {
	log.Printf("seeding %d patients", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		patientID := uuid.New()
		accountID := uuid.New()
		name := gofakeit.Name()
		email := gofakeit.Email()
		username := gofakeit.Username()

		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, name, email, auth_user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, patientID, name, email, accountID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO accounts (id, username, password_hash, roles, patient_id, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
		`, accountID, username, hash, []string{string(auth.RolePatient)}, patientID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("patients seeded")
	return nil
}

// seedSlots publishes hourly 09:00-17:00 slots per staff member for the next
// 14 days.
func seedSlots(ctx context.Context, pool *pgxpool.Pool, staffIDs []uuid.UUID) error {
	log.Printf("seeding slots for %d staff", len(staffIDs))

	today := time.Now().UTC().Truncate(24 * time.Hour)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	total := 0
	for _, staffID := range staffIDs {
		for day := 0; day < 14; day++ {
			date := today.AddDate(0, 0, day)
			for hour := 9; hour < 17; hour++ {
				_, err := tx.Exec(ctx, `
					INSERT INTO slots (id, staff_id, date, start_minute, end_minute, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, now(), now())
				`, uuid.New(), staffID, date, hour*60, (hour+1)*60)
				if err != nil {
					return err
				}
				total++
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("slots seeded: %d", total)
	return nil
}
