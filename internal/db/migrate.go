package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is applied on startup. Every statement is idempotent so multiple
// instances racing at boot is harmless.
const schema = `
CREATE TABLE IF NOT EXISTS personnel (
	id           uuid PRIMARY KEY,
	name         text NOT NULL,
	auth_user_id uuid,
	created_at   timestamptz NOT NULL DEFAULT now(),
	updated_at   timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS patients (
	id           uuid PRIMARY KEY,
	name         text NOT NULL,
	email        text,
	auth_user_id uuid,
	created_at   timestamptz NOT NULL DEFAULT now(),
	updated_at   timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS accounts (
	id            uuid PRIMARY KEY,
	username      text NOT NULL UNIQUE,
	password_hash text NOT NULL,
	roles         text[] NOT NULL,
	patient_id    uuid REFERENCES patients(id),
	personnel_id  uuid REFERENCES personnel(id),
	created_at    timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS slots (
	id           uuid PRIMARY KEY,
	staff_id     uuid NOT NULL REFERENCES personnel(id),
	date         date NOT NULL,
	start_minute smallint NOT NULL,
	end_minute   smallint NOT NULL,
	created_at   timestamptz NOT NULL DEFAULT now(),
	updated_at   timestamptz NOT NULL DEFAULT now(),
	CHECK (end_minute > start_minute)
);

CREATE INDEX IF NOT EXISTS idx_slots_staff_date ON slots (staff_id, date);

CREATE TABLE IF NOT EXISTS bookings (
	id         uuid PRIMARY KEY,
	slot_id    uuid NOT NULL UNIQUE REFERENCES slots(id),
	patient_id uuid NOT NULL REFERENCES patients(id),
	staff_id   uuid NOT NULL,
	date       date NOT NULL,
	notes      text NOT NULL DEFAULT '',
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
`

// Migrate creates the schema if it does not exist yet. The UNIQUE constraint
// on bookings.slot_id is what makes two concurrent bookings of one slot
// resolve to exactly one success.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
