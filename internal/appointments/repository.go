package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists appointments. Occupancy exclusiveness is enforced by
// a partial unique index on (doctor_id, clinic_id, starts_at) covering the
// scheduled and completed states, so a lost booking race surfaces as a
// unique violation rather than a double booking.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(db querier) *Repository {
	if db == nil {
		panic("appointments: querier required")
	}
	return &Repository{db: db}
}

// Insert creates a scheduled appointment. A unique violation on the slot
// index maps to ErrSlotTaken; a serialization failure maps to ErrTxConflict.
func (r *Repository) Insert(ctx context.Context, appt *Appointment) (uuid.UUID, error) {
	id := uuid.New()
	query := `
		INSERT INTO appointments (id, doctor_id, clinic_id, patient_id, starts_at, ends_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	var createdAt time.Time
	err := r.db.QueryRow(ctx, query,
		id,
		appt.DoctorID,
		appt.ClinicID,
		appt.PatientID,
		appt.StartsAt,
		appt.EndsAt,
		string(StatusScheduled),
		appt.Notes,
	).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return uuid.Nil, ErrSlotTaken
			case pgSerializationFailure:
				return uuid.Nil, ErrTxConflict
			}
		}
		return uuid.Nil, fmt.Errorf("appointments: insert: %w", err)
	}
	appt.ID = id
	appt.Status = StatusScheduled
	appt.CreatedAt = createdAt
	return id, nil
}

// ListOccupyingBetween returns scheduled and completed appointments for the
// doctor whose start falls in [from, to).
func (r *Repository) ListOccupyingBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	query := `
		SELECT id, doctor_id, clinic_id, patient_id, starts_at, ends_at, status, notes, created_at
		FROM appointments
		WHERE doctor_id = $1
		  AND starts_at >= $2 AND starts_at < $3
		  AND status IN ('scheduled', 'completed')
		ORDER BY starts_at, clinic_id
	`
	rows, err := r.db.Query(ctx, query, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("appointments: list occupying: %w", err)
	}
	return scanAppointments(rows)
}

// ListBetween returns all appointments for the doctor in [from, to),
// regardless of status. Used by the admin surface.
func (r *Repository) ListBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	query := `
		SELECT id, doctor_id, clinic_id, patient_id, starts_at, ends_at, status, notes, created_at
		FROM appointments
		WHERE doctor_id = $1
		  AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at, clinic_id
	`
	rows, err := r.db.Query(ctx, query, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("appointments: list between: %w", err)
	}
	return scanAppointments(rows)
}

// Get returns one appointment by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `
		SELECT id, doctor_id, clinic_id, patient_id, starts_at, ends_at, status, notes, created_at
		FROM appointments
		WHERE id = $1
	`
	var appt Appointment
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.DoctorID,
		&appt.ClinicID,
		&appt.PatientID,
		&appt.StartsAt,
		&appt.EndsAt,
		&status,
		&appt.Notes,
		&appt.CreatedAt,
	)
	appt.Status = Status(status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	return &appt, nil
}

// Transition moves a scheduled appointment to completed or cancelled. The
// status guard in the WHERE clause keeps the transition a single atomic
// statement, matching the write discipline of the booking insert.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, to Status) error {
	if to != StatusCompleted && to != StatusCancelled {
		return &ValidationError{Field: "status", Reason: "must be completed or cancelled"}
	}
	query := `
		UPDATE appointments
		SET status = $2
		WHERE id = $1 AND status = 'scheduled'
	`
	ct, err := r.db.Exec(ctx, query, id, string(to))
	if err != nil {
		return fmt.Errorf("appointments: transition: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Distinguish missing from already-transitioned.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var appt Appointment
		var status string
		if err := rows.Scan(
			&appt.ID,
			&appt.DoctorID,
			&appt.ClinicID,
			&appt.PatientID,
			&appt.StartsAt,
			&appt.EndsAt,
			&status,
			&appt.Notes,
			&appt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		appt.Status = Status(status)
		out = append(out, appt)
	}
	return out, rows.Err()
}
