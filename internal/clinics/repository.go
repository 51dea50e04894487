package clinics

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrClinicNotFound is returned when a clinic does not exist or belongs to
// another doctor.
var ErrClinicNotFound = errors.New("clinic not found")

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads the clinic directory.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("clinics: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(db querier) *Repository {
	if db == nil {
		panic("clinics: querier required")
	}
	return &Repository{db: db}
}

// ListByDoctor returns all clinics for the doctor, ordered by name.
func (r *Repository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Clinic, error) {
	query := `
		SELECT id, doctor_id, name, address, created_at
		FROM clinics
		WHERE doctor_id = $1
		ORDER BY name, id
	`
	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("clinics: list by doctor: %w", err)
	}
	defer rows.Close()

	var out []Clinic
	for rows.Next() {
		var c Clinic
		if err := rows.Scan(&c.ID, &c.DoctorID, &c.Name, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("clinics: scan clinic: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetForDoctor returns one clinic scoped to the doctor.
func (r *Repository) GetForDoctor(ctx context.Context, doctorID, clinicID uuid.UUID) (*Clinic, error) {
	query := `
		SELECT id, doctor_id, name, address, created_at
		FROM clinics
		WHERE id = $1 AND doctor_id = $2
	`
	var c Clinic
	err := r.db.QueryRow(ctx, query, clinicID, doctorID).Scan(&c.ID, &c.DoctorID, &c.Name, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicNotFound
		}
		return nil, fmt.Errorf("clinics: get for doctor: %w", err)
	}
	return &c, nil
}
