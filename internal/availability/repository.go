package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/platform/internal/civiltime"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads availability rules.
type Repository struct {
	db querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(db querier) *Repository {
	if db == nil {
		panic("availability: querier required")
	}
	return &Repository{db: db}
}

// ListActiveByClinic returns the active rules for one clinic.
func (r *Repository) ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]Rule, error) {
	query := `
		SELECT id, clinic_id, weekday, start_time, end_time, slot_duration_minutes, is_active
		FROM availability_rules
		WHERE clinic_id = $1 AND is_active
		ORDER BY weekday, start_time, id
	`
	rows, err := r.db.Query(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("availability: list by clinic: %w", err)
	}
	return scanRules(rows)
}

// ListActiveByDoctor returns the active rules across all of the doctor's
// clinics.
func (r *Repository) ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Rule, error) {
	query := `
		SELECT ar.id, ar.clinic_id, ar.weekday, ar.start_time, ar.end_time, ar.slot_duration_minutes, ar.is_active
		FROM availability_rules ar
		JOIN clinics c ON c.id = ar.clinic_id
		WHERE c.doctor_id = $1 AND ar.is_active
		ORDER BY ar.weekday, ar.start_time, ar.id
	`
	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("availability: list by doctor: %w", err)
	}
	return scanRules(rows)
}

func scanRules(rows pgx.Rows) ([]Rule, error) {
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var rule Rule
		var weekday int
		if err := rows.Scan(&rule.ID, &rule.ClinicID, &weekday, &rule.StartTime, &rule.EndTime, &rule.SlotMinutes, &rule.IsActive); err != nil {
			return nil, fmt.Errorf("availability: scan rule: %w", err)
		}
		rule.Weekday = civiltime.InternalWeekday(weekday)
		out = append(out, rule)
	}
	return out, rows.Err()
}
