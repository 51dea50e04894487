package clinics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestListByDoctor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)

	doctorID := uuid.New()
	clinicID := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "doctor_id", "name", "address", "created_at"}).
		AddRow(clinicID, doctorID, "Downtown Practice", "12 Main St", now)
	mock.ExpectQuery("SELECT id, doctor_id, name, address").WithArgs(doctorID).WillReturnRows(rows)

	clinics, err := repo.ListByDoctor(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("ListByDoctor: %v", err)
	}
	if len(clinics) != 1 || clinics[0].ID != clinicID || clinics[0].Name != "Downtown Practice" {
		t.Fatalf("unexpected clinics: %#v", clinics)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetForDoctorNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)

	doctorID := uuid.New()
	clinicID := uuid.New()
	mock.ExpectQuery("SELECT id, doctor_id, name, address").
		WithArgs(clinicID, doctorID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "doctor_id", "name", "address", "created_at"}))

	_, err = repo.GetForDoctor(context.Background(), doctorID, clinicID)
	if !errors.Is(err, ErrClinicNotFound) {
		t.Fatalf("expected ErrClinicNotFound, got %v", err)
	}
}
