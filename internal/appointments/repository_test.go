package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewRepositoryWithQuerier(mock)
}

func TestInsertReturnsID(t *testing.T) {
	mock, repo := newMockRepo(t)

	appt := &Appointment{
		DoctorID:  uuid.New(),
		ClinicID:  uuid.New(),
		PatientID: uuid.New(),
		StartsAt:  time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		EndsAt:    time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC),
	}
	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), appt.DoctorID, appt.ClinicID, appt.PatientID, appt.StartsAt, appt.EndsAt, "scheduled", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	id, err := repo.Insert(context.Background(), appt)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected non-nil appointment id")
	}
	if appt.Status != StatusScheduled {
		t.Fatalf("expected scheduled status, got %s", appt.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertUniqueViolationIsSlotTaken(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uniq_appointments_active_slot"})

	_, err := repo.Insert(context.Background(), &Appointment{})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestInsertSerializationFailureIsTxConflict(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "40001"})

	_, err := repo.Insert(context.Background(), &Appointment{})
	if !errors.Is(err, ErrTxConflict) {
		t.Fatalf("expected ErrTxConflict, got %v", err)
	}
}

func TestListOccupyingBetween(t *testing.T) {
	mock, repo := newMockRepo(t)

	doctorID := uuid.New()
	from := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	apptID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "doctor_id", "clinic_id", "patient_id", "starts_at", "ends_at", "status", "notes", "created_at"}).
		AddRow(apptID, doctorID, uuid.New(), uuid.New(), from.Add(10*time.Hour), from.Add(11*time.Hour), "scheduled", "", from)
	mock.ExpectQuery("SELECT id, doctor_id, clinic_id").WithArgs(doctorID, from, to).WillReturnRows(rows)

	appts, err := repo.ListOccupyingBetween(context.Background(), doctorID, from, to)
	if err != nil {
		t.Fatalf("ListOccupyingBetween: %v", err)
	}
	if len(appts) != 1 || appts[0].ID != apptID || appts[0].Status != StatusScheduled {
		t.Fatalf("unexpected appointments: %#v", appts)
	}
}

func TestTransitionGuarded(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Transition(context.Background(), id, StatusCancelled); err != nil {
		t.Fatalf("Transition: %v", err)
	}
}

func TestTransitionAlreadyTerminal(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, "completed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "doctor_id", "clinic_id", "patient_id", "starts_at", "ends_at", "status", "notes", "created_at"}).
		AddRow(id, uuid.New(), uuid.New(), uuid.New(), now, now.Add(time.Hour), "cancelled", "", now)
	mock.ExpectQuery("SELECT id, doctor_id, clinic_id").WithArgs(id).WillReturnRows(rows)

	err := repo.Transition(context.Background(), id, StatusCompleted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransitionMissingAppointment(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT id, doctor_id, clinic_id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "doctor_id", "clinic_id", "patient_id", "starts_at", "ends_at", "status", "notes", "created_at"}))

	err := repo.Transition(context.Background(), id, StatusCancelled)
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestTransitionRejectsScheduledTarget(t *testing.T) {
	_, repo := newMockRepo(t)

	err := repo.Transition(context.Background(), uuid.New(), StatusScheduled)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
