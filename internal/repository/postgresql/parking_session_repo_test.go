package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

var sessionColumnNames = []string{
	"id", "vehicle_number", "vehicle_class", "assigned_spot", "entry_time", "exit_time",
	"status", "duration_hours", "cost", "recorded_by_id", "recorded_by", "exit_recorded_by_id",
	"created_at", "updated_at",
}

func newSessionRepo(t *testing.T) (repository.ParkingSessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPgParkingSessionRepository(db), mock
}

func activeSession() *domain.ParkingSession {
	return &domain.ParkingSession{
		ID:            "s-1",
		VehicleNumber: "KA01AB1234",
		VehicleClass:  domain.VehicleCar,
		AssignedSpot:  7,
		EntryTime:     time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Status:        domain.SessionActive,
		RecordedByID:  "u-1",
		RecordedBy:    "Alice",
	}
}

func TestPgParkingSessionRepository_Create(t *testing.T) {
	insert := regexp.QuoteMeta("INSERT INTO parking_sessions")

	t.Run("returns stored row", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		s := activeSession()
		stamp := time.Date(2024, 3, 1, 8, 0, 1, 0, time.UTC)

		mock.ExpectQuery(insert).
			WithArgs("s-1", "KA01AB1234", "car", int64(7), s.EntryTime, "active", "u-1", "Alice").
			WillReturnRows(sqlmock.NewRows(sessionColumnNames).AddRow(
				"s-1", "KA01AB1234", "car", int64(7), s.EntryTime, nil,
				"active", nil, nil, "u-1", "Alice", nil,
				stamp, stamp,
			))

		created, err := repo.Create(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionActive, created.Status)
		assert.Equal(t, 7, created.AssignedSpot)
		assert.False(t, created.ExitTime.Valid)
		assert.False(t, created.Cost.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	dupes := map[string]error{
		"pgx":    &pgconn.PgError{Code: "23505", ConstraintName: constraintActiveVehicle},
		"lib/pq": &pq.Error{Code: "23505", Constraint: constraintActiveVehicle},
	}
	for name, dbErr := range dupes {
		t.Run("active vehicle violation via "+name, func(t *testing.T) {
			repo, mock := newSessionRepo(t)
			mock.ExpectQuery(insert).WillReturnError(dbErr)

			_, err := repo.Create(context.Background(), activeSession())
			assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("other constraint is not a duplicate entry", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		mock.ExpectQuery(insert).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "parking_sessions_pkey"})

		_, err := repo.Create(context.Background(), activeSession())
		require.Error(t, err)
		assert.False(t, errors.Is(err, repository.ErrDuplicateEntry))
	})
}

func TestPgParkingSessionRepository_FindActiveByVehicleNumber(t *testing.T) {
	query := regexp.QuoteMeta("WHERE vehicle_number = $1 AND status = $2")

	t.Run("no rows maps to no active session", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		mock.ExpectQuery(query).
			WithArgs("KA01AB1234", "active").
			WillReturnRows(sqlmock.NewRows(sessionColumnNames))

		_, err := repo.FindActiveByVehicleNumber(context.Background(), "KA01AB1234")
		assert.ErrorIs(t, err, repository.ErrNoActiveSession)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure is wrapped", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		mock.ExpectQuery(query).WillReturnError(sql.ErrConnDone)

		_, err := repo.FindActiveByVehicleNumber(context.Background(), "KA01AB1234")
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.False(t, errors.Is(err, repository.ErrNoActiveSession))
	})
}

func TestPgParkingSessionRepository_Complete(t *testing.T) {
	update := regexp.QuoteMeta("WHERE id = $6 AND status = $7")
	exit := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	completed := func() *domain.ParkingSession {
		s := activeSession()
		s.ExitTime = null.TimeFrom(exit)
		s.Status = domain.SessionCompleted
		s.DurationHours = null.FloatFrom(1.5)
		s.Cost = null.IntFrom(30)
		s.ExitRecordedByID = null.StringFrom("u-2")
		return s
	}

	t.Run("losing a concurrent exit maps to session not active", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		s := completed()
		mock.ExpectQuery(update).
			WithArgs(s.ExitTime, "completed", s.DurationHours, s.Cost, s.ExitRecordedByID, "s-1", "active").
			WillReturnRows(sqlmock.NewRows(sessionColumnNames))

		_, err := repo.Complete(context.Background(), s)
		assert.ErrorIs(t, err, repository.ErrSessionNotActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns completed row", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		s := completed()
		mock.ExpectQuery(update).
			WillReturnRows(sqlmock.NewRows(sessionColumnNames).AddRow(
				"s-1", "KA01AB1234", "car", int64(7), s.EntryTime, exit,
				"completed", 1.5, int64(30), "u-1", "Alice", "u-2",
				s.EntryTime, exit,
			))

		got, err := repo.Complete(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionCompleted, got.Status)
		assert.Equal(t, int64(30), got.Cost.Int64)
		assert.Equal(t, "u-2", got.ExitRecordedByID.String)
		assert.True(t, got.ExitTime.Time.Equal(exit))
	})
}

func TestPgParkingSessionRepository_SumCompletedCost(t *testing.T) {
	repo, mock := newSessionRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(cost), 0)::BIGINT")).
		WithArgs("completed").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))

	total, err := repo.SumCompletedCost(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
