package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

const sessionColumns = `id, vehicle_number, vehicle_class, assigned_spot, entry_time, exit_time,
	status, duration_hours, cost, recorded_by_id, recorded_by, exit_recorded_by_id,
	created_at, updated_at`

type pgParkingSessionRepository struct {
	db *sql.DB
}

func NewPgParkingSessionRepository(db *sql.DB) repository.ParkingSessionRepository {
	return &pgParkingSessionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.ParkingSession, error) {
	s := &domain.ParkingSession{}
	err := row.Scan(
		&s.ID, &s.VehicleNumber, &s.VehicleClass, &s.AssignedSpot, &s.EntryTime, &s.ExitTime,
		&s.Status, &s.DurationHours, &s.Cost, &s.RecordedByID, &s.RecordedBy, &s.ExitRecordedByID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.EntryTime = s.EntryTime.In(time.UTC)
	if s.ExitTime.Valid {
		s.ExitTime.Time = s.ExitTime.Time.In(time.UTC)
	}
	s.CreatedAt = s.CreatedAt.In(time.UTC)
	s.UpdatedAt = s.UpdatedAt.In(time.UTC)
	return s, nil
}

func (r *pgParkingSessionRepository) Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `INSERT INTO parking_sessions
	           (id, vehicle_number, vehicle_class, assigned_spot, entry_time, status,
	            recorded_by_id, recorded_by, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING ` + sessionColumns

	id := session.ID
	if id == "" {
		id = uuid.NewString()
	}

	created, err := scanSession(r.db.QueryRowContext(ctx, query,
		id, session.VehicleNumber, string(session.VehicleClass), session.AssignedSpot, session.EntryTime,
		string(session.Status), session.RecordedByID, session.RecordedBy,
	))
	if err != nil {
		if isUniqueViolation(err, constraintActiveVehicle) {
			return nil, fmt.Errorf("%w: vehicle '%s' already has an active session", repository.ErrDuplicateEntry, session.VehicleNumber)
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Create: %w", err)
	}
	return created, nil
}

func (r *pgParkingSessionRepository) FindActiveByVehicleNumber(ctx context.Context, vehicleNumber string) (*domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + `
	           FROM parking_sessions
	           WHERE vehicle_number = $1 AND status = $2`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, vehicleNumber, string(domain.SessionActive)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindActiveByVehicleNumber: %w", err)
	}
	return session, nil
}

// Complete is a single compare-and-set UPDATE guarded by status = 'active'.
func (r *pgParkingSessionRepository) Complete(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `UPDATE parking_sessions
	           SET exit_time = $1, status = $2, duration_hours = $3, cost = $4,
	               exit_recorded_by_id = $5, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $6 AND status = $7
	           RETURNING ` + sessionColumns

	updated, err := scanSession(r.db.QueryRowContext(ctx, query,
		session.ExitTime, string(session.Status), session.DurationHours, session.Cost,
		session.ExitRecordedByID, session.ID, string(domain.SessionActive),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %s", repository.ErrSessionNotActive, session.ID)
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Complete: %w", err)
	}
	return updated, nil
}

func (r *pgParkingSessionRepository) FindActive(ctx context.Context) ([]domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + `
	           FROM parking_sessions
	           WHERE status = $1
	           ORDER BY entry_time DESC`
	return r.list(ctx, "FindActive", query, string(domain.SessionActive))
}

func (r *pgParkingSessionRepository) FindCompleted(ctx context.Context) ([]domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + `
	           FROM parking_sessions
	           WHERE status = $1
	           ORDER BY exit_time DESC`
	return r.list(ctx, "FindCompleted", query, string(domain.SessionCompleted))
}

func (r *pgParkingSessionRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ParkingSessionRepository.CountAll: %w", err)
	}
	return n, nil
}

func (r *pgParkingSessionRepository) SumCompletedCost(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost), 0)::BIGINT FROM parking_sessions WHERE status = $1`, string(domain.SessionCompleted),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("ParkingSessionRepository.SumCompletedCost: %w", err)
	}
	return total, nil
}

func (r *pgParkingSessionRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.ParkingSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.%s: %w", op, err)
	}
	defer rows.Close()

	sessions := []domain.ParkingSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("ParkingSessionRepository.%s (scanning row): %w", op, err)
		}
		sessions = append(sessions, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.%s (rows error): %w", op, err)
	}
	return sessions, nil
}
