// Package memory holds process-local repositories used by tests and by
// STORAGE_DRIVER=memory for demos. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ParkingSession
	// vehicle number -> id of its active session
	active map[string]string
	now    func() time.Time
}

func NewParkingSessionRepository() repository.ParkingSessionRepository {
	return &sessionRepository{
		sessions: make(map[string]*domain.ParkingSession),
		active:   make(map[string]string),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *sessionRepository) Create(_ context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.Status == domain.SessionActive {
		if _, exists := r.active[session.VehicleNumber]; exists {
			return nil, fmt.Errorf("%w: vehicle '%s' already has an active session", repository.ErrDuplicateEntry, session.VehicleNumber)
		}
	}

	stored := *session
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := r.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.sessions[stored.ID] = &stored
	if stored.Status == domain.SessionActive {
		r.active[stored.VehicleNumber] = stored.ID
	}

	out := stored
	return &out, nil
}

func (r *sessionRepository) FindActiveByVehicleNumber(_ context.Context, vehicleNumber string) (*domain.ParkingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.active[vehicleNumber]
	if !ok {
		return nil, repository.ErrNoActiveSession
	}
	out := *r.sessions[id]
	return &out, nil
}

func (r *sessionRepository) Complete(_ context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if stored.Status != domain.SessionActive {
		return nil, fmt.Errorf("%w: session %s", repository.ErrSessionNotActive, session.ID)
	}

	stored.ExitTime = session.ExitTime
	stored.Status = session.Status
	stored.DurationHours = session.DurationHours
	stored.Cost = session.Cost
	stored.ExitRecordedByID = session.ExitRecordedByID
	stored.UpdatedAt = r.now()
	if stored.Status != domain.SessionActive {
		delete(r.active, stored.VehicleNumber)
	}

	out := *stored
	return &out, nil
}

func (r *sessionRepository) FindActive(_ context.Context) ([]domain.ParkingSession, error) {
	sessions := r.filter(domain.SessionActive)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].EntryTime.After(sessions[j].EntryTime)
	})
	return sessions, nil
}

func (r *sessionRepository) FindCompleted(_ context.Context) ([]domain.ParkingSession, error) {
	sessions := r.filter(domain.SessionCompleted)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ExitTime.Time.After(sessions[j].ExitTime.Time)
	})
	return sessions, nil
}

func (r *sessionRepository) CountAll(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.sessions)), nil
}

func (r *sessionRepository) SumCompletedCost(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, s := range r.sessions {
		if s.Status == domain.SessionCompleted && s.Cost.Valid {
			total += s.Cost.Int64
		}
	}
	return total, nil
}

func (r *sessionRepository) filter(status domain.SessionStatus) []domain.ParkingSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]domain.ParkingSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Status == status {
			sessions = append(sessions, *s)
		}
	}
	return sessions
}
