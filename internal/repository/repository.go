package repository

import (
	"context"
	"errors"

	"parkledger/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrNoActiveSession = errors.New("no active parking session found for this vehicle")

// ErrSessionNotActive is returned by a conditional exit update that matched no
// active session, i.e. another request completed it first.
var ErrSessionNotActive = errors.New("parking session is no longer active")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// ParkingSessionRepository is the session ledger.
//
// Create must reject a second active session for the same vehicle number with
// ErrDuplicateEntry at the storage level, and Complete must only apply to a
// session that is still active, so concurrent check-then-act sequences cannot
// corrupt the ledger.
type ParkingSessionRepository interface {
	Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	FindActiveByVehicleNumber(ctx context.Context, vehicleNumber string) (*domain.ParkingSession, error)
	// Complete atomically writes exit time, status, duration, cost and exit
	// identity, conditional on the stored status still being active.
	Complete(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	FindActive(ctx context.Context) ([]domain.ParkingSession, error)
	FindCompleted(ctx context.Context) ([]domain.ParkingSession, error)
	CountAll(ctx context.Context) (int64, error)
	SumCompletedCost(ctx context.Context) (int64, error)
}

type FeedbackCounter interface {
	Count(ctx context.Context) (int64, error)
}

type FeedbackRepository interface {
	FeedbackCounter
	Create(ctx context.Context, feedback *domain.Feedback) (*domain.Feedback, error)
	FindAll(ctx context.Context) ([]domain.Feedback, error)
}
