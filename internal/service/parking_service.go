package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parkledger/internal/domain"
	"parkledger/internal/metrics"
	"parkledger/internal/repository"
	"parkledger/internal/tariff"
)

// ErrValidation marks input rejected before any storage access.
var ErrValidation = errors.New("validation failed")

const DefaultSpotCount = 100

// SpotPicker returns the informational spot number for a new session.
type SpotPicker func() int

// SessionNotifier receives ledger changes for live dashboards.
type SessionNotifier interface {
	BroadcastSessionEvent(event domain.SessionEvent)
}

type ParkingOption func(*ParkingService)

func WithSpotPicker(p SpotPicker) ParkingOption {
	return func(s *ParkingService) { s.pickSpot = p }
}

// WithSpotCount picks spots uniformly in [1, n].
func WithSpotCount(n int) ParkingOption {
	return func(s *ParkingService) {
		if n > 0 {
			s.pickSpot = randomSpot(n)
		}
	}
}

func WithClock(now func() time.Time) ParkingOption {
	return func(s *ParkingService) { s.now = now }
}

func WithNotifier(n SessionNotifier) ParkingOption {
	return func(s *ParkingService) { s.notifier = n }
}

type ParkingService struct {
	sessionRepo repository.ParkingSessionRepository
	userRepo    repository.UserRepository
	feedback    repository.FeedbackCounter
	notifier    SessionNotifier
	pickSpot    SpotPicker
	now         func() time.Time
}

func NewParkingService(
	sessionRepo repository.ParkingSessionRepository,
	userRepo repository.UserRepository,
	feedback repository.FeedbackCounter,
	opts ...ParkingOption,
) *ParkingService {
	s := &ParkingService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		feedback:    feedback,
		pickSpot:    randomSpot(DefaultSpotCount),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomSpot(n int) SpotPicker {
	return func() int { return rand.Intn(n) + 1 }
}

// RecordEntry opens a session for a vehicle that is not currently parked.
func (s *ParkingService) RecordEntry(ctx context.Context, dto domain.RecordEntryDTO, by domain.Identity) (*domain.ParkingSession, error) {
	vehicleNumber := domain.NormalizeVehicleNumber(dto.VehicleNumber)
	class := domain.VehicleClass(strings.ToLower(strings.TrimSpace(dto.VehicleType)))
	if vehicleNumber == "" || class == "" {
		metrics.EntriesTotal.WithLabelValues(string(class), metrics.OutcomeRejected).Inc()
		return nil, fmt.Errorf("%w: vehicle number and type are required", ErrValidation)
	}
	if !class.Valid() {
		metrics.EntriesTotal.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		return nil, fmt.Errorf("%w: vehicle type '%s' is not one of %v", ErrValidation, dto.VehicleType, domain.VehicleClasses)
	}

	entryTime, err := s.parseTime(dto.EntryTime, "entryTime")
	if err != nil {
		metrics.EntriesTotal.WithLabelValues(string(class), metrics.OutcomeRejected).Inc()
		return nil, err
	}

	existing, err := s.sessionRepo.FindActiveByVehicleNumber(ctx, vehicleNumber)
	if err != nil && !errors.Is(err, repository.ErrNoActiveSession) {
		metrics.EntriesTotal.WithLabelValues(string(class), metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("checking active session: %w", err)
	}
	if existing != nil {
		metrics.EntriesTotal.WithLabelValues(string(class), metrics.OutcomeRejected).Inc()
		return nil, fmt.Errorf("%w: vehicle '%s' is already parked", repository.ErrDuplicateEntry, vehicleNumber)
	}

	session := &domain.ParkingSession{
		VehicleNumber: vehicleNumber,
		VehicleClass:  class,
		AssignedSpot:  s.pickSpot(),
		EntryTime:     entryTime,
		Status:        domain.SessionActive,
		RecordedByID:  by.UserID,
		RecordedBy:    by.Name,
	}

	// The store's active-vehicle constraint settles races the check above missed.
	created, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			metrics.EntriesTotal.WithLabelValues(string(class), metrics.OutcomeRejected).Inc()
			return nil, err
		}
		metrics.EntriesTotal.WithLabelValues(string(class), metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("recording entry: %w", err)
	}

	metrics.EntriesTotal.WithLabelValues(string(class), metrics.OutcomeSuccess).Inc()
	metrics.ActiveSessions.Inc()
	zap.S().Infof("ParkingService: vehicle %s (%s) entered, spot %d, session %s, by %s",
		created.VehicleNumber, created.VehicleClass, created.AssignedSpot, created.ID, by.Username)

	s.notify(domain.SessionEvent{
		Type:          domain.SessionEventStarted,
		SessionID:     created.ID,
		VehicleNumber: created.VehicleNumber,
		VehicleClass:  created.VehicleClass,
		AssignedSpot:  created.AssignedSpot,
		RecordedBy:    created.RecordedBy,
		Timestamp:     created.EntryTime,
	})
	return created, nil
}

// RecordExit completes the vehicle's active session and charges it.
func (s *ParkingService) RecordExit(ctx context.Context, dto domain.RecordExitDTO, by domain.Identity) (*domain.ExitResult, error) {
	vehicleNumber := domain.NormalizeVehicleNumber(dto.VehicleNumber)
	if vehicleNumber == "" {
		metrics.ExitsTotal.WithLabelValues("", metrics.OutcomeRejected).Inc()
		return nil, fmt.Errorf("%w: vehicle number is required", ErrValidation)
	}

	exitTime, err := s.parseTime(dto.ExitTime, "exitTime")
	if err != nil {
		metrics.ExitsTotal.WithLabelValues("", metrics.OutcomeRejected).Inc()
		return nil, err
	}

	session, err := s.sessionRepo.FindActiveByVehicleNumber(ctx, vehicleNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			metrics.ExitsTotal.WithLabelValues("", metrics.OutcomeRejected).Inc()
			return nil, err
		}
		metrics.ExitsTotal.WithLabelValues("", metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("finding active session: %w", err)
	}
	class := string(session.VehicleClass)

	durationHours := exitTime.Sub(session.EntryTime).Hours()
	cost := tariff.Cost(session.VehicleClass, durationHours)

	if err := session.Complete(ctx, exitTime, durationHours, cost, by.UserID); err != nil {
		metrics.ExitsTotal.WithLabelValues(class, metrics.OutcomeRejected).Inc()
		if errors.Is(err, domain.ErrExitBeforeEntry) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrSessionNotActive, err)
	}

	updated, err := s.sessionRepo.Complete(ctx, session)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotActive) {
			// another exit closed it between our read and write
			metrics.ExitsTotal.WithLabelValues(class, metrics.OutcomeRejected).Inc()
			return nil, err
		}
		metrics.ExitsTotal.WithLabelValues(class, metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("recording exit: %w", err)
	}

	metrics.ExitsTotal.WithLabelValues(class, metrics.OutcomeSuccess).Inc()
	metrics.RevenueTotal.WithLabelValues(class).Add(float64(cost))
	metrics.ActiveSessions.Dec()
	zap.S().Infof("ParkingService: vehicle %s exited after %.2fh, cost %d, session %s, by %s",
		updated.VehicleNumber, durationHours, cost, updated.ID, by.Username)

	s.notify(domain.SessionEvent{
		Type:          domain.SessionEventCompleted,
		SessionID:     updated.ID,
		VehicleNumber: updated.VehicleNumber,
		VehicleClass:  updated.VehicleClass,
		AssignedSpot:  updated.AssignedSpot,
		Cost:          &cost,
		DurationHours: &durationHours,
		RecordedBy:    by.Name,
		Timestamp:     exitTime,
	})

	return &domain.ExitResult{
		Message:        "Exit recorded successfully",
		Cost:           cost,
		DurationHours:  durationHours,
		ParkingSession: updated,
	}, nil
}

func (s *ParkingService) ListActive(ctx context.Context) (*domain.ActiveParkingResponse, error) {
	sessions, err := s.sessionRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active sessions: %w", err)
	}
	metrics.ActiveSessions.Set(float64(len(sessions)))
	return &domain.ActiveParkingResponse{ActiveCount: len(sessions), ActiveParking: sessions}, nil
}

// ListHistory returns completed sessions, most recent exit first, each with
// the current name of the staff member who recorded the entry.
func (s *ParkingService) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	sessions, err := s.sessionRepo.FindCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing parking history: %w", err)
	}

	names := make(map[string]string)
	history := make([]domain.HistoryEntry, 0, len(sessions))
	for _, session := range sessions {
		name, ok := names[session.RecordedByID]
		if !ok {
			name = session.RecordedBy
			user, err := s.userRepo.FindByID(ctx, session.RecordedByID)
			switch {
			case err == nil:
				name = user.Name
			case !errors.Is(err, repository.ErrNotFound):
				return nil, fmt.Errorf("resolving recorder %s: %w", session.RecordedByID, err)
			}
			names[session.RecordedByID] = name
		}
		history = append(history, domain.HistoryEntry{ParkingSession: session, RecordedByName: name})
	}
	return history, nil
}

func (s *ParkingService) FindActiveByVehicle(ctx context.Context, vehicleNumber string) (*domain.ParkingSession, error) {
	vehicleNumber = domain.NormalizeVehicleNumber(vehicleNumber)
	if vehicleNumber == "" {
		return nil, fmt.Errorf("%w: vehicle number is required", ErrValidation)
	}
	session, err := s.sessionRepo.FindActiveByVehicleNumber(ctx, vehicleNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return nil, err
		}
		return nil, fmt.Errorf("finding active session: %w", err)
	}
	return session, nil
}

func (s *ParkingService) Summary(ctx context.Context) (*domain.ReportSummary, error) {
	revenue, err := s.sessionRepo.SumCompletedCost(ctx)
	if err != nil {
		return nil, fmt.Errorf("summing revenue: %w", err)
	}
	parkings, err := s.sessionRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	feedbacks, err := s.feedback.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting feedback: %w", err)
	}
	return &domain.ReportSummary{TotalRevenue: revenue, TotalParkings: parkings, TotalFeedbacks: feedbacks}, nil
}

func (s *ParkingService) parseTime(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC3339: %v", ErrValidation, field, err)
	}
	return t.UTC(), nil
}

func (s *ParkingService) notify(event domain.SessionEvent) {
	if s.notifier == nil {
		return
	}
	event.EventID = uuid.NewString()
	s.notifier.BroadcastSessionEvent(event)
}
