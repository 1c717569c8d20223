package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"parkledger/internal/domain"
)

// MockParkingLedger is a mock implementation of service.ParkingLedger
type MockParkingLedger struct {
	mock.Mock
}

func (m *MockParkingLedger) RecordEntry(ctx context.Context, dto domain.RecordEntryDTO, by domain.Identity) (*domain.ParkingSession, error) {
	args := m.Called(ctx, dto, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSession), args.Error(1)
}

func (m *MockParkingLedger) RecordExit(ctx context.Context, dto domain.RecordExitDTO, by domain.Identity) (*domain.ExitResult, error) {
	args := m.Called(ctx, dto, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExitResult), args.Error(1)
}

func (m *MockParkingLedger) ListActive(ctx context.Context) (*domain.ActiveParkingResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActiveParkingResponse), args.Error(1)
}

func (m *MockParkingLedger) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

func (m *MockParkingLedger) FindActiveByVehicle(ctx context.Context, vehicleNumber string) (*domain.ParkingSession, error) {
	args := m.Called(ctx, vehicleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSession), args.Error(1)
}

func (m *MockParkingLedger) Summary(ctx context.Context) (*domain.ReportSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportSummary), args.Error(1)
}
