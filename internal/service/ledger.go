package service

import (
	"context"

	"parkledger/internal/domain"
)

// ParkingLedger is the parking surface consumed by HTTP handlers and the gate
// consumer.
type ParkingLedger interface {
	RecordEntry(ctx context.Context, dto domain.RecordEntryDTO, by domain.Identity) (*domain.ParkingSession, error)
	RecordExit(ctx context.Context, dto domain.RecordExitDTO, by domain.Identity) (*domain.ExitResult, error)
	ListActive(ctx context.Context) (*domain.ActiveParkingResponse, error)
	ListHistory(ctx context.Context) ([]domain.HistoryEntry, error)
	FindActiveByVehicle(ctx context.Context, vehicleNumber string) (*domain.ParkingSession, error)
	Summary(ctx context.Context) (*domain.ReportSummary, error)
}

var _ ParkingLedger = (*ParkingService)(nil)
