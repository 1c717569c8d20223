package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/looplab/fsm"
	"gopkg.in/guregu/null.v4"
)

type VehicleClass string

const (
	VehicleCar   VehicleClass = "car"
	VehicleBike  VehicleClass = "bike"
	VehicleTruck VehicleClass = "truck"
)

// VehicleClasses lists the classes accepted at entry.
var VehicleClasses = []VehicleClass{VehicleCar, VehicleBike, VehicleTruck}

func (c VehicleClass) Valid() bool {
	for _, known := range VehicleClasses {
		if c == known {
			return true
		}
	}
	return false
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// EventComplete is the only transition of a session: active -> completed.
const EventComplete = "complete"

var (
	ErrExitBeforeEntry   = errors.New("exit time must be after entry time")
	ErrInvalidTransition = errors.New("invalid session status transition")
)

type ParkingSession struct {
	ID               string        `json:"id"`
	VehicleNumber    string        `json:"vehicleNumber"`
	VehicleClass     VehicleClass  `json:"vehicleType"`
	AssignedSpot     int           `json:"spotNumber"`
	EntryTime        time.Time     `json:"entryTime"`
	ExitTime         null.Time     `json:"exitTime"`
	Status           SessionStatus `json:"status"`
	DurationHours    null.Float    `json:"durationHours"`
	Cost             null.Int      `json:"cost"`
	RecordedByID     string        `json:"userId"`
	RecordedBy       string        `json:"recordedBy"`
	ExitRecordedByID null.String   `json:"exitRecordedBy"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// NewSessionFSM returns a state machine positioned at status.
func NewSessionFSM(status SessionStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(status),
		fsm.Events{
			{Name: EventComplete, Src: []string{string(SessionActive)}, Dst: string(SessionCompleted)},
		},
		fsm.Callbacks{},
	)
}

// Complete moves an active session to completed and fills in the exit fields.
// The session is left untouched when it returns an error.
func (s *ParkingSession) Complete(ctx context.Context, exitTime time.Time, durationHours float64, cost int64, exitRecordedBy string) error {
	if !exitTime.After(s.EntryTime) {
		return ErrExitBeforeEntry
	}

	machine := NewSessionFSM(s.Status)
	if err := machine.Event(ctx, EventComplete); err != nil {
		return fmt.Errorf("%w: %s -> %s: %v", ErrInvalidTransition, s.Status, SessionCompleted, err)
	}

	s.Status = SessionStatus(machine.Current())
	s.ExitTime = null.TimeFrom(exitTime)
	s.DurationHours = null.FloatFrom(durationHours)
	s.Cost = null.IntFrom(cost)
	if exitRecordedBy != "" {
		s.ExitRecordedByID = null.StringFrom(exitRecordedBy)
	}
	return nil
}

// NormalizeVehicleNumber trims and upper-cases a plate so lookups are stable.
func NormalizeVehicleNumber(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// RecordEntryDTO is the body of POST /api/parking/entry.
type RecordEntryDTO struct {
	VehicleNumber string `json:"vehicleNumber" binding:"required"`
	VehicleType   string `json:"vehicleType" binding:"required"`
	EntryTime     string `json:"entryTime,omitempty"` // RFC3339, defaults to now
}

// RecordExitDTO is the body of POST /api/parking/exit.
type RecordExitDTO struct {
	VehicleNumber string `json:"vehicleNumber" binding:"required"`
	ExitTime      string `json:"exitTime,omitempty"` // RFC3339, defaults to now
}

type ExitResult struct {
	Message       string  `json:"message"`
	Cost          int64   `json:"cost"`
	DurationHours float64 `json:"durationHours"`
	*ParkingSession
}

// HistoryEntry is a completed session joined with the name of the staff
// member who recorded the entry.
type HistoryEntry struct {
	ParkingSession
	RecordedByName string `json:"recordedByName"`
}

type ActiveParkingResponse struct {
	ActiveCount   int              `json:"activeCount"`
	ActiveParking []ParkingSession `json:"activeParking"`
}

type ReportSummary struct {
	TotalRevenue   int64 `json:"totalRevenue"`
	TotalParkings  int64 `json:"totalParkings"`
	TotalFeedbacks int64 `json:"totalFeedbacks"`
}
