package domain

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleClass_Valid(t *testing.T) {
	assert.True(t, VehicleCar.Valid())
	assert.True(t, VehicleBike.Valid())
	assert.True(t, VehicleTruck.Valid())
	assert.False(t, VehicleClass("bus").Valid())
	assert.False(t, VehicleClass("").Valid())
	assert.False(t, VehicleClass("Car").Valid())
}

func TestParkingSession_Complete(t *testing.T) {
	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s := &ParkingSession{VehicleNumber: "KA01AB1234", VehicleClass: VehicleCar, EntryTime: entry, Status: SessionActive}

	err := s.Complete(context.Background(), entry.Add(150*time.Minute), 2.5, 50, "user-2")
	require.NoError(t, err)

	assert.Equal(t, SessionCompleted, s.Status)
	assert.True(t, s.ExitTime.Valid)
	assert.Equal(t, entry.Add(150*time.Minute), s.ExitTime.Time)
	assert.Equal(t, 2.5, s.DurationHours.Float64)
	assert.Equal(t, int64(50), s.Cost.Int64)
	assert.Equal(t, "user-2", s.ExitRecordedByID.String)
}

func TestParkingSession_CompleteRejectsBadChronology(t *testing.T) {
	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for _, exit := range []time.Time{entry, entry.Add(-time.Minute)} {
		s := &ParkingSession{EntryTime: entry, Status: SessionActive}
		err := s.Complete(context.Background(), exit, 0, 0, "user-2")

		assert.ErrorIs(t, err, ErrExitBeforeEntry)
		assert.Equal(t, SessionActive, s.Status)
		assert.False(t, s.ExitTime.Valid)
		assert.False(t, s.Cost.Valid)
		assert.False(t, s.DurationHours.Valid)
	}
}

func TestParkingSession_CompleteIsTerminal(t *testing.T) {
	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s := &ParkingSession{EntryTime: entry, Status: SessionActive}
	require.NoError(t, s.Complete(context.Background(), entry.Add(time.Hour), 1, 20, "a"))

	err := s.Complete(context.Background(), entry.Add(2*time.Hour), 2, 40, "b")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, int64(20), s.Cost.Int64)
	assert.Equal(t, "a", s.ExitRecordedByID.String)
}

func TestNormalizeVehicleNumber(t *testing.T) {
	assert.Equal(t, "KA01AB1234", NormalizeVehicleNumber("  ka01ab1234 "))
}

func TestExitResult_JSONFlattensSession(t *testing.T) {
	s := &ParkingSession{ID: "s1", VehicleNumber: "KA01AB1234", Status: SessionCompleted}
	s.Cost.SetValid(50)
	s.DurationHours.SetValid(2.5)

	raw, err := json.Marshal(ExitResult{Message: "Exit recorded successfully", Cost: 50, DurationHours: 2.5, ParkingSession: s})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Exit recorded successfully", body["message"])
	assert.Equal(t, float64(50), body["cost"])
	assert.Equal(t, 2.5, body["durationHours"])
	assert.Equal(t, "KA01AB1234", body["vehicleNumber"])
	assert.Equal(t, "completed", body["status"])
}
