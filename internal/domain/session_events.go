package domain

import "time"

type SessionEventType string

const (
	SessionEventStarted   SessionEventType = "session_started"
	SessionEventCompleted SessionEventType = "session_completed"
)

// SessionEvent is pushed to dashboards over the websocket feed.
type SessionEvent struct {
	EventID       string           `json:"eventId"`
	Type          SessionEventType `json:"type"`
	SessionID     string           `json:"sessionId"`
	VehicleNumber string           `json:"vehicleNumber"`
	VehicleClass  VehicleClass     `json:"vehicleType"`
	AssignedSpot  int              `json:"spotNumber"`
	Cost          *int64           `json:"cost,omitempty"`
	DurationHours *float64         `json:"durationHours,omitempty"`
	RecordedBy    string           `json:"recordedBy"`
	Timestamp     time.Time        `json:"timestamp"`
}

type GateDirection string

const (
	GateDirectionEntry GateDirection = "entry"
	GateDirectionExit  GateDirection = "exit"
)

// GateMessage is the JSON body of a gate sensor message read from SQS.
type GateMessage struct {
	EventType     GateDirection `json:"eventType"`
	VehicleNumber string        `json:"vehicleNumber"`
	VehicleType   string        `json:"vehicleType,omitempty"`
	Timestamp     string        `json:"timestamp,omitempty"`
	GateID        string        `json:"gateId"`
}
