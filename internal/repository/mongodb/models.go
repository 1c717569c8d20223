package mongodb

import (
	"time"

	"gopkg.in/guregu/null.v4"

	"parkledger/internal/domain"
)

type sessionModel struct {
	ID               string     `bson:"_id"`
	VehicleNumber    string     `bson:"vehicle_number"`
	VehicleClass     string     `bson:"vehicle_class"`
	AssignedSpot     int        `bson:"assigned_spot"`
	EntryTime        time.Time  `bson:"entry_time"`
	ExitTime         *time.Time `bson:"exit_time,omitempty"`
	Status           string     `bson:"status"`
	DurationHours    *float64   `bson:"duration_hours,omitempty"`
	Cost             *int64     `bson:"cost,omitempty"`
	RecordedByID     string     `bson:"recorded_by_id"`
	RecordedBy       string     `bson:"recorded_by"`
	ExitRecordedByID *string    `bson:"exit_recorded_by_id,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}

func toSessionModel(s *domain.ParkingSession) *sessionModel {
	return &sessionModel{
		ID:               s.ID,
		VehicleNumber:    s.VehicleNumber,
		VehicleClass:     string(s.VehicleClass),
		AssignedSpot:     s.AssignedSpot,
		EntryTime:        s.EntryTime.UTC(),
		ExitTime:         s.ExitTime.Ptr(),
		Status:           string(s.Status),
		DurationHours:    s.DurationHours.Ptr(),
		Cost:             s.Cost.Ptr(),
		RecordedByID:     s.RecordedByID,
		RecordedBy:       s.RecordedBy,
		ExitRecordedByID: s.ExitRecordedByID.Ptr(),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func fromSessionModel(m *sessionModel) *domain.ParkingSession {
	s := &domain.ParkingSession{
		ID:               m.ID,
		VehicleNumber:    m.VehicleNumber,
		VehicleClass:     domain.VehicleClass(m.VehicleClass),
		AssignedSpot:     m.AssignedSpot,
		EntryTime:        m.EntryTime.UTC(),
		Status:           domain.SessionStatus(m.Status),
		DurationHours:    null.FloatFromPtr(m.DurationHours),
		Cost:             null.IntFromPtr(m.Cost),
		RecordedByID:     m.RecordedByID,
		RecordedBy:       m.RecordedBy,
		ExitRecordedByID: null.StringFromPtr(m.ExitRecordedByID),
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
	if m.ExitTime != nil {
		s.ExitTime = null.TimeFrom(m.ExitTime.UTC())
	}
	return s
}

type userModel struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserModel(u *domain.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.Password,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func fromUserModel(m *userModel) *domain.User {
	return &domain.User{
		ID:        m.ID,
		Username:  m.Username,
		Name:      m.Name,
		Password:  m.PasswordHash,
		Role:      m.Role,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type feedbackModel struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Category  string    `bson:"category"`
	Message   string    `bson:"message"`
	CreatedAt time.Time `bson:"created_at"`
}

func toFeedbackModel(f *domain.Feedback) *feedbackModel {
	return &feedbackModel{
		ID:        f.ID,
		UserID:    f.UserID,
		Name:      f.Name,
		Email:     f.Email,
		Category:  f.Category,
		Message:   f.Message,
		CreatedAt: f.CreatedAt,
	}
}

func fromFeedbackModel(m *feedbackModel) domain.Feedback {
	return domain.Feedback{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Email:     m.Email,
		Category:  m.Category,
		Message:   m.Message,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
