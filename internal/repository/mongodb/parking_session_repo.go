package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

type sessionRepository struct {
	col *mongo.Collection
}

var _ repository.ParkingSessionRepository = (*sessionRepository)(nil)

func NewParkingSessionRepository(db *mongo.Database) repository.ParkingSessionRepository {
	return &sessionRepository{col: db.Collection(colSessions)}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	m := toSessionModel(session)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	t := now()
	m.CreatedAt = t
	m.UpdatedAt = t

	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return nil, createSessionError(err, session.VehicleNumber)
	}
	return fromSessionModel(m), nil
}

func createSessionError(err error, vehicleNumber string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: vehicle '%s' already has an active session", repository.ErrDuplicateEntry, vehicleNumber)
	}
	return fmt.Errorf("mongodb: create session: %w", err)
}

func activeVehicleFilter(vehicleNumber string) bson.M {
	return bson.M{"vehicle_number": vehicleNumber, "status": string(domain.SessionActive)}
}

// activeSessionFilter matches the session only while it is still active, which
// makes Complete a compare-and-set.
func activeSessionFilter(id string) bson.M {
	return bson.M{"_id": id, "status": string(domain.SessionActive)}
}

func completeUpdate(m *sessionModel) bson.M {
	return bson.M{"$set": bson.M{
		"exit_time":           m.ExitTime,
		"status":              m.Status,
		"duration_hours":      m.DurationHours,
		"cost":                m.Cost,
		"exit_recorded_by_id": m.ExitRecordedByID,
		"updated_at":          now(),
	}}
}

func (r *sessionRepository) FindActiveByVehicleNumber(ctx context.Context, vehicleNumber string) (*domain.ParkingSession, error) {
	var m sessionModel
	err := r.col.FindOne(ctx, activeVehicleFilter(vehicleNumber)).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("mongodb: find active session: %w", err)
	}
	return fromSessionModel(&m), nil
}

func (r *sessionRepository) Complete(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	var updated sessionModel
	err := r.col.FindOneAndUpdate(ctx,
		activeSessionFilter(session.ID),
		completeUpdate(toSessionModel(session)),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("%w: session %s", repository.ErrSessionNotActive, session.ID)
		}
		return nil, fmt.Errorf("mongodb: complete session: %w", err)
	}
	return fromSessionModel(&updated), nil
}

func (r *sessionRepository) FindActive(ctx context.Context) ([]domain.ParkingSession, error) {
	return r.list(ctx, string(domain.SessionActive), "entry_time")
}

func (r *sessionRepository) FindCompleted(ctx context.Context) ([]domain.ParkingSession, error) {
	return r.list(ctx, string(domain.SessionCompleted), "exit_time")
}

func (r *sessionRepository) CountAll(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongodb: count sessions: %w", err)
	}
	return n, nil
}

func (r *sessionRepository) SumCompletedCost(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(domain.SessionCompleted)}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$cost"}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("mongodb: sum revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("mongodb: sum revenue: %w", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

func (r *sessionRepository) list(ctx context.Context, status, sortField string) ([]domain.ParkingSession, error) {
	cursor, err := r.col.Find(ctx,
		bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: sortField, Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongodb: list %s sessions: %w", status, err)
	}
	defer cursor.Close(ctx)

	var models []sessionModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("mongodb: list %s sessions: %w", status, err)
	}

	sessions := make([]domain.ParkingSession, 0, len(models))
	for i := range models {
		sessions = append(sessions, *fromSessionModel(&models[i]))
	}
	return sessions, nil
}
