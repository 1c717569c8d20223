package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

type userRepository struct {
	col *mongo.Collection
}

var _ repository.UserRepository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{col: db.Collection(colUsers)}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := toUserModel(user)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	t := now()
	m.CreatedAt = t
	m.UpdatedAt = t

	if _, err := r.col.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: username '%s' is taken", repository.ErrDuplicateEntry, user.Username)
		}
		return nil, fmt.Errorf("mongodb: create user: %w", err)
	}
	return fromUserModel(m), nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var m userModel
	if err := r.col.FindOne(ctx, filter).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mongodb: find user: %w", err)
	}
	return fromUserModel(&m), nil
}
