// server/internal/store/users.go
package store

import (
	"context"
	"time"

	"fleet-coordinator-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore persists accounts in the "users" collection.
type UserStore struct {
	DB *mongo.Database
}

func (s *UserStore) collection() *mongo.Collection {
	return s.DB.Collection("users")
}

func (s *UserStore) Insert(ctx context.Context, user models.User) error {
	_, err := s.collection().InsertOne(ctx, user)
	return wrapErr("insert user", err)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.collection().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return models.User{}, wrapErr("find user by email", err)
	}
	return user, nil
}

func (s *UserStore) FindByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.collection().FindOne(ctx, bson.M{"userID": userID}).Decode(&user)
	if err != nil {
		return models.User{}, wrapErr("find user", err)
	}
	return user, nil
}

func (s *UserStore) CountByEmail(ctx context.Context, email string) (int64, error) {
	count, err := s.collection().CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return 0, wrapErr("count users by email", err)
	}
	return count, nil
}

// FindConductors returns every account with the conductor role.
func (s *UserStore) FindConductors(ctx context.Context) ([]models.User, error) {
	cursor, err := s.collection().Find(ctx, bson.M{"role": models.RoleConductor})
	if err != nil {
		return nil, wrapErr("query conductors", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, wrapErr("decode conductors", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, userID, hashedPassword string) error {
	result, err := s.collection().UpdateOne(ctx,
		bson.M{"userID": userID},
		bson.M{"$set": bson.M{"password": hashedPassword, "updatedAt": time.Now()}},
	)
	if err != nil {
		return wrapErr("update password", err)
	}
	if result.MatchedCount == 0 {
		return wrapErr("update password", mongo.ErrNoDocuments)
	}
	return nil
}
