// server/internal/store/recovery.go
package store

import (
	"context"
	"time"

	"fleet-coordinator-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RecoveryStore persists one-time password recovery codes.
type RecoveryStore struct {
	DB *mongo.Database
}

func (s *RecoveryStore) collection() *mongo.Collection {
	return s.DB.Collection("recovery_codes")
}

// Save replaces any outstanding code for the user with a fresh one.
func (s *RecoveryStore) Save(ctx context.Context, code models.RecoveryCode) error {
	_, err := s.collection().DeleteMany(ctx, bson.M{"userID": code.UserID})
	if err != nil {
		return wrapErr("clear recovery codes", err)
	}
	_, err = s.collection().InsertOne(ctx, code)
	return wrapErr("save recovery code", err)
}

// Consume marks the code used if it matches, is unused and has not
// expired. A second Consume with the same code fails with ErrNotFound.
func (s *RecoveryStore) Consume(ctx context.Context, userID, code string) error {
	result, err := s.collection().UpdateOne(ctx,
		bson.M{
			"userID":    userID,
			"code":      code,
			"used":      false,
			"expiresAt": bson.M{"$gt": time.Now()},
		},
		bson.M{"$set": bson.M{"used": true}},
	)
	if err != nil {
		return wrapErr("consume recovery code", err)
	}
	if result.MatchedCount == 0 {
		return wrapErr("consume recovery code", mongo.ErrNoDocuments)
	}
	return nil
}
