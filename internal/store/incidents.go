// server/internal/store/incidents.go
package store

import (
	"context"
	"time"

	"fleet-coordinator-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IncidentStore persists incidents in the "incidents" collection.
type IncidentStore struct {
	DB *mongo.Database
}

func (s *IncidentStore) collection() *mongo.Collection {
	return s.DB.Collection("incidents")
}

func (s *IncidentStore) Insert(ctx context.Context, incident models.Incident) (models.Incident, error) {
	result, err := s.collection().InsertOne(ctx, incident)
	if err != nil {
		return models.Incident{}, wrapErr("insert incident", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		incident.ID = oid
	}
	return incident, nil
}

func (s *IncidentStore) FindByID(ctx context.Context, incidentID string) (models.Incident, error) {
	var incident models.Incident
	err := s.collection().FindOne(ctx, bson.M{"incidentID": incidentID}).Decode(&incident)
	if err != nil {
		return models.Incident{}, wrapErr("find incident", err)
	}
	return incident, nil
}

func (s *IncidentStore) find(ctx context.Context, filter bson.M) ([]models.Incident, error) {
	cursor, err := s.collection().Find(ctx, filter)
	if err != nil {
		return nil, wrapErr("query incidents", err)
	}
	defer cursor.Close(ctx)

	var incidents []models.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, wrapErr("decode incidents", err)
	}
	if incidents == nil {
		incidents = []models.Incident{}
	}
	return incidents, nil
}

func (s *IncidentStore) FindAll(ctx context.Context) ([]models.Incident, error) {
	return s.find(ctx, bson.M{})
}

// FindOpenByDriver returns the driver's not-yet-resolved incidents, the
// broad pending set used for backlog counts.
func (s *IncidentStore) FindOpenByDriver(ctx context.Context, driverID string) ([]models.Incident, error) {
	return s.find(ctx, bson.M{
		"driverID": driverID,
		"state":    bson.M{"$in": []string{models.IncidentPending, models.IncidentInProgress}},
	})
}

// FindOpenByTruck is the truck-keyed variant of FindOpenByDriver.
func (s *IncidentStore) FindOpenByTruck(ctx context.Context, truckID string) ([]models.Incident, error) {
	return s.find(ctx, bson.M{
		"truckID": truckID,
		"state":   bson.M{"$in": []string{models.IncidentPending, models.IncidentInProgress}},
	})
}

// CountOpenByTruck backs the soft constraint against deleting trucks that
// still carry unresolved incidents.
func (s *IncidentStore) CountOpenByTruck(ctx context.Context, truckID string) (int64, error) {
	count, err := s.collection().CountDocuments(ctx, bson.M{
		"truckID": truckID,
		"state":   bson.M{"$in": []string{models.IncidentPending, models.IncidentInProgress}},
	})
	if err != nil {
		return 0, wrapErr("count open incidents", err)
	}
	return count, nil
}

// UpdateState writes the new state and returns the post-write incident.
func (s *IncidentStore) UpdateState(ctx context.Context, incidentID, state string) (models.Incident, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var incident models.Incident
	err := s.collection().FindOneAndUpdate(ctx,
		bson.M{"incidentID": incidentID},
		bson.M{"$set": bson.M{"state": state, "updatedAt": time.Now()}},
		opts,
	).Decode(&incident)
	if err != nil {
		return models.Incident{}, wrapErr("update incident state", err)
	}
	return incident, nil
}
