// server/internal/store/trucks.go
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

// TruckStore persists trucks in the "trucks" collection. Every update uses
// FindOneAndUpdate with ReturnDocument-After so callers always get the
// post-write record back.
type TruckStore struct {
	DB *mongo.Database
}

func (s *TruckStore) collection() *mongo.Collection {
	return s.DB.Collection("trucks")
}

func (s *TruckStore) Insert(ctx context.Context, truck models.Truck) (models.Truck, error) {
	result, err := s.collection().InsertOne(ctx, truck)
	if err != nil {
		return models.Truck{}, wrapErr("insert truck", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		truck.ID = oid
	}
	return truck, nil
}

func (s *TruckStore) FindByID(ctx context.Context, truckID string) (models.Truck, error) {
	var truck models.Truck
	err := s.collection().FindOne(ctx, bson.M{"truckID": truckID}).Decode(&truck)
	if err != nil {
		return models.Truck{}, wrapErr("find truck", err)
	}
	return truck, nil
}

func (s *TruckStore) FindByDriver(ctx context.Context, driverID string) (models.Truck, error) {
	var truck models.Truck
	err := s.collection().FindOne(ctx, bson.M{"driverID": driverID}).Decode(&truck)
	if err != nil {
		return models.Truck{}, wrapErr("find truck by driver", err)
	}
	return truck, nil
}

func (s *TruckStore) FindAll(ctx context.Context) ([]models.Truck, error) {
	cursor, err := s.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, wrapErr("query trucks", err)
	}
	defer cursor.Close(ctx)

	var trucks []models.Truck
	if err := cursor.All(ctx, &trucks); err != nil {
		return nil, wrapErr("decode trucks", err)
	}
	if trucks == nil {
		trucks = []models.Truck{}
	}
	return trucks, nil
}

func (s *TruckStore) CountByPlate(ctx context.Context, plate string) (int64, error) {
	count, err := s.collection().CountDocuments(ctx, bson.M{"plate": plate})
	if err != nil {
		return 0, wrapErr("count trucks by plate", err)
	}
	return count, nil
}

func (s *TruckStore) findOneAndUpdate(ctx context.Context, truckID string, update bson.M) (models.Truck, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var truck models.Truck
	err := s.collection().FindOneAndUpdate(ctx, bson.M{"truckID": truckID}, update, opts).Decode(&truck)
	if err != nil {
		return models.Truck{}, wrapErr("update truck", err)
	}
	return truck, nil
}

// UpdateDetails overwrites plate, route and status.
func (s *TruckStore) UpdateDetails(ctx context.Context, truckID, plate, route, status string) (models.Truck, error) {
	return s.findOneAndUpdate(ctx, truckID, bson.M{"$set": bson.M{
		"plate":     plate,
		"route":     route,
		"status":    status,
		"updatedAt": time.Now(),
	}})
}

// UpdateAssignment overwrites the driver and schedule fields in one atomic
// write. An empty driverID clears the assignment.
func (s *TruckStore) UpdateAssignment(ctx context.Context, truckID, driverID, scheduleStart, scheduleEnd string, workDays []string) (models.Truck, error) {
	set := bson.M{
		"scheduleStart": scheduleStart,
		"scheduleEnd":   scheduleEnd,
		"workDays":      workDays,
		"updatedAt":     time.Now(),
	}
	update := bson.M{"$set": set}
	if driverID == "" {
		update["$unset"] = bson.M{"driverID": ""}
	} else {
		set["driverID"] = driverID
	}
	return s.findOneAndUpdate(ctx, truckID, update)
}

// UpdatePosition records the latest reported position.
func (s *TruckStore) UpdatePosition(ctx context.Context, truckID string, pos models.Position, at time.Time) (models.Truck, error) {
	return s.findOneAndUpdate(ctx, truckID, bson.M{"$set": bson.M{
		"lastPosition": pos,
		"reportedAt":   at,
		"updatedAt":    time.Now(),
	}})
}

// Delete is a hard delete. Confirming destructive intent is the caller's
// responsibility.
func (s *TruckStore) Delete(ctx context.Context, truckID string) error {
	result, err := s.collection().DeleteOne(ctx, bson.M{"truckID": truckID})
	if err != nil {
		return wrapErr("delete truck", err)
	}
	if result.DeletedCount == 0 {
		return wrapErr("delete truck", mongo.ErrNoDocuments)
	}
	return nil
}
