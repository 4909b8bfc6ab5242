package store

import (
	"context"
	"errors"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const plantsCollection = "plants"

// MongoPlants stores plants in the "plants" collection.
type MongoPlants struct {
	col *mongo.Collection
}

func NewMongoPlants(db *mongo.Database) *MongoPlants {
	return &MongoPlants{col: db.Collection(plantsCollection)}
}

// EnsureIndexes creates the owner lookup index.
func (s *MongoPlants) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("idx_plants_user"),
	})
	return err
}

func (s *MongoPlants) InsertPlant(ctx context.Context, p *models.Plant) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, p)
	return err
}

func (s *MongoPlants) PlantsByOwner(ctx context.Context, userID string) ([]models.Plant, error) {
	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plants := []models.Plant{}
	if err := cursor.All(ctx, &plants); err != nil {
		return nil, err
	}
	return plants, nil
}

// ownedPlantFilter matches plantID only when it belongs to userID.
func ownedPlantFilter(userID, plantID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(plantID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "user_id": userID}, true
}

// wateringUpdate prepends image, stamps last_watered and bumps the streak.
func wateringUpdate(image string, at time.Time) bson.M {
	return bson.M{
		"$push": bson.M{"images": bson.M{"$each": bson.A{image}, "$position": 0}},
		"$set":  bson.M{"last_watered": at},
		"$inc":  bson.M{"streak": 1},
	}
}

func (s *MongoPlants) PlantByID(ctx context.Context, userID, plantID string) (models.Plant, error) {
	filter, ok := ownedPlantFilter(userID, plantID)
	if !ok {
		return models.Plant{}, ErrNotFound
	}

	var plant models.Plant
	err := s.col.FindOne(ctx, filter).Decode(&plant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Plant{}, ErrNotFound
	}
	if err != nil {
		return models.Plant{}, err
	}
	return plant, nil
}

func (s *MongoPlants) RecordWatering(ctx context.Context, userID, plantID, image string, at time.Time) (models.Plant, error) {
	filter, ok := ownedPlantFilter(userID, plantID)
	if !ok {
		return models.Plant{}, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var plant models.Plant
	err := s.col.FindOneAndUpdate(ctx, filter, wateringUpdate(image, at), opts).Decode(&plant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Plant{}, ErrNotFound
	}
	if err != nil {
		return models.Plant{}, err
	}
	return plant, nil
}
