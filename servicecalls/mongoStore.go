package servicecalls

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-restaurant-ops/database"
	"go-restaurant-ops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(client *mongo.Client, databaseName string) *MongoStore {
	return &MongoStore{collection: database.OpenCollection(client, databaseName, database.ServiceRequestCollection)}
}

func (s *MongoStore) Insert(ctx context.Context, request models.ServiceRequest) error {
	_, err := s.collection.InsertOne(ctx, request)
	return err
}

func (s *MongoStore) Get(ctx context.Context, id string) (models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := s.collection.FindOne(ctx, bson.M{"service_request_id": id}).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ServiceRequest{}, ErrNotFound
	}
	if err != nil {
		return models.ServiceRequest{}, fmt.Errorf("find service request: %w", err)
	}
	return request, nil
}

func (s *MongoStore) ListByRestaurant(ctx context.Context, restaurantID string, status models.ServiceRequestStatus) ([]models.ServiceRequest, error) {
	filter := bson.M{"restaurant_id": restaurantID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find service requests: %w", err)
	}
	var requests []models.ServiceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decode service requests: %w", err)
	}
	return requests, nil
}

func (s *MongoStore) Complete(ctx context.Context, id string, at time.Time) (models.ServiceRequest, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: models.ServiceCompleted},
		{Key: "completed_at", Value: at},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var request models.ServiceRequest
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"service_request_id": id}, update, opts).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ServiceRequest{}, ErrNotFound
	}
	if err != nil {
		return models.ServiceRequest{}, fmt.Errorf("complete service request: %w", err)
	}
	return request, nil
}
