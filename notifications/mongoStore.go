package notifications

import (
	"context"
	"fmt"

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
	return &MongoStore{collection: database.OpenCollection(client, databaseName, database.NotificationCollection)}
}

func newMongoStoreFromCollection(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

func (s *MongoStore) Insert(ctx context.Context, notification models.Notification) error {
	_, err := s.collection.InsertOne(ctx, notification)
	return err
}

func (s *MongoStore) List(ctx context.Context, userID string, offset, limit int) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return notifications, nil
}

func (s *MongoStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, notificationID, userID string) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"notification_id": notificationID, "user_id": userID},
		bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}}}},
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := s.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}}}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return result.ModifiedCount, nil
}

func (s *MongoStore) Delete(ctx context.Context, notificationID, userID string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"notification_id": notificationID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("delete user notifications: %w", err)
	}
	return result.DeletedCount, nil
}
