package orders

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

// MongoStore keeps orders in the "order" collection and their items in
// "orderItem".
type MongoStore struct {
	client *mongo.Client
	orders *mongo.Collection
	items  *mongo.Collection
}

func NewMongoStore(client *mongo.Client, databaseName string) *MongoStore {
	return &MongoStore{
		client: client,
		orders: database.OpenCollection(client, databaseName, database.OrderCollection),
		items:  database.OpenCollection(client, databaseName, database.OrderItemCollection),
	}
}

type orderWithItems struct {
	models.Order `bson:",inline"`
	Items        []models.OrderItem `bson:"items"`
}

func (s *MongoStore) CreateOrder(ctx context.Context, order models.Order, items []models.OrderItem) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.orders.InsertOne(sc, order); err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}
		if _, err := s.items.InsertMany(sc, docs); err != nil {
			return nil, fmt.Errorf("insert order items: %w", err)
		}
		return nil, nil
	})
	return err
}

func (s *MongoStore) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	orders, err := s.aggregate(ctx, bson.D{{Key: "order_id", Value: orderID}})
	if err != nil {
		return models.Order{}, err
	}
	if len(orders) == 0 {
		return models.Order{}, ErrOrderNotFound
	}
	return orders[0], nil
}

func (s *MongoStore) CompareAndSetStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (models.Order, error) {
	filter := bson.D{{Key: "order_id", Value: orderID}, {Key: "status", Value: from}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: to},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		count, countErr := s.orders.CountDocuments(ctx, bson.D{{Key: "order_id", Value: orderID}})
		if countErr != nil {
			return models.Order{}, fmt.Errorf("check order: %w", countErr)
		}
		if count == 0 {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, ErrStatusConflict
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}

func (s *MongoStore) ListByCustomer(ctx context.Context, userID string) ([]models.Order, error) {
	return s.aggregate(ctx, bson.D{{Key: "user_id", Value: userID}})
}

func (s *MongoStore) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return s.aggregate(ctx, bson.D{{Key: "restaurant_id", Value: restaurantID}})
}

// aggregate loads the orders matching filter, newest first, with their items joined.
func (s *MongoStore) aggregate(ctx context.Context, filter bson.D) ([]models.Order, error) {
	matchStage := bson.D{{Key: "$match", Value: filter}}
	sortStage := bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}}
	lookupStage := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: database.OrderItemCollection},
		{Key: "localField", Value: "order_id"},
		{Key: "foreignField", Value: "order_id"},
		{Key: "as", Value: "items"},
	}}}

	cursor, err := s.orders.Aggregate(ctx, mongo.Pipeline{matchStage, sortStage, lookupStage})
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	var rows []orderWithItems
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		order := row.Order
		order.Items = row.Items
		if order.Items == nil {
			order.Items = []models.OrderItem{}
		}
		orders = append(orders, order)
	}
	return orders, nil
}
