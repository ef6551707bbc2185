// Package directory reads the restaurant, table, menu and user documents the
// order core depends on but does not own.
package directory

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-ops/database"
	"go-restaurant-ops/models"
	"go-restaurant-ops/pricing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("not found")

type Directory struct {
	restaurants *mongo.Collection
	tables      *mongo.Collection
	menuItems   *mongo.Collection
	users       *mongo.Collection
}

func New(client *mongo.Client, databaseName string) *Directory {
	return &Directory{
		restaurants: database.OpenCollection(client, databaseName, database.RestaurantCollection),
		tables:      database.OpenCollection(client, databaseName, database.TableCollection),
		menuItems:   database.OpenCollection(client, databaseName, database.MenuItemCollection),
		users:       database.OpenCollection(client, databaseName, database.UserCollection),
	}
}

// GetMenuItem returns a menu item. A missing item matches both ErrNotFound and
// pricing.ErrItemNotFound.
func (d *Directory) GetMenuItem(ctx context.Context, menuItemID string) (models.MenuItem, error) {
	var item models.MenuItem
	err := d.menuItems.FindOne(ctx, bson.M{"menu_item_id": menuItemID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w: %w", menuItemID, ErrNotFound, pricing.ErrItemNotFound)
	}
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("find menu item: %w", err)
	}
	return item, nil
}

func (d *Directory) GetRestaurant(ctx context.Context, restaurantID string) (models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := findOne(ctx, d.restaurants, bson.M{"restaurant_id": restaurantID}, &restaurant, "restaurant"); err != nil {
		return models.Restaurant{}, err
	}
	return restaurant, nil
}

func (d *Directory) GetTable(ctx context.Context, tableID string) (models.Table, error) {
	var table models.Table
	if err := findOne(ctx, d.tables, bson.M{"table_id": tableID}, &table, "table"); err != nil {
		return models.Table{}, err
	}
	return table, nil
}

func (d *Directory) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	if err := findOne(ctx, d.users, bson.M{"user_id": userID}, &user, "user"); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ListEmployees returns the employees assigned to a restaurant.
func (d *Directory) ListEmployees(ctx context.Context, restaurantID string) ([]models.User, error) {
	cursor, err := d.users.Find(ctx, bson.M{"role": models.RoleEmployee, "restaurant_id": restaurantID})
	if err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	return users, nil
}

// UpdatePushToken stores the device token push notifications are sent to.
func (d *Directory) UpdatePushToken(ctx context.Context, userID, token string) error {
	result, err := d.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.D{{Key: "$set", Value: bson.D{{Key: "push_token", Value: token}}}},
	)
	if err != nil {
		return fmt.Errorf("update push token: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}, kind string) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", kind, err)
	}
	return nil
}
