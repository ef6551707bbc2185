package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-restaurant-ops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		store := newMongoStoreFromCollection(mt.Coll)
		n := models.Notification{ID: primitive.NewObjectID(), User_id: "user-1", Title: "Hi", Created_at: time.Now()}
		n.Notification_id = n.ID.Hex()
		if err := store.Insert(context.Background(), n); err != nil {
			mt.Fatalf("insert: %v", err)
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bson.D{{Key: "notification_id", Value: "n2"}, {Key: "user_id", Value: "user-1"}, {Key: "title", Value: "second"}, {Key: "read", Value: false}},
			bson.D{{Key: "notification_id", Value: "n1"}, {Key: "user_id", Value: "user-1"}, {Key: "title", Value: "first"}, {Key: "read", Value: true}},
		)
		end := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, end)

		store := newMongoStoreFromCollection(mt.Coll)
		got, err := store.List(context.Background(), "user-1", 0, 100)
		if err != nil {
			mt.Fatalf("list: %v", err)
		}
		if len(got) != 2 || got[0].Notification_id != "n2" || !got[1].Read {
			mt.Fatalf("unexpected list: %+v", got)
		}
	})

	mt.Run("count unread", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))

		store := newMongoStoreFromCollection(mt.Coll)
		count, err := store.CountUnread(context.Background(), "user-1")
		if err != nil || count != 3 {
			mt.Fatalf("CountUnread = %d, %v; want 3", count, err)
		}
	})

	mt.Run("mark read of another user's notification", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		store := newMongoStoreFromCollection(mt.Coll)
		if err := store.MarkRead(context.Background(), "n1", "user-2"); !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	mt.Run("mark read already read", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		store := newMongoStoreFromCollection(mt.Coll)
		if err := store.MarkRead(context.Background(), "n1", "user-1"); err != nil {
			mt.Fatalf("mark read: %v", err)
		}
	})

	mt.Run("mark all read", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 2},
		))

		store := newMongoStoreFromCollection(mt.Coll)
		changed, err := store.MarkAllRead(context.Background(), "user-1")
		if err != nil || changed != 2 {
			mt.Fatalf("MarkAllRead = %d, %v; want 2", changed, err)
		}
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		store := newMongoStoreFromCollection(mt.Coll)
		if err := store.Delete(context.Background(), "n1", "user-1"); !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	mt.Run("delete for user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 5}))

		store := newMongoStoreFromCollection(mt.Coll)
		deleted, err := store.DeleteForUser(context.Background(), "user-1")
		if err != nil || deleted != 5 {
			mt.Fatalf("DeleteForUser = %d, %v; want 5", deleted, err)
		}
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		store := newMongoStoreFromCollection(mt.Coll)
		n := models.Notification{ID: primitive.NewObjectID(), User_id: "user-1"}
		if err := store.Insert(context.Background(), n); err == nil {
			mt.Fatal("expected insert error")
		}
	})
}
