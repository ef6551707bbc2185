package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go-restaurant-ops/models"
	"go-restaurant-ops/push"
)

func newTestNotifier(pusher Pusher, users fakeUsers) (*Notifier, *Ledger, *fakeStore) {
	store := newFakeStore()
	ledger := NewLedger(store, users, steppingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	return NewNotifier(ledger, pusher, nil), ledger, store
}

func TestNotifyRecordsAndPushes(t *testing.T) {
	t.Parallel()

	pusher := &fakePusher{ok: true}
	notifier, ledger, _ := newTestNotifier(pusher, fakeUsers{
		"user-1": {User_id: "user-1", Push_token: "ExponentPushToken[abc]"},
	})

	if err := notifier.Notify(context.Background(), "user-1", "Order Update", "ready", nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
	notifier.Wait()

	if got := pusher.delivered(); len(got) != 1 || got[0] != "ExponentPushToken[abc]" {
		t.Fatalf("delivered = %v", got)
	}
	list, _ := ledger.List(context.Background(), "user-1", 0, 10)
	if len(list) != 1 || list[0].Read {
		t.Fatalf("unexpected ledger: %+v", list)
	}
}

func TestNotifyWithoutTokenSkipsPush(t *testing.T) {
	t.Parallel()

	pusher := &fakePusher{ok: true}
	notifier, _, store := newTestNotifier(pusher, fakeUsers{"user-1": {User_id: "user-1"}})

	if err := notifier.Notify(context.Background(), "user-1", "t", "b", nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
	notifier.Wait()
	if len(pusher.delivered()) != 0 {
		t.Fatal("push should be skipped without a token")
	}
	if store.count() != 1 {
		t.Fatal("notification should be recorded")
	}
}

func TestNotifyDoesNotWaitForPush(t *testing.T) {
	t.Parallel()

	pusher := &fakePusher{ok: false, release: make(chan struct{})}
	notifier, _, store := newTestNotifier(pusher, fakeUsers{
		"user-1": {User_id: "user-1", Push_token: "ExponentPushToken[abc]"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := notifier.Notify(ctx, "user-1", "t", "b", nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
	cancel()
	if store.count() != 1 {
		t.Fatal("notification should be recorded before push completes")
	}
	close(pusher.release)
	notifier.Wait()
	if len(pusher.delivered()) != 1 {
		t.Fatal("push should still run after the request context is cancelled")
	}
}

func TestNotifyUnknownUserRecordsNothing(t *testing.T) {
	t.Parallel()

	pusher := &fakePusher{ok: true}
	notifier, _, store := newTestNotifier(pusher, fakeUsers{})

	err := notifier.Notify(context.Background(), "ghost", "t", "b", nil)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	notifier.Wait()
	if store.count() != 0 || len(pusher.delivered()) != 0 {
		t.Fatal("nothing should be recorded or pushed")
	}
}

func TestNotifyStoreFailure(t *testing.T) {
	t.Parallel()

	pusher := &fakePusher{ok: true}
	notifier, _, store := newTestNotifier(pusher, fakeUsers{
		"user-1": {User_id: "user-1", Push_token: "ExponentPushToken[abc]"},
	})
	store.insertErr = errors.New("write concern")

	if err := notifier.Notify(context.Background(), "user-1", "t", "b", nil); err == nil {
		t.Fatal("expected store failure")
	}
	notifier.Wait()
	if len(pusher.delivered()) != 0 {
		t.Fatal("push must not run when the ledger write failed")
	}
}

func TestNotifyMalformedTokenStillRecorded(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	expo := push.NewExpoClient(srv.URL, time.Second, nil)
	notifier, ledger, _ := newTestNotifier(expo, fakeUsers{
		"user-1": {User_id: "user-1", Role: models.RoleCustomer, Push_token: "bad-token"},
	})

	if err := notifier.Notify(context.Background(), "user-1", "Order Update", "ready", nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
	notifier.Wait()

	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("no push request should be sent for a malformed token")
	}
	count, err := ledger.UnreadCount(context.Background(), "user-1")
	if err != nil || count != 1 {
		t.Fatalf("UnreadCount = %d, %v; want 1", count, err)
	}
}
