package pricing

import (
	"context"
	"errors"
	"testing"

	"go-restaurant-ops/models"

	"github.com/shopspring/decimal"
)

type fakeMenu struct {
	items map[string]models.MenuItem
	err   error
	calls int
}

func (f *fakeMenu) GetMenuItem(_ context.Context, id string) (models.MenuItem, error) {
	f.calls++
	if f.err != nil {
		return models.MenuItem{}, f.err
	}
	item, ok := f.items[id]
	if !ok {
		return models.MenuItem{}, ErrItemNotFound
	}
	return item, nil
}

func menuItem(id, restaurantID, price string, active, available bool) models.MenuItem {
	return models.MenuItem{
		Menu_item_id:  id,
		Restaurant_id: restaurantID,
		Name:          "item " + id,
		Price:         decimal.RequireFromString(price),
		Is_active:     active,
		Is_available:  available,
	}
}

func newFakeMenu(items ...models.MenuItem) *fakeMenu {
	m := &fakeMenu{items: map[string]models.MenuItem{}}
	for _, item := range items {
		m.items[item.Menu_item_id] = item
	}
	return m
}

func TestPriceSumsLineTotals(t *testing.T) {
	t.Parallel()

	menu := newFakeMenu(
		menuItem("a", "r1", "5.00", true, true),
		menuItem("b", "r1", "3.50", true, true),
	)
	quote, err := Price(context.Background(), menu, "r1", []LineRequest{
		{MenuItemID: "a", Quantity: 2},
		{MenuItemID: "b", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if want := decimal.RequireFromString("13.50"); !quote.Total.Equal(want) {
		t.Fatalf("total = %s, want %s", quote.Total, want)
	}
	if len(quote.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(quote.Lines))
	}
	if !quote.Lines[0].LineTotal.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("line 0 total = %s, want 10.00", quote.Lines[0].LineTotal)
	}
	if quote.Lines[1].Name != "item b" || !quote.Lines[1].UnitPrice.Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("unexpected snapshot for line 1: %+v", quote.Lines[1])
	}
}

func TestPriceRoundsToCents(t *testing.T) {
	t.Parallel()

	menu := newFakeMenu(menuItem("a", "r1", "0.10", true, true), menuItem("b", "r1", "0.20", true, true))
	quote, err := Price(context.Background(), menu, "r1", []LineRequest{
		{MenuItemID: "a", Quantity: 1},
		{MenuItemID: "b", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if quote.Total.StringFixed(2) != "0.30" {
		t.Fatalf("total = %s, want 0.30", quote.Total.StringFixed(2))
	}
}

func TestPriceRejectsInvalidLines(t *testing.T) {
	t.Parallel()

	menu := newFakeMenu(
		menuItem("active", "r1", "4.00", true, true),
		menuItem("soldout", "r1", "4.00", true, false),
		menuItem("retired", "r1", "4.00", false, true),
		menuItem("elsewhere", "r2", "4.00", true, true),
	)

	tests := []struct {
		name      string
		lines     []LineRequest
		wantErr   error
		wantIndex int
	}{
		{name: "no lines", lines: nil, wantErr: ErrNoLines, wantIndex: -1},
		{name: "zero quantity", lines: []LineRequest{{MenuItemID: "active", Quantity: 0}}, wantErr: ErrInvalidQuantity},
		{name: "negative quantity", lines: []LineRequest{{MenuItemID: "active", Quantity: -2}}, wantErr: ErrInvalidQuantity},
		{name: "unknown item", lines: []LineRequest{{MenuItemID: "ghost", Quantity: 1}}, wantErr: ErrItemNotFound},
		{name: "unavailable item", lines: []LineRequest{{MenuItemID: "soldout", Quantity: 1}}, wantErr: ErrItemUnavailable},
		{name: "inactive item", lines: []LineRequest{{MenuItemID: "retired", Quantity: 1}}, wantErr: ErrItemUnavailable},
		{name: "other restaurant", lines: []LineRequest{{MenuItemID: "elsewhere", Quantity: 1}}, wantErr: ErrItemNotFound},
		{name: "unknown item before quantity", lines: []LineRequest{{MenuItemID: "ghost", Quantity: 0}}, wantErr: ErrItemNotFound},
		{name: "unavailable before quantity", lines: []LineRequest{{MenuItemID: "soldout", Quantity: -1}}, wantErr: ErrItemUnavailable},
		{
			name: "first failure in input order wins",
			lines: []LineRequest{
				{MenuItemID: "active", Quantity: 1},
				{MenuItemID: "soldout", Quantity: 1},
				{MenuItemID: "ghost", Quantity: 1},
			},
			wantErr:   ErrItemUnavailable,
			wantIndex: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Price(context.Background(), menu, "r1", tt.lines)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantIndex < 0 {
				return
			}
			var lineErr *LineError
			if !errors.As(err, &lineErr) {
				t.Fatalf("expected *LineError, got %T", err)
			}
			if lineErr.Index != tt.wantIndex {
				t.Fatalf("index = %d, want %d", lineErr.Index, tt.wantIndex)
			}
		})
	}
}

func TestPricePropagatesLookupFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	menu := &fakeMenu{err: boom}
	_, err := Price(context.Background(), menu, "r1", []LineRequest{{MenuItemID: "a", Quantity: 1}})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	var lineErr *LineError
	if errors.As(err, &lineErr) {
		t.Fatal("lookup failures should not be reported as line errors")
	}
}
