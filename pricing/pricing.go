// Package pricing validates requested order lines against the live menu and
// computes the order total. It never writes.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-ops/database"
	"go-restaurant-ops/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoLines indicates the order has no lines.
	ErrNoLines = errors.New("order must contain at least one item")
	// ErrInvalidQuantity indicates a line quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrItemNotFound indicates the menu item does not exist for the restaurant.
	ErrItemNotFound = errors.New("menu item not found")
	// ErrItemUnavailable indicates the menu item is inactive or out of stock.
	ErrItemUnavailable = errors.New("menu item is not available")
)

// MenuLookup resolves menu items by ID. Implementations return an error
// matching ErrItemNotFound when the item does not exist.
type MenuLookup interface {
	GetMenuItem(ctx context.Context, menuItemID string) (models.MenuItem, error)
}

// LineRequest is one requested line of an order.
type LineRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	Quantity   int    `json:"quantity"`
}

// PricedLine is a validated line with the price snapshotted from the menu.
type PricedLine struct {
	MenuItemID string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
}

// Quote is the result of pricing a full order.
type Quote struct {
	Lines []PricedLine
	Total decimal.Decimal
}

// LineError ties a validation failure to the offending line.
type LineError struct {
	Index      int
	MenuItemID string
	Err        error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.MenuItemID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Price validates every line and returns the priced quote. When several lines
// fail, the first failing line in input order is reported.
func Price(ctx context.Context, menu MenuLookup, restaurantID string, lines []LineRequest) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, ErrNoLines
	}

	quote := Quote{Lines: make([]PricedLine, 0, len(lines)), Total: decimal.Zero}
	var firstErr error
	for i, line := range lines {
		priced, err := priceLine(ctx, menu, restaurantID, line)
		if err != nil {
			if !isValidationErr(err) {
				return Quote{}, err
			}
			if firstErr == nil {
				firstErr = &LineError{Index: i, MenuItemID: line.MenuItemID, Err: err}
			}
			continue
		}
		quote.Lines = append(quote.Lines, priced)
		quote.Total = quote.Total.Add(priced.LineTotal)
	}
	if firstErr != nil {
		return Quote{}, firstErr
	}
	quote.Total = quote.Total.Round(database.MoneyScale)
	return quote, nil
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) || errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrItemUnavailable)
}

func priceLine(ctx context.Context, menu MenuLookup, restaurantID string, line LineRequest) (PricedLine, error) {
	item, err := menu.GetMenuItem(ctx, line.MenuItemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return PricedLine{}, ErrItemNotFound
		}
		return PricedLine{}, fmt.Errorf("look up menu item: %w", err)
	}
	if item.Restaurant_id != restaurantID {
		return PricedLine{}, ErrItemNotFound
	}
	if !item.Orderable() {
		return PricedLine{}, ErrItemUnavailable
	}
	if line.Quantity <= 0 {
		return PricedLine{}, ErrInvalidQuantity
	}

	unit := item.Price.Round(database.MoneyScale)
	return PricedLine{
		MenuItemID: line.MenuItemID,
		Name:       item.Name,
		Quantity:   line.Quantity,
		UnitPrice:  unit,
		LineTotal:  unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(database.MoneyScale),
	}, nil
}
