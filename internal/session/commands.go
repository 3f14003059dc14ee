package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"lean-dashboard/internal/config"
	apperrors "lean-dashboard/internal/errors"
	"lean-dashboard/internal/models"
)

// sellOrdersPath returns the session's pending sell-order file inside the
// commands folder the engine polls.
func sellOrdersPath(sessionPath string) string {
	return filepath.Join(sessionPath, config.CommandsFolder, config.SellOrdersFile)
}

// WriteSellOrder appends one sell instruction to the session's command
// channel. The engine consumes the file out-of-band; this system never
// executes orders itself.
func (l *Locator) WriteSellOrder(sessionID, symbol string, quantity *int, limitPrice *float64) (models.SellOrder, error) {
	order := models.SellOrder{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Quantity:   quantity,
		LimitPrice: limitPrice,
	}

	sessionPath := l.Resolve(sessionID)
	if sessionPath == "" {
		return order, apperrors.Wrapf(apperrors.ErrLiveRootMissing, "session %q", sessionID)
	}

	path := sellOrdersPath(sessionPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return order, fmt.Errorf("creating commands folder: %w", err)
	}

	orders := l.PendingSellOrders(sessionID)
	orders = append(orders, order)

	raw, err := json.Marshal(orders)
	if err != nil {
		return order, fmt.Errorf("encoding sell orders: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return order, fmt.Errorf("writing sell orders: %w", err)
	}

	l.logger.Info().
		Str("session", sessionID).
		Str("symbol", symbol).
		Str("order_id", order.ID).
		Msg("Sell order queued")
	return order, nil
}

// PendingSellOrders returns the sell instructions not yet consumed by the
// engine. Missing or corrupt files read as no pending orders.
func (l *Locator) PendingSellOrders(sessionID string) []models.SellOrder {
	sessionPath := l.Resolve(sessionID)
	if sessionPath == "" {
		return nil
	}
	raw, err := os.ReadFile(sellOrdersPath(sessionPath))
	if err != nil {
		return nil
	}
	var orders []models.SellOrder
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil
	}
	return orders
}

// ClearSellOrders removes the pending sell-order file.
func (l *Locator) ClearSellOrders(sessionID string) {
	sessionPath := l.Resolve(sessionID)
	if sessionPath == "" {
		return
	}
	if err := os.Remove(sellOrdersPath(sessionPath)); err != nil && !os.IsNotExist(err) {
		l.logger.Debug().Str("session", sessionID).Err(err).Msg("Clearing sell orders failed")
	}
}
