package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"cart-service/internal/cart"
	"cart-service/internal/catalog"
	"cart-service/internal/entity"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrMissingIdempotentKey  = errors.New("idempotent key is required")
	ErrDuplicateCheckout     = errors.New("idempotent key already exists")
	ErrOrderNotFound         = errors.New("order not found")
	idempotentKeyTTL         = 24 * time.Hour
	maxConcurrentItemLookups = 4
)

// OrderStore persists checkout snapshots.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, orderNumber, status string) error
}

// EventWriter is satisfied by *kafka.Writer.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// CheckoutService turns a session's cart into an order snapshot. It reads the
// cart's lines and total; payment happens elsewhere.
type CheckoutService struct {
	carts   CartStore
	orders  OrderStore
	catalog catalog.Lookup
	writer  EventWriter
	rdb     *redis.Client
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(carts CartStore, orders OrderStore, lookup catalog.Lookup, writer EventWriter, rdb *redis.Client) *CheckoutService {
	return &CheckoutService{
		carts:   carts,
		orders:  orders,
		catalog: lookup,
		writer:  writer,
		rdb:     rdb,
	}
}

// Checkout places the session's cart as an order.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID, idempotentKey string) (*entity.Order, error) {
	if idempotentKey == "" {
		return nil, ErrMissingIdempotentKey
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error loading cart for session %s", sessionID)
		return nil, err
	}
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.verifyItems(ctx, c.Lines()); err != nil {
		return nil, err
	}

	claimed, err := s.claimIdempotentKey(ctx, idempotentKey, sessionID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrDuplicateCheckout
	}

	created, err := s.orders.CreateOrder(ctx, buildOrder(sessionID, idempotentKey, c))
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		s.releaseIdempotentKey(ctx, idempotentKey)
		return nil, err
	}

	if err := s.publishOrderEvent(ctx, created, "created"); err != nil {
		logger.Error().Err(err).Msgf("Error publishing order %s", created.OrderNumber)
		if err := s.orders.UpdateOrderStatus(ctx, created.OrderNumber, entity.OrderStatusCancelled); err != nil {
			logger.Error().Err(err).Msgf("Error cancelling order %s", created.OrderNumber)
		}
		s.releaseIdempotentKey(ctx, idempotentKey)
		return nil, err
	}

	if err := s.orders.UpdateOrderStatus(ctx, created.OrderNumber, entity.OrderStatusConfirmed); err != nil {
		logger.Error().Err(err).Msgf("Error confirming order %s", created.OrderNumber)
		return nil, err
	}
	created.Status = entity.OrderStatusConfirmed

	// the order stands even if the cart cannot be cleared
	if err := s.removeOrdered(ctx, sessionID, c.Lines()); err != nil {
		logger.Error().Err(err).Msgf("Error clearing cart %s after checkout", sessionID)
	}

	logger.Info().Msgf("Order %s placed for session %s, total %s", created.OrderNumber, sessionID, created.Total.StringFixed(2))
	return created, nil
}

// GetOrder returns an order placed by the session.
func (s *CheckoutService) GetOrder(ctx context.Context, sessionID, orderNumber string) (*entity.Order, error) {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error().Err(err).Msgf("Error getting order %s", orderNumber)
		return nil, err
	}
	if order.SessionID != sessionID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// verifyItems checks every distinct item of the cart against the catalog
// concurrently. Prices are not refreshed.
func (s *CheckoutService) verifyItems(ctx context.Context, lines []cart.Line) error {
	names := make(map[string]string, len(lines))
	for _, l := range lines {
		names[l.ItemID] = l.Name
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentItemLookups)
	for id, name := range names {
		g.Go(func() error {
			item, err := s.catalog.MenuItem(gctx, id)
			if err != nil {
				if errors.Is(err, catalog.ErrItemNotFound) {
					return fmt.Errorf("%w: %s", ErrItemUnavailable, name)
				}
				logger.Error().Err(err).Msgf("Error checking menu item %s", id)
				return err
			}
			if !item.Orderable() {
				logger.Warn().Msgf("Menu item %s is no longer orderable", id)
				return fmt.Errorf("%w: %s", ErrItemUnavailable, name)
			}
			return nil
		})
	}
	return g.Wait()
}

// removeOrdered takes the ordered quantities out of the session's cart inside
// the optimistic transaction. Anything added after the cart was read stays.
func (s *CheckoutService) removeOrdered(ctx context.Context, sessionID string, ordered []cart.Line) error {
	_, err := s.carts.Update(ctx, sessionID, func(c *cart.Cart) error {
		for _, l := range ordered {
			key := l.Key()
			current, ok := c.Line(key)
			if !ok {
				continue
			}
			if err := c.SetQuantity(key, current.Quantity-l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func buildOrder(sessionID, idempotentKey string, c *cart.Cart) *entity.Order {
	order := &entity.Order{
		OrderNumber:   uuid.NewString(),
		SessionID:     sessionID,
		Quantity:      c.ItemCount(),
		Total:         c.Total(),
		Status:        entity.OrderStatusPending,
		IdempotentKey: idempotentKey,
		CreatedAt:     time.Now().UTC(),
	}
	for _, l := range c.Lines() {
		order.Lines = append(order.Lines, entity.OrderLine{
			LineKey:        string(l.Key()),
			ItemID:         l.ItemID,
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitPrice:      l.Price,
			Customizations: strings.Join(cart.FormatCustomizations(l.Customizations), "; "),
			Notes:          l.Notes,
			LineTotal:      l.Subtotal(),
		})
	}
	return order
}

func (s *CheckoutService) publishOrderEvent(ctx context.Context, order *entity.Order, event string) error {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	// order.created.<order number>
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.%s.%s", event, order.OrderNumber)),
		Value: orderJSON,
	}
	return s.writer.WriteMessages(ctx, msg)
}

func idempotentRedisKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

func (s *CheckoutService) claimIdempotentKey(ctx context.Context, key, sessionID string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, idempotentRedisKey(key), sessionID, idempotentKeyTTL).Result()
	if err != nil {
		logger.Error().Err(err).Msgf("Error claiming idempotent key %s", key)
		return false, err
	}
	return ok, nil
}

func (s *CheckoutService) releaseIdempotentKey(ctx context.Context, key string) {
	if err := s.rdb.Del(ctx, idempotentRedisKey(key)).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error releasing idempotent key %s", key)
	}
}
