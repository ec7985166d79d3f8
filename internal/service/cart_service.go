package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"cart-service/internal/cart"
	"cart-service/internal/catalog"
	"cart-service/internal/entity"
	"cart-service/internal/pricing"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrNotCustomizable = errors.New("cart line has no customizations")
)

// CartStore persists one cart per session.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (*cart.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

// CartService resolves catalog data for the storefront and applies cart
// operations to the session's cart.
type CartService struct {
	carts   CartStore
	catalog catalog.Lookup
}

// NewCartService creates a new instance of CartService
func NewCartService(carts CartStore, lookup catalog.Lookup) *CartService {
	return &CartService{carts: carts, catalog: lookup}
}

type AddItemRequest struct {
	ItemID         string              `json:"item_id"`
	Quantity       int                 `json:"quantity"`
	Customizations cart.Customizations `json:"customizations"`
	Notes          string              `json:"notes"`
}

// CustomizationView is what the "customize again" dialog needs: the item's
// current option groups and the line's current selection.
type CustomizationView struct {
	Key  cart.Key         `json:"key"`
	Line cart.Line        `json:"line"`
	Item *entity.MenuItem `json:"item"`
}

func (s *CartService) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error loading cart for session %s", sessionID)
		return nil, err
	}
	return c, nil
}

// AddItem looks the item up in the catalog, prices the selection and adds the
// resulting line to the cart. Name, price and image are frozen on the line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*cart.Cart, cart.Key, error) {
	// reject bad input before touching the network
	if req.ItemID == "" {
		return nil, "", cart.ErrEmptyItemID
	}
	if req.Quantity < 1 || req.Quantity > cart.MaxQuantity {
		return nil, "", fmt.Errorf("%w: got %d", cart.ErrInvalidQuantity, req.Quantity)
	}
	if _, err := req.Customizations.Normalize(); err != nil {
		return nil, "", err
	}

	item, err := s.catalog.MenuItem(ctx, req.ItemID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting menu item %s", req.ItemID)
		return nil, "", err
	}
	if !item.Orderable() {
		logger.Warn().Msgf("Menu item %s is not orderable", req.ItemID)
		return nil, "", fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	quote, err := pricing.Quote(item, req.Customizations)
	if err != nil {
		return nil, "", err
	}

	line := cart.Line{
		ItemID:             req.ItemID,
		Name:               item.Name,
		Price:              quote.FinalPrice,
		Quantity:           req.Quantity,
		Customizations:     req.Customizations,
		Notes:              req.Notes,
		AdvanceNoticeHours: item.AdvanceNoticeHours,
		Image:              item.Image,
	}

	var key cart.Key
	c, err := s.carts.Update(ctx, sessionID, func(c *cart.Cart) error {
		var err error
		key, err = c.Add(line)
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msgf("Error adding item %s to cart %s", req.ItemID, sessionID)
		return nil, "", err
	}
	return c, key, nil
}

// SetQuantity sets an absolute quantity; below 1 the line is removed.
func (s *CartService) SetQuantity(ctx context.Context, sessionID string, key cart.Key, quantity int) (*cart.Cart, error) {
	return s.update(ctx, sessionID, func(c *cart.Cart) error {
		return c.SetQuantity(key, quantity)
	})
}

func (s *CartService) RemoveLine(ctx context.Context, sessionID string, key cart.Key) (*cart.Cart, error) {
	return s.update(ctx, sessionID, func(c *cart.Cart) error {
		c.RemoveLine(key)
		return nil
	})
}

func (s *CartService) SetNotes(ctx context.Context, sessionID string, key cart.Key, notes string) (*cart.Cart, error) {
	return s.update(ctx, sessionID, func(c *cart.Cart) error {
		c.SetNotes(key, notes)
		return nil
	})
}

// CustomizationOptions loads what is needed to re-customize a line. It waits
// on the catalog; the cart itself is not touched.
func (s *CartService) CustomizationOptions(ctx context.Context, sessionID string, key cart.Key) (*CustomizationView, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	line, ok := c.Line(key)
	if !ok {
		return nil, ErrLineNotFound
	}
	if !line.Customizable() {
		return nil, ErrNotCustomizable
	}

	item, err := s.catalog.MenuItem(ctx, line.ItemID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting menu item %s", line.ItemID)
		return nil, err
	}
	return &CustomizationView{Key: key, Line: line, Item: item}, nil
}

// ReplaceCustomizations checks the new selection against the catalog and then
// swaps it in. The line keeps its frozen price. An unknown key leaves the cart
// as it is and returns an empty key.
func (s *CartService) ReplaceCustomizations(ctx context.Context, sessionID string, key cart.Key, customizations cart.Customizations) (*cart.Cart, cart.Key, error) {
	if _, err := customizations.Normalize(); err != nil {
		return nil, "", err
	}

	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	line, ok := c.Line(key)
	if !ok {
		return c, "", nil
	}

	item, err := s.catalog.MenuItem(ctx, line.ItemID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting menu item %s", line.ItemID)
		return nil, "", err
	}
	if err := pricing.Validate(item, customizations); err != nil {
		return nil, "", err
	}

	var newKey cart.Key
	c, err = s.update(ctx, sessionID, func(c *cart.Cart) error {
		var err error
		newKey, err = c.ReplaceCustomizations(key, customizations)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return c, newKey, nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		logger.Error().Err(err).Msgf("Error clearing cart %s", sessionID)
		return nil, err
	}
	return cart.New(), nil
}

func (s *CartService) update(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	c, err := s.carts.Update(ctx, sessionID, fn)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating cart %s", sessionID)
		return nil, err
	}
	return c, nil
}
