package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"cart-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var ErrItemNotFound = errors.New("menu item not found")

// Lookup fetches menu items by id.
type Lookup interface {
	MenuItem(ctx context.Context, id string) (*entity.MenuItem, error)
}

// Client reads menu items from the restaurant API and caches them in Redis.
type Client struct {
	baseURL      string
	restaurantID string
	httpClient   *http.Client
	rdb          *redis.Client
	ttl          time.Duration
}

func NewClient(baseURL, restaurantID string, rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{
		baseURL:      baseURL,
		restaurantID: restaurantID,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		rdb:          rdb,
		ttl:          ttl,
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("menu_item:%s", id)
}

// MenuItem returns the menu item with the given id, from cache when possible.
// A cache failure falls back to the API.
func (c *Client) MenuItem(ctx context.Context, id string) (*entity.MenuItem, error) {
	// Read from cache
	key := cacheKey(id)
	cached, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logger.Debug().Msgf("Menu item %s not found in cache", id)
		} else {
			logger.Warn().Err(err).Msgf("Error getting menu item %s from cache", id)
		}
	}

	if cached != "" {
		var item entity.MenuItem
		uerr := json.Unmarshal([]byte(cached), &item)
		if uerr == nil {
			return &item, nil
		}
		logger.Error().Err(uerr).Msgf("Error unmarshalling cached menu item %s", id)
	}

	item, err := c.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	// Write to cache
	data, err := json.Marshal(item)
	if err != nil {
		return item, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error setting menu item %s in cache", id)
	}

	return item, nil
}

// Invalidate drops the cached copy of a menu item.
func (c *Client) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, cacheKey(id)).Err()
}

func (c *Client) fetch(ctx context.Context, id string) (*entity.MenuItem, error) {
	endpoint := fmt.Sprintf("%s/menu_items/%s?restaurant_id=%s", c.baseURL, url.PathEscape(id), url.QueryEscape(c.restaurantID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch menu item %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch menu item %s: unexpected status %d", id, resp.StatusCode)
	}

	var item entity.MenuItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode menu item %s: %w", id, err)
	}
	return &item, nil
}
