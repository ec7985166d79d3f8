package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// Consumer listens for menu-item change notifications and evicts the affected
// items from the catalog cache, so the next lookup sees current option groups,
// prices and stock.
type Consumer struct {
	reader MessageReader
	cache  Invalidator
}

func NewConsumer(reader MessageReader, cache Invalidator) *Consumer {
	return &Consumer{reader: reader, cache: cache}
}

// Start reads messages until ctx is cancelled or the reader is closed.
func (c *Consumer) Start(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				logger.Info().Msg("Menu item consumer stopped")
				return
			}
			logger.Error().Msgf("Error reading message: %v", err)
			continue
		}

		c.processMessage(ctx, msg)
	}
}

// processMessage handles one notification.
// key -> "menu_item.updated.42", "menu_item.deleted.42" or "menu_item.stock_changed.42"
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	parts := strings.SplitN(string(msg.Key), ".", 3)

	var eventType, id string
	if len(parts) == 3 && parts[0] == "menu_item" {
		eventType, id = parts[1], parts[2]
	} else {
		// fall back to the payload for producers that do not key their messages
		var payload struct {
			ID    json.RawMessage `json:"id"`
			Event string          `json:"event"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error().Msgf("Error unmarshalling message: %v", err)
			return
		}
		eventType, id = payload.Event, strings.Trim(string(payload.ID), `"`)
	}

	if id == "" {
		logger.Warn().Msgf("Menu item message without id: %s", msg.Key)
		return
	}

	switch eventType {
	case "created", "updated", "deleted", "stock_changed":
		if err := c.cache.Invalidate(ctx, id); err != nil {
			logger.Error().Err(err).Msgf("Error invalidating menu item %s", id)
			return
		}
		logger.Info().Msgf("Menu item %s %s, cache invalidated", id, eventType)
	default:
		logger.Error().Msgf("Unknown menu item event: %s", eventType)
	}
}
