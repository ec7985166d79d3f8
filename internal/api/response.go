package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"cart-service/internal/cart"
	"cart-service/internal/catalog"
	"cart-service/internal/pricing"
	"cart-service/internal/repository"
	"cart-service/internal/service"
)

type lineResponse struct {
	Key cart.Key `json:"key"`
	cart.Line
	Price                 string   `json:"price"`
	Subtotal              string   `json:"subtotal"`
	CustomizationSummary  []string `json:"customization_summary"`
	RequiresAdvanceNotice bool     `json:"requires_advance_notice"`
	Customizable          bool     `json:"customizable"`
}

type cartResponse struct {
	Lines     []lineResponse `json:"lines"`
	ItemCount int            `json:"item_count"`
	Total     string         `json:"total"`
}

type mutationResponse struct {
	Key  cart.Key     `json:"key"`
	Cart cartResponse `json:"cart"`
}

func newCartResponse(c *cart.Cart) cartResponse {
	resp := cartResponse{
		Lines:     make([]lineResponse, 0, c.Len()),
		ItemCount: c.ItemCount(),
		Total:     c.Total().StringFixed(2),
	}
	for _, l := range c.Lines() {
		resp.Lines = append(resp.Lines, lineResponse{
			Key:                   l.Key(),
			Line:                  l,
			Price:                 l.Price.StringFixed(2),
			Subtotal:              l.Subtotal().StringFixed(2),
			CustomizationSummary:  cart.FormatCustomizations(l.Customizations),
			RequiresAdvanceNotice: l.RequiresAdvanceNotice(),
			Customizable:          l.Customizable(),
		})
	}
	return resp
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, cart.ErrEmptyItemID),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidCustomization),
		errors.Is(err, service.ErrMissingIdempotentKey):
		return 400
	case errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, service.ErrLineNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return 404
	case errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrNotCustomizable),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrDuplicateCheckout),
		errors.Is(err, repository.ErrConcurrentUpdate):
		return 409
	case errors.Is(err, pricing.ErrInvalidSelection):
		return 422
	default:
		return 500
	}
}

func respondError(c echo.Context, err error) error {
	status := errorStatus(err)
	if status == 500 {
		logger.Error().Err(err).Msgf("%s %s failed", c.Request().Method, c.Path())
		return c.JSON(status, map[string]string{"error": "internal server error"})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
