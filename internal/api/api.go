package api

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"cart-service/internal/cart"
	"cart-service/internal/service"
	"cart-service/internal/session"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

type quantityRequest struct {
	Key      cart.Key `json:"key"`
	Quantity int      `json:"quantity"`
}

type notesRequest struct {
	Key   cart.Key `json:"key"`
	Notes string   `json:"notes"`
}

type keyRequest struct {
	Key cart.Key `json:"key"`
}

type customizationRequest struct {
	Key            cart.Key            `json:"key"`
	Customizations cart.Customizations `json:"customizations"`
}

// RegisterRoutes mounts the cart and checkout endpoints. Line keys travel in
// the body or the query string, never in the path.
func RegisterRoutes(e *echo.Echo, cartHandler *CartHandler, checkoutHandler *CheckoutHandler) {
	e.GET("/cart", cartHandler.GetCart)
	e.DELETE("/cart", cartHandler.ClearCart)
	e.POST("/cart/items", cartHandler.AddItem)
	e.POST("/cart/items/quantity", cartHandler.SetQuantity)
	e.POST("/cart/items/notes", cartHandler.SetNotes)
	e.POST("/cart/items/remove", cartHandler.RemoveLine)
	e.GET("/cart/items/customization", cartHandler.CustomizationOptions)
	e.POST("/cart/items/customization", cartHandler.ReplaceCustomizations)

	e.POST("/checkout", checkoutHandler.Checkout)
	e.GET("/orders/:number", checkoutHandler.GetOrder)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	current, err := h.cartService.Get(c.Request().Context(), session.ID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, newCartResponse(current))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	req := service.AddItemRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	updated, key, err := h.cartService.AddItem(c.Request().Context(), session.ID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, mutationResponse{Key: key, Cart: newCartResponse(updated)})
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	req := quantityRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	updated, err := h.cartService.SetQuantity(c.Request().Context(), session.ID(c), req.Key, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, newCartResponse(updated))
}

func (h *CartHandler) SetNotes(c echo.Context) error {
	req := notesRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	updated, err := h.cartService.SetNotes(c.Request().Context(), session.ID(c), req.Key, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, newCartResponse(updated))
}

func (h *CartHandler) RemoveLine(c echo.Context) error {
	req := keyRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	updated, err := h.cartService.RemoveLine(c.Request().Context(), session.ID(c), req.Key)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, newCartResponse(updated))
}

func (h *CartHandler) CustomizationOptions(c echo.Context) error {
	key := cart.Key(c.QueryParam("key"))
	if key == "" {
		return c.JSON(400, map[string]string{"error": "key is required"})
	}

	view, err := h.cartService.CustomizationOptions(c.Request().Context(), session.ID(c), key)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, view)
}

func (h *CartHandler) ReplaceCustomizations(c echo.Context) error {
	req := customizationRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	updated, key, err := h.cartService.ReplaceCustomizations(c.Request().Context(), session.ID(c), req.Key, req.Customizations)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, mutationResponse{Key: key, Cart: newCartResponse(updated)})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	updated, err := h.cartService.Clear(c.Request().Context(), session.ID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, newCartResponse(updated))
}

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	idempotentKey := c.Request().Header.Get("Idempotent-Key")

	order, err := h.checkoutService.Checkout(c.Request().Context(), session.ID(c), idempotentKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, order)
}

func (h *CheckoutHandler) GetOrder(c echo.Context) error {
	order, err := h.checkoutService.GetOrder(c.Request().Context(), session.ID(c), c.Param("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(200, order)
}
