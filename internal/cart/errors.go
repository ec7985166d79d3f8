package cart

import "errors"

// Invalid-input errors. Operations that return one of these leave the cart untouched.
var (
	ErrEmptyItemID          = errors.New("item id is required")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidCustomization = errors.New("invalid customization")
)
