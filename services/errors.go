package services

import "errors"

// Domain errors surfaced to the controllers. Persistence failures are wrapped
// with %w instead and map to server errors so the gateway's retry mechanism
// redelivers webhooks.
var (
	ErrEmptyCart           = errors.New("no items in the cart")
	ErrInvalidProductRef   = errors.New("invalid product reference")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrUnauthorizedWebhook = errors.New("webhook signature verification failed")
)
