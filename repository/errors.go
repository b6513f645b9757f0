package repository

import "errors"

// Sentinel errors returned by the repositories. Services translate these into
// client-facing failures; anything else is a wrapped persistence error.
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrRatingNotFound          = errors.New("rating not found")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrDuplicateTransactionRef = errors.New("transaction reference already in use")
	ErrCartEntryExists         = errors.New("product is already in cart")
	ErrEmailTaken              = errors.New("email is already registered")
)
