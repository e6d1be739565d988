package service

import "errors"

var (
	ErrUnauthenticated   = errors.New("sign in to place an order")
	ErrEmptyCart         = errors.New("cart is empty, nothing to order")
	ErrMissingAddress    = errors.New("select a delivery address first")
	ErrPlacementInFlight = errors.New("an order placement is already in progress")

	// cart snapshot failures the caller can act on
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrProductUnavailable = errors.New("product is no longer available")
)

// genericPlacementMessage is shown when the engine fails without supplying
// a message of its own.
const genericPlacementMessage = "Failed to place order. Please try again."

// PlacementError carries the user-visible failure text for an order that
// could not be placed. Message is the engine-supplied text verbatim when
// the engine reported the failure itself.
type PlacementError struct {
	Message string
	cause   error
}

func NewPlacementError(message string, cause error) *PlacementError {
	return &PlacementError{Message: message, cause: cause}
}

func (e *PlacementError) Error() string {
	if e.cause != nil {
		return "order placement failed: " + e.cause.Error()
	}
	return "order placement failed: " + e.Message
}

func (e *PlacementError) Unwrap() error {
	return e.cause
}
