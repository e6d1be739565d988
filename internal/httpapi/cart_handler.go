package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	cartdomain "github.com/pharmakart/storefront/internal/cart/domain"
	cartrepo "github.com/pharmakart/storefront/internal/cart/repository"
	orderdomain "github.com/pharmakart/storefront/internal/order/domain"
)

const (
	minItemQuantity = 1
	maxItemQuantity = 99
)

// CartManager is the slice of the cart service the handler needs.
type CartManager interface {
	GetCart(ctx context.Context, userID string) (*cartdomain.Cart, error)
	AddItem(ctx context.Context, userID string, item cartdomain.CartItem) error
	UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int32) error
	RemoveItem(ctx context.Context, userID string, productID int64) error
	ClearCart(ctx context.Context, userID string) error
}

// SessionCreator opens cart sessions that the order flow later converts.
type SessionCreator interface {
	CreateSession(ctx context.Context, userID string) (*orderdomain.CartSession, error)
	GetSession(ctx context.Context, sessionID, userID string) (*orderdomain.CartSession, error)
}

type CartHandler struct {
	carts    CartManager
	sessions SessionCreator
	timeout  time.Duration
}

func NewCartHandler(carts CartManager, sessions SessionCreator, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:    carts,
		sessions: sessions,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int32 `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load cart")
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity < minItemQuantity || req.Quantity > maxItemQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	item := cartdomain.CartItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		AddedAt:   time.Now(),
	}
	if err := h.carts.AddItem(ctx, userID, item); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not add item to cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < minItemQuantity || req.Quantity > maxItemQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.carts.UpdateQuantity(ctx, userID, productID, req.Quantity); err != nil {
		if errors.Is(err, cartrepo.ErrCartNotFound) || errors.Is(err, cartrepo.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item not in cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update quantity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	if err := h.carts.RemoveItem(ctx, userID, productID); err != nil {
		if errors.Is(err, cartrepo.ErrCartNotFound) || errors.Is(err, cartrepo.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item not in cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "could not remove item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	if err := h.carts.ClearCart(ctx, userID); err != nil && !errors.Is(err, cartrepo.ErrCartNotFound) {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/cart/session
func (h *CartHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	session, err := h.sessions.CreateSession(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not create cart session")
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// GET /api/v1/cart/session/{session_id}
func (h *CartHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
		return
	}

	sessionID := chi.URLParam(r, "session_id")
	session, err := h.sessions.GetSession(ctx, sessionID, userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "cart session not found")
		return
	}

	respondJSON(w, http.StatusOK, session)
}
