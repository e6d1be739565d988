package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pharmakart/storefront/internal/catalog/domain"
	"github.com/pharmakart/storefront/internal/catalog/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CatalogReader is the slice of the catalog repository the handler needs.
type CatalogReader interface {
	ListProducts(ctx context.Context, category string, limit, offset int) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListReviews(ctx context.Context, productID int64) ([]*domain.Review, error)
	AddReview(ctx context.Context, review *domain.Review) error
}

type CatalogHandler struct {
	catalog CatalogReader
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogReader, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type AddReviewRequestDTO struct {
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

// GET /api/v1/products?category=&limit=&offset=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPageSize {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid_offset", "offset must not be negative")
			return
		}
		offset = parsed
	}

	products, err := h.catalog.ListProducts(ctx, r.URL.Query().Get("category"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load products")
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{product_id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// GET /api/v1/products/{product_id}/reviews
func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	reviews, err := h.catalog.ListReviews(ctx, productID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load reviews")
		return
	}

	respondJSON(w, http.StatusOK, reviews)
}

// POST /api/v1/products/{product_id}/reviews
func (h *CatalogHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in to leave a review")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req AddReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	review := &domain.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.catalog.AddReview(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidRating):
			respondError(w, http.StatusBadRequest, "invalid_rating", err.Error())
		case errors.Is(err, repository.ErrProductNotFound):
			respondError(w, http.StatusNotFound, "not_found", "product not found")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "could not save review")
		}
		return
	}

	respondJSON(w, http.StatusCreated, review)
}
