package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pharmakart/storefront/internal/banner"
	"github.com/pharmakart/storefront/internal/catalog/domain"
)

type BannerProvider interface {
	Active(ctx context.Context) ([]*domain.Banner, error)
	Next(ctx context.Context) (*domain.Banner, error)
}

type BannerHandler struct {
	banners BannerProvider
	timeout time.Duration
}

func NewBannerHandler(banners BannerProvider, timeout time.Duration) *BannerHandler {
	return &BannerHandler{
		banners: banners,
		timeout: timeout,
	}
}

// GET /api/v1/banners
func (h *BannerHandler) Active(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	banners, err := h.banners.Active(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load banners")
		return
	}

	respondJSON(w, http.StatusOK, banners)
}

// GET /api/v1/banners/next
func (h *BannerHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	next, err := h.banners.Next(ctx)
	if err != nil {
		if errors.Is(err, banner.ErrNoActiveBanners) {
			respondError(w, http.StatusNotFound, "not_found", "no active banners")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "could not rotate banners")
		return
	}

	respondJSON(w, http.StatusOK, next)
}
